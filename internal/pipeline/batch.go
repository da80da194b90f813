package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/docscrape/internal/model"
)

// BatchRunner converts a list of addresses one after another.
// All addresses share one browser tab, so there is no concurrency.
type BatchRunner struct {
	// pipelineFactory creates the pipeline for one address. It gets the
	// address so site-specific settings can be resolved per item.
	pipelineFactory func(target string) *Pipeline

	logger *slog.Logger
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// NewBatchRunner creates a new BatchRunner.
func NewBatchRunner(pipelineFactory func(target string) *Pipeline, opts ...BatchOption) *BatchRunner {
	br := &BatchRunner{
		pipelineFactory: pipelineFactory,
	}

	for _, opt := range opts {
		opt(br)
	}

	if br.logger == nil {
		br.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return br
}

// Run converts targets in input order and calls callback after each one,
// whether it succeeded or not. A failed address does not stop the batch
// unless its error was marked with Abort; then the summary so far is
// returned with that error.
//
// Cancellation stops the batch before the next address; the summary of
// what was done so far is returned with ctx.Err().
func (br *BatchRunner) Run(
	ctx context.Context,
	targets []string,
	callback func(result model.ItemResult),
) (*model.BatchSummary, error) {
	br.logger.Debug("starting batch", "total", len(targets))

	summary := &model.BatchSummary{
		Total:     len(targets),
		Items:     make([]model.ItemResult, 0, len(targets)),
		StartedAt: time.Now(),
	}

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now()
			br.logger.Warn("batch cancelled", "done", i, "total", len(targets))
			return summary, err
		}

		rec := model.NewPageRecord(target)
		started := time.Now()
		err := br.pipelineFactory(target).Execute(ctx, rec)

		result := model.ItemResult{
			Index:    i + 1,
			Page:     rec,
			Err:      err,
			Duration: time.Since(started),
		}
		summary.Add(result)

		if err != nil {
			br.logger.Debug("conversion failed", "url", target, "error", err)
		} else {
			br.logger.Debug("conversion completed", "url", target, "path", rec.Path)
		}

		if callback != nil {
			callback(summary.Items[len(summary.Items)-1])
		}

		if IsAbort(err) {
			summary.FinishedAt = time.Now()
			br.logger.Error("batch aborted", "url", target, "error", err)
			return summary, err
		}
	}

	summary.FinishedAt = time.Now()
	br.logger.Debug("batch complete",
		"ok", summary.OK,
		"failed", summary.Failed,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt),
	)

	return summary, nil
}
