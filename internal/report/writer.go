package report

import (
	"io"

	"github.com/nao1215/docscrape/internal/model"
)

// Writer defines the interface for report output.
// Each method returns the number of bytes written and any error encountered.
type Writer interface {
	// WriteDiscovery outputs a link discovery run.
	WriteDiscovery(result *model.DiscoveryResult) (int, error)

	// WriteBatch outputs a conversion batch.
	WriteBatch(summary *model.BatchSummary) (int, error)

	// WriteComparison outputs the difference between two discovery runs.
	WriteComparison(comparison *model.LinkComparison) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteDiscovery outputs the discovery run to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteDiscovery(result *model.DiscoveryResult) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteDiscovery(result) })
}

// WriteBatch outputs the batch to all configured Writers.
func (m *MultiWriter) WriteBatch(summary *model.BatchSummary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteBatch(summary) })
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(comparison *model.LinkComparison) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteComparison(comparison) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeFormat is used for timestamps in text and Markdown reports.
const timeFormat = "2006-01-02 15:04:05 MST"
