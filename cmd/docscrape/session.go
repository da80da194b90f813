package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/docscrape/internal/browser"
	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/database"
	"github.com/nao1215/docscrape/internal/output"
	"github.com/nao1215/docscrape/internal/report"
)

// runEnv is where a command run writes its progress, logs and history.
type runEnv struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	// db records the run. Nil disables history.
	db *database.HistoryDB
}

// newBrowser creates a Browser from the global options.
func newBrowser(cfg *config.Config, userAgent string, blocked []string, headers map[string]string, logger *slog.Logger) *browser.Browser {
	return browser.New(
		browser.WithHeadless(cfg.Headless),
		browser.WithExecPath(cfg.ChromePath),
		browser.WithProxyServer(cfg.ProxyServer),
		browser.WithUserAgent(userAgent),
		browser.WithBlockedResources(blocked),
		browser.WithExtraHeaders(headers),
		browser.WithLogger(logger),
	)
}

// startBrowser launches b and returns a function that shuts it down.
func startBrowser(ctx context.Context, b *browser.Browser, logger *slog.Logger) (func(), error) {
	if err := b.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return func() {
		if err := b.Stop(); err != nil {
			logger.Error("failed to stop browser", "error", err)
		}
	}, nil
}

// openHistory opens the history database when saving is enabled.
// A database that cannot be opened disables history for this run.
func openHistory(cfg *config.Config, logger *slog.Logger) *database.HistoryDB {
	if !cfg.SaveToDB {
		return nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("history disabled", "dir", cfg.DBDir, "error", err)
		return nil
	}
	logger.Debug("database opened", "path", db.Path())
	return db
}

// closeHistory closes db if it is open.
func closeHistory(db *database.HistoryDB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn("failed to close database", "error", err)
	}
}

// writeReportFile writes a Markdown report to path, creating parent
// directories as needed. The file is created with 0600 permissions.
func writeReportFile(path string, write func(report.Writer) (int, error)) error {
	if err := output.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := write(report.NewMarkdownWriter(f)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}
