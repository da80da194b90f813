package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/database"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/report"
	"github.com/spf13/cobra"
)

// defaultConversionLimit is how many conversions --conversions lists.
const defaultConversionLimit = 20

// historyOptions holds the flags of the history command.
type historyOptions struct {
	listStarts  bool
	list        bool
	conversions bool
	limit       int
	withRunID   int64
	since       string
	json        bool
	markdown    bool
}

// NewHistoryCmd creates the history command.
// This command compares discovery runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [start_url]",
		Short: "Show recorded runs and compare discovered link sets",
		Long: `History shows what earlier discover and convert runs recorded in the database.

By default it compares the two latest discovery runs of a start URL and lists
the links that were added or removed in between. This shows when pages were
published, moved or deleted on a documentation site.

The database lives in the XDG data directory (~/.local/share/docscrape on Linux).

Examples:
  # Compare the latest two discovery runs for a start URL
  docscrape history https://docs.example.com/docs/intro

  # List all discovery runs for a start URL
  docscrape history --list https://docs.example.com/docs/intro

  # Compare with a specific run by ID
  docscrape history --with-run-id 5 https://docs.example.com/docs/intro

  # Compare with the first run since a date
  docscrape history --since 2025-01-01 https://docs.example.com/docs/intro

  # Output the comparison as JSON
  docscrape history --json https://docs.example.com/docs/intro

  # List all start URLs in the database
  docscrape history --list-starts

  # List recent conversions
  docscrape history --conversions`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List discovery runs for the specified start URL")
	cmd.Flags().BoolP("list-starts", "L", false,
		"List all start URLs in the database")
	cmd.Flags().Bool("conversions", false,
		"List recent conversions")
	cmd.Flags().Int("limit", defaultConversionLimit,
		"Number of conversions to list with --conversions (0 = all)")

	// Comparison target flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first run on or after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := historyFlags(cmd)
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var startURL string
	if !opts.listStarts && !opts.conversions {
		if len(args) == 0 {
			return errors.New("start URL is required (use --list-starts to see recorded start URLs)")
		}
		startURL = args[0]
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(context.Background(), db, cmd.OutOrStdout(), startURL, opts)
}

func historyFlags(cmd *cobra.Command) (*historyOptions, error) {
	flags := cmd.Flags()
	opts := &historyOptions{}

	var err error
	if opts.listStarts, err = flags.GetBool("list-starts"); err != nil {
		return nil, err
	}
	if opts.list, err = flags.GetBool("list"); err != nil {
		return nil, err
	}
	if opts.conversions, err = flags.GetBool("conversions"); err != nil {
		return nil, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if opts.withRunID, err = flags.GetInt64("with-run-id"); err != nil {
		return nil, err
	}
	if opts.since, err = flags.GetString("since"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	return opts, nil
}

// runHistory dispatches to the listing or comparison requested by opts.
func runHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, startURL string, opts *historyOptions) error {
	switch {
	case opts.listStarts:
		return listStartURLs(ctx, db, out)
	case opts.conversions:
		return listConversions(ctx, db, out, opts.limit)
	case opts.list:
		return listDiscoveryRuns(ctx, db, out, startURL)
	}

	comparison, err := compareRuns(ctx, db, startURL, opts.withRunID, opts.since)
	if err != nil {
		return err
	}

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out)
	}
	_, err = w.WriteComparison(comparison)
	return err
}

// listStartURLs lists all start URLs that have discovery runs.
func listStartURLs(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	starts, err := db.ListStartURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list start URLs: %w", err)
	}

	if len(starts) == 0 {
		fmt.Fprintln(out, "No discovery runs found in the database.")
		fmt.Fprintln(out, "\nUse 'docscrape discover <start_url>' to record one.")
		return nil
	}

	fmt.Fprintf(out, "Start URLs (%d):\n\n", len(starts))
	for _, start := range starts {
		fmt.Fprintf(out, "  • %s\n", start)
	}
	fmt.Fprintln(out, "\nUse 'docscrape history --list <start_url>' to see the runs of a start URL.")

	return nil
}

// listDiscoveryRuns lists all discovery runs for startURL.
func listDiscoveryRuns(ctx context.Context, db *database.HistoryDB, out io.Writer, startURL string) error {
	runs, err := db.ListDiscoveryRuns(ctx, startURL)
	if err != nil {
		return fmt.Errorf("failed to get discovery runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No discovery runs found for %s\n", startURL)
		return nil
	}

	fmt.Fprintf(out, "Discovery runs for %s (%d runs):\n\n", startURL, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-8s  %s\n", "ID", "Date", "Prefix", "Links", "Pages")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8s  %-8d  %d visited, %d failed\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Prefix,
			run.LinkCount,
			run.Visited,
			run.Failed,
		)
	}

	fmt.Fprintln(out, "\nUse 'docscrape history <start_url>' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'docscrape history --with-run-id <id> <start_url>' to compare with a specific run.")

	return nil
}

// listConversions lists the most recent conversions.
func listConversions(ctx context.Context, db *database.HistoryDB, out io.Writer, limit int) error {
	records, err := db.ListConversions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list conversions: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No conversions found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Recent conversions (%d):\n\n", len(records))
	for _, r := range records {
		status := "✅"
		detail := r.Path
		if r.Error != "" {
			status = "❌"
			detail = r.Error
		}
		fmt.Fprintf(out, "  %s %-6d %s  %s\n", status, r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.URL)
		fmt.Fprintf(out, "           %s\n", detail)
	}

	return nil
}

// compareRuns compares the latest discovery run of startURL with an
// earlier one: the run withRunID, the first run on or after since, or
// by default the run before the latest.
func compareRuns(ctx context.Context, db *database.HistoryDB, startURL string, withRunID int64, since string) (*model.LinkComparison, error) {
	runs, err := db.ListDiscoveryRuns(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get discovery runs: %w", err)
	}

	if len(runs) == 0 {
		return nil, fmt.Errorf("no discovery runs found for %s", startURL)
	}

	if len(runs) < 2 && withRunID == 0 && since == "" {
		return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	// Runs are sorted newest first; the latest is always the current one.
	currentID := runs[0].ID
	var previousID int64

	switch {
	case withRunID > 0:
		previousID = withRunID
	case since != "":
		parsedDate, err := time.Parse("2006-01-02", since)
		if err != nil {
			return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		// Iterate oldest first to find the first run at or after the date.
		for i := len(runs) - 1; i >= 0; i-- {
			if !runs[i].Timestamp.Before(parsedDate) {
				previousID = runs[i].ID
				break
			}
		}
		if previousID == 0 {
			return nil, fmt.Errorf("no runs found since %s", since)
		}
		if previousID == currentID {
			return nil, fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", since)
		}
	default:
		previousID = runs[1].ID
	}

	current, err := db.GetDiscoveryRun(ctx, currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", currentID, err)
	}
	previous, err := db.GetDiscoveryRun(ctx, previousID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", previousID, err)
	}
	if current == nil {
		return nil, fmt.Errorf("run with ID %d not found", currentID)
	}
	if previous == nil {
		return nil, fmt.Errorf("run with ID %d not found", previousID)
	}
	if previous.Result.StartURL != startURL {
		return nil, fmt.Errorf("run ID %d belongs to %s, not %s", previousID, previous.Result.StartURL, startURL)
	}

	added, removed, unchanged := model.CompareLinks(previous.Result.Links, current.Result.Links)
	return &model.LinkComparison{
		StartURL:       startURL,
		PreviousRun:    previous.RunMetadata,
		CurrentRun:     current.RunMetadata,
		Added:          added,
		Removed:        removed,
		UnchangedCount: unchanged,
	}, nil
}
