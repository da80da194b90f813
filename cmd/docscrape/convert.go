package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/input"
	"github.com/nao1215/docscrape/internal/mdconv"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/output"
	"github.com/nao1215/docscrape/internal/pipeline"
	"github.com/nao1215/docscrape/internal/report"
	"github.com/spf13/cobra"
)

const convertUsage = `Usage:
  docscrape convert <url|urls.txt> [output_dir]

Input:
  - Single URL (starts with http/https)
  - Or a text file with one URL per line (blank lines and lines starting with # are ignored)

Examples:
  docscrape convert https://example.com
  docscrape convert https://example.com ./out
  docscrape convert ./urls.txt ./out`

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <url_or_file> [output_dir]",
		Short: "Save rendered documentation pages as Markdown",
		Long: `Convert loads each page in a headless browser, waits for the content container
to appear, and saves its content as GitHub Flavored Markdown. The file is named
after the page title; existing files are never overwritten (a -1, -2, ...
suffix is added instead).

Pages are processed one after another. A page that fails is reported and
counted, and the batch continues with the next page.

Examples:
  # Convert a single page into the current directory
  docscrape convert https://docs.example.com/docs/intro

  # Convert every URL listed in links.txt into ./out
  docscrape convert links.txt ./out

  # Use another content container and keep links absolute
  docscrape convert --content-selector main --absolute-links links.txt ./out`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConvertCmd,
	}

	cmd.Flags().String("content-selector", config.DefaultContentSelector,
		"CSS selector of the content container")
	cmd.Flags().DurationP("timeout", "t", config.DefaultConvertTimeout,
		"Navigation timeout for each page")
	cmd.Flags().Duration("wait-timeout", config.DefaultWaitTimeout,
		"How long to wait for the content container to appear")
	cmd.Flags().Duration("settle", config.DefaultConvertSettle,
		"Pause after the content container appears")
	cmd.Flags().String("user-agent", "",
		"Browser user agent (default: Chrome's own)")
	cmd.Flags().Bool("absolute-links", false,
		"Rewrite relative links and images to absolute URLs")
	cmd.Flags().StringP("report", "r", "",
		"Write a Markdown report of the run to this file")
	cmd.Flags().Bool("no-history", false,
		"Do not record conversions in the history database")

	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return &usageError{code: exitConvertUsage, usage: convertUsage, err: config.ErrNoInput}
	}

	cfg, err := buildConvertConfig(cmd, args)
	if err != nil {
		return err
	}

	targets, err := input.ReadTargets(cfg.Input)
	if err != nil {
		if errors.Is(err, input.ErrNoTargets) {
			return &usageError{
				code: exitConvertUsage,
				err:  fmt.Errorf("❌ %w. Provide a URL or a .txt file with one URL per line (http/https)", err),
			}
		}
		return &usageError{code: exitConvertUsage, err: err}
	}

	if err := output.EnsureDir(cfg.OutputDir); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	env := &runEnv{
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		logger: logger,
		db:     openHistory(cfg, logger),
	}
	defer closeHistory(env.db, logger)

	b := newBrowser(cfg, cfg.UserAgent, nil, nil, logger)
	stop, err := startBrowser(ctx, b, logger)
	if err != nil {
		return err
	}
	defer stop()

	_, err = runConvert(ctx, cfg, targets, b, env, cmd.Flags().Changed)
	return err
}

// buildConvertConfig creates the convert Config from arguments and flags.
func buildConvertConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildBaseConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	cfg.Input = args[0]
	if len(args) > 1 {
		cfg.OutputDir = args[1]
	}

	if cfg.ContentSelector, err = flags.GetString("content-selector"); err != nil {
		return nil, err
	}
	if cfg.ConvertTimeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.WaitTimeout, err = flags.GetDuration("wait-timeout"); err != nil {
		return nil, err
	}
	if cfg.ConvertSettle, err = flags.GetDuration("settle"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.AbsoluteLinks, err = flags.GetBool("absolute-links"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	if err := cfg.ValidateConvert(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return cfg, nil
}

// runConvert converts every target with page, one after another.
// Per-page progress goes to env.stdout and failures to env.stderr; a
// failed page never fails the run. explicit reports whether a flag was
// set on the command line, so site settings do not override it.
func runConvert(
	ctx context.Context,
	cfg *config.Config,
	targets []string,
	page pipeline.Page,
	env *runEnv,
	explicit func(flag string) bool,
) (*model.BatchSummary, error) {
	converter := mdconv.New(mdconv.WithAbsoluteLinks(cfg.AbsoluteLinks))

	runner := pipeline.NewBatchRunner(
		func(target string) *pipeline.Pipeline {
			return pipelineForTarget(cfg, target, page, converter, env, explicit)
		},
		pipeline.WithBatchLogger(env.logger),
	)

	total := len(targets)
	summary, runErr := runner.Run(ctx, targets, func(item model.ItemResult) {
		if item.OK() {
			fmt.Fprintf(env.stdout, "✅ [%d/%d] %s\n", item.Index, total, item.Page.URL)
			fmt.Fprintf(env.stdout, "   Title: %s\n", titleOrPlaceholder(item.Page.Title))
			fmt.Fprintf(env.stdout, "   Saved: %s\n", item.Page.Path)
		} else {
			fmt.Fprintf(env.stderr, "❌ [%d/%d] %s\n", item.Index, total, item.Page.URL)
			fmt.Fprintf(env.stderr, "   Error: %s\n", item.Error)
		}

		if env.db != nil {
			if err := env.db.SaveConversion(ctx, item); err != nil {
				env.logger.Error("failed to save conversion", "url", item.Page.URL, "error", err)
			}
		}
	})

	fmt.Fprintf(env.stdout, "\n%s\n", summary.String())

	if cfg.ReportFile != "" {
		err := writeReportFile(cfg.ReportFile, func(w report.Writer) (int, error) {
			return w.WriteBatch(summary)
		})
		if err != nil {
			return summary, err
		}
	}

	return summary, runErr
}

// pipelineForTarget builds the conversion pipeline for one address,
// applying the site configuration of its host.
func pipelineForTarget(
	cfg *config.Config,
	target string,
	page pipeline.Page,
	converter pipeline.MarkdownConverter,
	env *runEnv,
	explicit func(flag string) bool,
) *pipeline.Pipeline {
	site := siteFor(cfg, target)
	targetCfg := *cfg
	targetCfg.ApplySite(site, explicit)

	return pipeline.DefaultPipeline(page, converter,
		[]pipeline.Option{pipeline.WithLogger(env.logger)},
		pipeline.WithPipelineContentSelector(targetCfg.ContentSelector),
		pipeline.WithPipelineNavTimeout(targetCfg.ConvertTimeout),
		pipeline.WithPipelineWaitTimeout(targetCfg.WaitTimeout),
		pipeline.WithPipelineSettleDelay(targetCfg.ConvertSettle),
		pipeline.WithPipelineOutputDir(targetCfg.OutputDir),
		pipeline.WithPipelineHeaders(site.ExtraHeaders()),
	)
}

func titleOrPlaceholder(title string) string {
	if title == "" {
		return "(no title)"
	}
	return title
}
