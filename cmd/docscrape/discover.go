package main

import (
	"context"
	"fmt"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/crawler"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/output"
	"github.com/nao1215/docscrape/internal/report"
	"github.com/spf13/cobra"
)

const discoverUsage = "Usage: docscrape discover <start_url> [prefix=/docs] [out=links.txt]"

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover <start_url> [prefix] [out]",
		Short: "Collect documentation links from a site's navigation",
		Long: `Discover loads the start page in a headless browser, reads the anchors of its
navigation region and writes every link on the same host whose path starts
with the prefix to the output file, sorted and deduplicated.

Only the start page is visited unless --follow is given, in which case newly
found links are visited breadth-first as well (bounded by --max-pages).

Examples:
  # Collect links under /docs into links.txt
  docscrape discover https://docs.example.com/docs/intro

  # Use another prefix and output file
  docscrape discover https://docs.example.com/guide/ /guide guide-links.txt

  # Walk the whole documentation tree, at most 200 pages
  docscrape discover --follow --max-pages 200 https://docs.example.com/docs/intro

  # Write a Markdown report of the run
  docscrape discover --report report.md https://docs.example.com/docs/intro`,
		Args: cobra.MaximumNArgs(3),
		RunE: runDiscoverCmd,
	}

	cmd.Flags().String("nav-selector", config.DefaultNavSelector,
		"CSS selector of the navigation region (first match only)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultDiscoverTimeout,
		"Navigation timeout for each page")
	cmd.Flags().Duration("settle", config.DefaultDiscoverSettle,
		"Pause after each page loads, for client-side rendering")
	cmd.Flags().BoolP("follow", "f", false,
		"Also visit discovered links (multi-hop breadth-first traversal)")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum number of pages to visit (0 = unlimited)")
	cmd.Flags().String("user-agent", config.DefaultDiscoverUserAgent,
		"Browser user agent")
	cmd.Flags().StringSlice("block", config.DefaultBlockedResources(),
		"Resource types to block (image, media, font, stylesheet, ...)")
	cmd.Flags().StringP("report", "r", "",
		"Write a Markdown report of the run to this file")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	return cmd
}

// runDiscoverCmd executes the discover command.
func runDiscoverCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &usageError{code: exitDiscoverUsage, usage: discoverUsage, err: config.ErrNoStartURL}
	}

	cfg, headers, err := buildDiscoverConfig(cmd, args)
	if err != nil {
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

	b := newBrowser(cfg, cfg.UserAgent, cfg.BlockedResources, headers, logger)
	stop, err := startBrowser(ctx, b, logger)
	if err != nil {
		return err
	}
	defer stop()

	_, err = runDiscover(ctx, cfg, b, env)
	return err
}

// buildDiscoverConfig creates the discover Config from arguments, flags
// and the site configuration of the start host. It also returns the extra
// HTTP headers for that host.
func buildDiscoverConfig(cmd *cobra.Command, args []string) (*config.Config, map[string]string, error) {
	cfg, err := buildBaseConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	flags := cmd.Flags()

	cfg.StartURL = args[0]
	if len(args) > 1 {
		cfg.Prefix = args[1]
	}
	if len(args) > 2 {
		cfg.LinksFile = args[2]
	}

	if cfg.NavSelector, err = flags.GetString("nav-selector"); err != nil {
		return nil, nil, err
	}
	if cfg.DiscoverTimeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, nil, err
	}
	if cfg.DiscoverSettle, err = flags.GetDuration("settle"); err != nil {
		return nil, nil, err
	}
	if cfg.FollowLinks, err = flags.GetBool("follow"); err != nil {
		return nil, nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, nil, err
	}
	if cfg.BlockedResources, err = flags.GetStringSlice("block"); err != nil {
		return nil, nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, nil, err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, nil, err
	}
	cfg.SaveToDB = !noHistory

	site := siteFor(cfg, cfg.StartURL)
	cfg.ApplySite(site, func(flag string) bool {
		if flag == "prefix" {
			return len(args) > 1
		}
		return flags.Changed(flag)
	})

	if err := cfg.ValidateDiscover(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	return cfg, site.ExtraHeaders(), nil
}

// runDiscover walks the site with page, writes the links file and records
// the run. Progress goes to env.stdout, page failures to env.stderr.
func runDiscover(ctx context.Context, cfg *config.Config, page crawler.Page, env *runEnv) (*model.DiscoveryResult, error) {
	spider := crawler.NewSpider(page,
		crawler.WithNavTimeout(cfg.DiscoverTimeout),
		crawler.WithSettleDelay(cfg.DiscoverSettle),
		crawler.WithNavSelector(cfg.NavSelector),
		crawler.WithFollowLinks(cfg.FollowLinks),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithIgnorePatterns(cfg.IgnorePatterns),
		crawler.WithEventHook(func(ev crawler.Event) {
			switch ev.Kind {
			case crawler.EventOpening:
				fmt.Fprintf(env.stdout, "Opening site: %s\n", ev.URL)
			case crawler.EventVisited:
				fmt.Fprintf(env.stdout, "Found %d links in navigation region\n", ev.LinksFound)
			case crawler.EventFailed:
				fmt.Fprintf(env.stderr, "Failed: %s %v\n", ev.URL, ev.Err)
			}
		}),
		crawler.WithLogger(env.logger),
	)

	result, err := spider.Discover(ctx, cfg.StartURL, cfg.Prefix)
	if err != nil {
		return result, err
	}

	if err := output.WriteLinks(cfg.LinksFile, result.Links); err != nil {
		return result, err
	}
	fmt.Fprintf(env.stdout, "Discovered %d links -> %s\n", len(result.Links), cfg.LinksFile)

	if env.db != nil {
		if id, err := env.db.SaveDiscoveryRun(ctx, result); err != nil {
			env.logger.Error("failed to save discovery run", "error", err)
		} else {
			env.logger.Info("discovery run saved to database", "id", id)
		}
	}

	if cfg.ReportFile != "" {
		err := writeReportFile(cfg.ReportFile, func(w report.Writer) (int, error) {
			return w.WriteDiscovery(result)
		})
		if err != nil {
			return result, err
		}
	}

	return result, nil
}
