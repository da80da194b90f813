package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/crawler"
	applog "github.com/nao1215/docscrape/internal/log"
	"github.com/spf13/cobra"
)

// Exit codes for usage errors.
const (
	exitDiscoverUsage = 1
	exitConvertUsage  = 2
)

// usageError is returned when a command is invoked incorrectly.
// It carries the process exit code and the usage text to print.
type usageError struct {
	code  int
	usage string
	err   error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

// NewRootCmd creates the root command for docscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docscrape",
		Short: "Collect documentation links and save pages as Markdown",
		Long: `docscrape drives a headless Chrome through JavaScript-rendered documentation sites.

The discover command walks the navigation region of a site and writes the
sorted list of documentation links it finds. The convert command loads each
page, waits for the content container to render and saves it as Markdown.

Runs are recorded in a local history database (see 'docscrape history').`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .docscrape in current or home directory)")
	cmd.PersistentFlags().Bool("headful", false, "Show the browser window")
	cmd.PersistentFlags().String("chrome-path", "", "Chrome or Chromium executable (default: auto-detect)")
	cmd.PersistentFlags().String("proxy", "", "Proxy server for the browser (e.g. 127.0.0.1:8080)")

	// Add subcommands
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with a non-zero code on error.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	return exitCode(err, stderr)
}

// exitCode prints err and maps it to an exit code.
func exitCode(err error, stderr io.Writer) int {
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, ue.err)
		if ue.usage != "" {
			fmt.Fprintln(stderr, ue.usage)
		}
		return ue.code
	}
	fmt.Fprintln(stderr, err)
	return 1
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
// Sensitive attributes such as cookies and tokens are redacted.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return applog.NewSecureLogger(w, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, so that
// deferred cleanup such as closing the browser still runs.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// buildBaseConfig creates a Config from the global flags and loads the
// configuration file.
func buildBaseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.Verbose = getVerboseFlag(cmd)

	headful, err := flags.GetBool("headful")
	if err != nil {
		return nil, err
	}
	cfg.Headless = !headful

	cfg.ChromePath, err = flags.GetString("chrome-path")
	if err != nil {
		return nil, err
	}

	cfg.ProxyServer, err = flags.GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path is specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	return cfg, nil
}

// siteFor returns the merged site configuration for the host of rawURL.
// Unparseable addresses get the defaults.
func siteFor(cfg *config.Config, rawURL string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = crawler.CanonicalHost(u)
	}
	return cfg.SiteConfigs.GetSiteConfig(host)
}
