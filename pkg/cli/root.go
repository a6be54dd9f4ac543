// Package cli wires the rc command tree: the interactive dashboard plus
// plain commands for scripting against the reviews API.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/journal"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/metrics"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/updater"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// annotation marking commands that run without loading the config
const skipSetup = "rc/skip-setup"

// globalOptions are the persistent flags. Empty values leave the config
// untouched.
type globalOptions struct {
	configPath  string
	baseURL     string
	apiKey      string
	logFile     string
	logLevel    string
	metricsAddr string
	journalPath string
	noJournal   bool
}

// apply layers flag values over cfg
func (o *globalOptions) apply(cfg *config.Config) {
	set := func(v string, dst *string) {
		if v != "" {
			*dst = v
		}
	}
	set(o.baseURL, &cfg.API.BaseURL)
	set(o.apiKey, &cfg.API.APIKey)
	set(o.logFile, &cfg.Log.File)
	set(o.logLevel, &cfg.Log.Level)
	set(o.metricsAddr, &cfg.Metrics.Addr)
	set(o.journalPath, &cfg.Journal.Path)
	if o.noJournal {
		cfg.Journal.Disabled = true
	}
}

// app carries what the commands share once the config is loaded
type app struct {
	opts globalOptions
	cfg  *config.Config

	logCloser  io.Closer
	metricsSrv *http.Server
	recorder   *journal.Recorder
}

func (a *app) setup() error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return NewCLIError("could not load config", "Run 'rc init' to write a fresh config file", err)
	}
	a.opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return NewCLIError("invalid configuration", "Fix api.base_url in "+configLocation(cfg)+" or pass --base-url", err)
	}
	a.cfg = cfg

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return NewCLIError("could not set up logging", "Pass --log-file - to log to stderr", err)
	}
	a.logCloser = closer
	a.metricsSrv = metrics.Serve(cfg.Metrics.Addr, metrics.NewRegistry())
	return nil
}

// client returns an API client for the current config
func (a *app) client() *api.Client {
	return api.New(a.cfg)
}

// journal opens the activity journal and starts a session on first use.
// It returns nil when the journal is disabled or unavailable.
func (a *app) journal() *journal.Recorder {
	if a.recorder != nil {
		return a.recorder
	}
	rec := journal.Open(a.cfg)
	if err := rec.StartSession(a.cfg.Journal.Operator, a.cfg.BaseURL()); err != nil {
		log := logging.For("cli")
		log.Warn().Err(err).Msg("could not start journal session")
	}
	a.recorder = rec
	return rec
}

func (a *app) close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			log := logging.For("cli")
			log.Warn().Err(err).Msg("closing journal")
		}
		a.recorder = nil
	}
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metricsSrv.Shutdown(ctx)
		cancel()
		a.metricsSrv = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

func configLocation(cfg *config.Config) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return "your config"
}

// newRootCmd builds the command tree around a
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "rc",
		Version: Version,
		Short:   "Reviews Copilot: browse, analyze and reply to customer reviews",
		Long: `Reviews Copilot is a terminal dashboard for customer reviews.
Run without a subcommand to open the interactive dashboard, or use the
plain commands below for scripting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	f.StringVar(&a.opts.baseURL, "base-url", "", "reviews API base URL")
	f.StringVar(&a.opts.apiKey, "api-key", "", "reviews API key")
	f.StringVar(&a.opts.logFile, "log-file", "", "log file path, - for stderr")
	f.StringVar(&a.opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&a.opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	f.StringVar(&a.opts.journalPath, "journal", "", "activity journal database path")
	f.BoolVar(&a.opts.noJournal, "no-journal", false, "disable the activity journal")

	root.AddCommand(
		newTUICmd(a),
		newListCmd(a),
		newAnalyticsCmd(a),
		newSuggestCmd(a),
		newReplyCmd(a),
		newHistoryCmd(a),
		newInitCmd(a),
		newMockServerCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and returns the error, already printed
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	defer a.close()

	err := MapError(newRootCmd(a).ExecuteContext(ctx))
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// releasesURL is swapped in tests
var releasesURL = updater.ReleasesURL

func newVersionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rc version %s (commit %s, built %s)\n", Version, Commit, Date)
			if !check {
				return nil
			}
			tag, link, err := updater.CheckForUpdates(cmd.Context(), releasesURL, Version)
			if err != nil {
				return NewCLIError("could not check for updates", "", err)
			}
			if tag == "" {
				fmt.Fprintln(out, "You are on the latest release")
				return nil
			}
			fmt.Fprintf(out, "A newer release is available: %s\n%s\n", tag, link)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
