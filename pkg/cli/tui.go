package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/ui"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/watcher"
)

// configDebounce is how long config writes must settle before a reload
const configDebounce = 300 * time.Millisecond

// isTerminal reports whether both stdin and stdout are terminals
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive review dashboard (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}
}

func runTUI(cmd *cobra.Command, a *app) error {
	if !isTerminal() {
		return NewCLIError("the dashboard needs an interactive terminal",
			"Use 'rc list' or 'rc analytics' for plain output", nil)
	}
	log := logging.For("cli")
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := ui.Options{
		Context: ctx,
		Backend: a.client(),
		Journal: a.journal(),

		MarkdownStyle: a.cfg.UI.MarkdownStyle,
	}

	if a.cfg.UI.WatchConfig && a.cfg.Path != "" {
		w, err := watcher.NewConfigWatcher(a.cfg.Path, configDebounce)
		if err != nil {
			log.Warn().Err(err).Str("path", a.cfg.Path).Msg("config watching disabled")
		} else {
			defer w.Close()
			go w.Run(ctx)
			opts.ConfigChanges = w.Changes()
			opts.NewBackend = func(cfg *config.Config) ui.Backend {
				// flags still win over the edited file
				a.opts.apply(cfg)
				return api.New(cfg)
			}
		}
	}

	log.Info().Str("base_url", a.cfg.BaseURL()).Msg("starting dashboard")
	if err := ui.Run(opts); err != nil {
		return NewCLIError("dashboard exited with an error", "", err)
	}
	return nil
}
