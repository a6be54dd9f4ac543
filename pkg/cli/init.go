package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
)

func newInitCmd(a *app) *cobra.Command {
	var useDefaults bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with an interactive wizard",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}

			cfg := config.Default()
			if _, err := os.Stat(path); err == nil {
				existing, err := config.Load(path)
				if err != nil {
					return NewCLIError("existing config is unreadable", "Fix or remove "+path, err)
				}
				cfg = existing
			}
			a.opts.apply(cfg)

			if !useDefaults {
				if !isTerminal() {
					return NewCLIError("the wizard needs an interactive terminal", "Pass --defaults to write the config non-interactively", nil)
				}
				if err := runWizard(cfg); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.ErrOrStderr(), "Aborted, nothing written")
						return nil
					}
					return NewCLIError("config wizard failed", "", err)
				}
			}

			if err := cfg.Validate(); err != nil {
				return NewCLIError("invalid configuration", "", err)
			}
			if err := cfg.Save(path); err != nil {
				return NewCLIError("could not write config", "", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "write without prompting, using defaults and flags")
	return cmd
}

func runWizard(cfg *config.Config) error {
	journalOn := !cfg.Journal.Disabled

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reviews API base URL").
				Value(&cfg.API.BaseURL).
				Validate(func(s string) error {
					probe := *cfg
					probe.API.BaseURL = s
					return probe.Validate()
				}),
			huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.API.APIKey),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&cfg.Log.Level),
			huh.NewInput().
				Title("Log file").
				Description("Use - to log to stderr").
				Value(&cfg.Log.File),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep a local activity journal?").
				Value(&journalOn),
			huh.NewInput().
				Title("Operator name").
				Description("Recorded with each session; empty uses your login").
				Value(&cfg.Journal.Operator),
			huh.NewConfirm().
				Title("Reload the dashboard when this file changes?").
				Value(&cfg.UI.WatchConfig),
			huh.NewSelect[string]().
				Title("Review text style").
				Options(huh.NewOptions("dark", "light", "notty")...).
				Value(&cfg.UI.MarkdownStyle),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Journal.Disabled = !journalOn
	return nil
}
