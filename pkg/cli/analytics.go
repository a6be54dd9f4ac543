package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/export"
)

func newAnalyticsCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		out     string
		title   string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the review analytics summary",
		Example: `  rc analytics
  rc analytics --export summary.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.client().Analytics(cmd.Context())
			if err != nil {
				return MapError(err)
			}

			if out != "" {
				err := export.SaveAnalyticsSnapshot(export.SnapshotOptions{
					Path:      out,
					Analytics: &summary,
					Title:     title,
					Source:    a.cfg.BaseURL(),
					Generated: time.Now(),
				})
				if err != nil {
					return NewCLIError("could not export snapshot", "Use a .svg or .png output path", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
				if preview {
					return servePreview(cmd, out)
				}
				return nil
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			renderAnalytics(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().StringVar(&out, "export", "", "write an SVG or PNG snapshot to this path")
	cmd.Flags().StringVar(&title, "title", "", "snapshot title")
	cmd.Flags().BoolVar(&preview, "preview", false, "serve the exported snapshot locally until interrupted")
	return cmd
}

// servePreview serves the snapshot at path until the command is cancelled
func servePreview(cmd *cobra.Command, path string) error {
	port, err := export.FindAvailablePort(export.PreviewPortRangeStart, export.PreviewPortRangeEnd)
	if err != nil {
		return NewCLIError("no free port for the preview server", "", err)
	}
	p := export.NewPreviewServer(path)
	if err := p.Start(fmt.Sprintf("localhost:%d", port)); err != nil {
		return NewCLIError("could not start the preview server", "", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Preview at %s (Ctrl+C to stop)\n", p.URL())

	<-cmd.Context().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Stop(ctx)
}
