package cli

import (
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/journal"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit    int
		reviewID int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show reply activity from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Journal.Disabled {
				return NewCLIError("the activity journal is disabled", "Remove journal.disabled from your config or drop --no-journal", nil)
			}
			rec, err := journal.NewRecorder(a.cfg.Journal.Path)
			if err != nil {
				return NewCLIError("could not open the activity journal", "Check --journal / RC_JOURNAL", err)
			}
			defer rec.Close()

			var events []model.ReplyEvent
			if reviewID > 0 {
				events, err = rec.ReviewHistory(reviewID)
			} else {
				events, err = rec.History(limit)
			}
			if err != nil {
				return NewCLIError("could not read the activity journal", "", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			renderHistory(cmd.OutOrStdout(), events)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of most recent events")
	cmd.Flags().IntVar(&reviewID, "review", 0, "only events for this review id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print events as JSON")
	return cmd
}
