package cli

import (
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

func newListCmd(a *app) *cobra.Command {
	var (
		filters model.Filters
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of reviews",
		Example: `  rc list --location SF --sentiment Negative
  rc list --q "cold food" --page 2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filters.Sentiment != "" && !model.Sentiment(filters.Sentiment).IsValid() {
				return NewCLIError("unknown sentiment "+filters.Sentiment, "Use Positive, Neutral or Negative", nil)
			}
			if cmd.Flags().Changed("page") && filters.Page < 1 {
				return NewCLIError("page must be 1 or greater", "", nil)
			}

			page, err := a.client().ListReviews(cmd.Context(), filters)
			if err != nil {
				return MapError(err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			renderReviews(cmd.OutOrStdout(), page)
			return nil
		},
	}
	cmd.Flags().IntVar(&filters.Page, "page", 0, "page number (20 reviews per page)")
	cmd.Flags().StringVar(&filters.Location, "location", "", "exact location filter")
	cmd.Flags().StringVar(&filters.Sentiment, "sentiment", "", "sentiment filter (Positive, Neutral, Negative)")
	cmd.Flags().StringVar(&filters.Query, "q", "", "free-text search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw page as JSON")
	return cmd
}
