package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

func parseReviewID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, NewCLIError(fmt.Sprintf("invalid review id %q", arg), "Review ids are positive integers; see 'rc list'", nil)
	}
	return id, nil
}

func (a *app) record(id int, action, reply string) {
	if err := a.journal().RecordReply(id, action, reply); err != nil {
		log := logging.For("cli")
		log.Warn().Err(err).Int("review", id).Str("action", action).Msg("journal write failed")
	}
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <review-id>",
		Short: "Ask the service to draft a reply (not saved)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReviewID(args[0])
			if err != nil {
				return err
			}
			reply, err := a.client().SuggestReply(cmd.Context(), id)
			if err != nil {
				return MapError(err)
			}
			a.record(id, model.ReplyActionGenerated, reply)
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func newReplyCmd(a *app) *cobra.Command {
	var (
		text    string
		suggest bool
	)
	cmd := &cobra.Command{
		Use:   "reply <review-id>",
		Short: "Save a reply on a review",
		Example: `  rc reply 42 --text "Thanks for visiting!"
  rc reply 42 --suggest`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReviewID(args[0])
			if err != nil {
				return err
			}
			client := a.client()

			if suggest {
				text, err = client.SuggestReply(cmd.Context(), id)
				if err != nil {
					return MapError(err)
				}
				a.record(id, model.ReplyActionGenerated, text)
			}
			if strings.TrimSpace(text) == "" {
				return NewCLIError("reply text is empty", "Pass --text or --suggest", nil)
			}

			if err := client.SaveReply(cmd.Context(), id, text); err != nil {
				return MapError(err)
			}
			a.record(id, model.ReplyActionSaved, text)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved reply for review #%d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "reply text to save")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "save the service's suggested reply")
	cmd.MarkFlagsMutuallyExclusive("text", "suggest")
	cmd.MarkFlagsOneRequired("text", "suggest")
	return cmd
}
