package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user      string
		limit     int
		conflicts bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a user's recent activity",
		Long: `Show a user's recent audit events, newest first.

With --conflicts the command instead lists the user's conflict
identities in detection order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd.OutOrStdout())

			coord, st, _, err := openCoordinator(rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer st.Close()

			if conflicts {
				ids, err := coord.UserConflicts(cmd.Context(), user)
				if err != nil {
					return out.Fail(err)
				}
				if rootOpts.Format == "json" {
					return out.Success(map[string]any{"conflicts": ids})
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}

			events, err := coord.UserHistory(cmd.Context(), user, limit)
			if err != nil {
				return out.Fail(err)
			}
			if rootOpts.Format == "json" {
				return out.Success(map[string]any{"events": events})
			}
			for _, ev := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", ev.At, ev.Action, ev.SubjectID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user identity (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum events to show")
	cmd.Flags().BoolVar(&conflicts, "conflicts", false, "list conflict identities instead of events")
	cmd.MarkFlagRequired("user")

	return cmd
}
