package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show aggregate entity counts",
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

			counts, err := coord.CountAll(cmd.Context())
			if err != nil {
				return out.Fail(err)
			}
			if rootOpts.Format == "json" {
				return out.Success(counts)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "devices:   %d\n", counts.Devices)
			fmt.Fprintf(cmd.OutOrStdout(), "sessions:  %d\n", counts.Sessions)
			fmt.Fprintf(cmd.OutOrStdout(), "entries:   %d\n", counts.Entries)
			fmt.Fprintf(cmd.OutOrStdout(), "conflicts: %d\n", counts.Conflicts)
			return nil
		},
	}

	return cmd
}
