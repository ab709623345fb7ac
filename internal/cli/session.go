package cli

import (
	"github.com/spf13/cobra"
)

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user   string
		device string
	)

	cmd := &cobra.Command{
		Use:           "start",
		Short:         "Start a sync session for a device",
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

			id, err := coord.StartSession(cmd.Context(), user, device)
			if err != nil {
				return out.Fail(err)
			}
			return out.SuccessText(map[string]string{"session_id": id}, "started %s", id)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owning user identity (required)")
	cmd.Flags().StringVar(&device, "device", "", "device identity (required)")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("device")

	return cmd
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		failed       bool
		errorMessage string
	)

	cmd := &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Close a sync session",
		Long: `Close a sync session.

A session closes successfully by default, bumping the device's sync
version. Pass --failed with --error to record a failed session; the
device's sync version is left untouched.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd.OutOrStdout())

			coord, st, _, err := openCoordinator(rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer st.Close()

			if err := coord.CompleteSession(cmd.Context(), args[0], !failed, errorMessage); err != nil {
				return out.Fail(err)
			}
			return out.SuccessText(map[string]any{"session_id": args[0], "success": !failed}, "closed %s", args[0])
		},
	}

	cmd.Flags().BoolVar(&failed, "failed", false, "mark the session failed")
	cmd.Flags().StringVar(&errorMessage, "error", "", "failure reason (required with --failed)")

	return cmd
}
