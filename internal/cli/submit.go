package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/devsync/internal/record"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Session     string
	Device      string
	DataType    string
	Fingerprint string
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit <payload>",
		Short: "Submit one entry to an active session",
		Long: `Submit one entry to an active session.

The fingerprint identifies the payload content. When --fingerprint is
omitted it is derived from the payload itself, so two devices submitting
byte-identical payloads agree without coordination.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitEntry(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session identity (required)")
	cmd.Flags().StringVar(&opts.Device, "device", "", "device identity (required)")
	cmd.Flags().StringVar(&opts.DataType, "type", "", "data type, e.g. course_progress (required)")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "content fingerprint (derived from payload if omitted)")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("device")
	cmd.MarkFlagRequired("type")

	return cmd
}

func submitEntry(opts *SubmitOptions, payload string, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd.OutOrStdout())

	fingerprint := opts.Fingerprint
	if fingerprint == "" {
		fingerprint = record.Fingerprint(payload)
	}

	coord, st, _, err := openCoordinator(opts.RootOptions)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	entryID, conflictID, err := coord.SubmitEntry(cmd.Context(), opts.Session, opts.Device, opts.DataType, fingerprint, payload)
	if err != nil {
		return out.Fail(err)
	}

	data := map[string]string{"entry_id": entryID}
	if conflictID != "" {
		data["conflict_id"] = conflictID
		return out.SuccessText(data, "submitted %s (conflict %s)", entryID, conflictID)
	}
	return out.SuccessText(data, "submitted %s", entryID)
}
