package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Show a device, session, entry, or conflict",
		Long: `Show a stored entity as JSON.

Kind is one of: device, session, entry, conflict.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showEntity(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func showEntity(opts *RootOptions, kind, id string, cmd *cobra.Command) error {
	out := formatter(opts, cmd.OutOrStdout())

	coord, st, _, err := openCoordinator(opts)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	var entity any
	switch kind {
	case "device":
		entity, err = coord.Device(cmd.Context(), id)
	case "session":
		entity, err = coord.Session(cmd.Context(), id)
	case "entry":
		entity, err = coord.Entry(cmd.Context(), id)
	case "conflict":
		entity, err = coord.Conflict(cmd.Context(), id)
	default:
		return out.Fail(WrapExitError(ExitCommandError, "unknown kind",
			fmt.Errorf("unknown kind %q: must be device, session, entry, or conflict", kind)))
	}
	if err != nil {
		return out.Fail(err)
	}

	if opts.Format == "json" {
		return out.Success(entity)
	}
	pretty, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return out.Fail(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return nil
}
