package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/devsync/internal/record"
)

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	User         string
	Class        string
	Capabilities []string
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a new device for a user",
		Long: `Register a new device for a user.

Example:
  devsync register "Pixel 9" --user alice --class mobile --capability read --capability write`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return registerDevice(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "owning user identity (required)")
	cmd.Flags().StringVar(&opts.Class, "class", "", "device class: mobile|desktop|tablet|web (required)")
	cmd.Flags().StringArrayVar(&opts.Capabilities, "capability", nil, "device capability (repeatable)")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("class")

	return cmd
}

func registerDevice(opts *RegisterOptions, name string, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd.OutOrStdout())

	coord, st, _, err := openCoordinator(opts.RootOptions)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	id, err := coord.RegisterDevice(cmd.Context(), opts.User, record.DeviceClass(opts.Class), name, opts.Capabilities)
	if err != nil {
		return out.Fail(err)
	}

	return out.SuccessText(map[string]string{"device_id": id}, "registered %s", id)
}

// NewDevicesCommand creates the devices command.
func NewDevicesCommand(rootOpts *RootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:           "devices",
		Short:         "List a user's devices in registration order",
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

			ids, err := coord.UserDevices(cmd.Context(), user)
			if err != nil {
				return out.Fail(err)
			}
			return out.SuccessText(map[string]any{"devices": ids}, "%s", strings.Join(ids, "\n"))
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owning user identity (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}

// NewDeactivateCommand creates the deactivate command.
func NewDeactivateCommand(rootOpts *RootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:           "deactivate <device-id>",
		Short:         "Deactivate a device (devices are never deleted)",
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

			if err := coord.DeactivateDevice(cmd.Context(), user, args[0]); err != nil {
				return out.Fail(err)
			}
			return out.SuccessText(map[string]string{"device_id": args[0]}, "deactivated %s", args[0])
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owning user identity (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}

// NewCapabilitiesCommand creates the capabilities command.
func NewCapabilitiesCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user         string
		capabilities []string
	)

	cmd := &cobra.Command{
		Use:           "capabilities <device-id>",
		Short:         "Replace a device's capability set",
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

			if err := coord.UpdateDeviceCapabilities(cmd.Context(), user, args[0], capabilities); err != nil {
				return out.Fail(err)
			}
			return out.SuccessText(map[string]string{"device_id": args[0]}, "updated %s", args[0])
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owning user identity (required)")
	cmd.Flags().StringArrayVar(&capabilities, "capability", nil, "device capability (repeatable)")
	cmd.MarkFlagRequired("user")

	return cmd
}
