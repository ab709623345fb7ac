package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/devsync/internal/record"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Policy   string
	Winner   string
	Resolver string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <conflict-id>",
		Short: "Resolve a detected conflict",
		Long: `Resolve a detected conflict.

The winning entry must be one of the conflict's two entries. When
--policy is omitted the default policy for the winning entry's data
type is taken from the policy configuration (--policy-config).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveConflict(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "resolution policy (defaults from policy config)")
	cmd.Flags().StringVar(&opts.Winner, "winner", "", "winning entry identity (required)")
	cmd.Flags().StringVar(&opts.Resolver, "resolver", "", "identity performing the resolution (required)")
	cmd.MarkFlagRequired("winner")
	cmd.MarkFlagRequired("resolver")

	return cmd
}

func resolveConflict(opts *ResolveOptions, conflictID string, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd.OutOrStdout())

	coord, st, cfg, err := openCoordinator(opts.RootOptions)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	policy := record.Policy(opts.Policy)
	if opts.Policy == "" {
		entry, err := coord.Entry(cmd.Context(), opts.Winner)
		if err != nil {
			return out.Fail(err)
		}
		p, ok := cfg.For(entry.DataType)
		if !ok {
			return out.Fail(WrapExitError(ExitCommandError, "no policy",
				fmt.Errorf("no default policy configured for data type %q, pass --policy", entry.DataType)))
		}
		policy = p
	}

	if err := coord.ResolveConflict(cmd.Context(), conflictID, policy, opts.Winner, opts.Resolver); err != nil {
		return out.Fail(err)
	}

	data := map[string]string{
		"conflict_id": conflictID,
		"policy":      string(policy),
		"winner":      opts.Winner,
	}
	return out.SuccessText(data, "resolved %s with %s (winner %s)", conflictID, policy, opts.Winner)
}
