// Package cli implements the devsync command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/devsync/internal/coordinator"
	"github.com/roach88/devsync/internal/logging"
	"github.com/roach88/devsync/internal/policy"
	"github.com/roach88/devsync/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	DB        string // path to the SQLite database
	PolicyDir string // optional CUE policy configuration directory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the devsync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "devsync",
		Short: "devsync - multi-device synchronization coordinator",
		Long:  "Coordinates sync sessions, conflict detection, and conflict resolution across a user's devices.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			logging.SetDefault(logging.New(logging.Options{Level: level, JSON: opts.Format == "json"}))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "devsync.db", "path to the coordinator database")
	cmd.PersistentFlags().StringVar(&opts.PolicyDir, "policy-config", "", "directory of CUE policy configuration")

	// Add subcommands
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewDevicesCommand(opts))
	cmd.AddCommand(NewDeactivateCommand(opts))
	cmd.AddCommand(NewCapabilitiesCommand(opts))
	cmd.AddCommand(NewStartCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openCoordinator opens the database and builds a coordinator from the
// global options. The caller must Close the returned store.
func openCoordinator(opts *RootOptions) (*coordinator.Coordinator, *store.Store, *policy.Config, error) {
	var (
		cfg   = &policy.Config{}
		admin string
	)
	if opts.PolicyDir != "" {
		loaded, err := policy.Load(opts.PolicyDir)
		if err != nil {
			return nil, nil, nil, WrapExitError(ExitCommandError, "loading policy config", err)
		}
		cfg = loaded
		admin = loaded.Admin
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "opening database", err)
	}

	coord, err := coordinator.New(coordinator.Config{
		Store:  st,
		Admin:  admin,
		Logger: logging.Default(),
	})
	if err != nil {
		st.Close()
		return nil, nil, nil, WrapExitError(ExitCommandError, "building coordinator", err)
	}

	return coord, st, cfg, nil
}
