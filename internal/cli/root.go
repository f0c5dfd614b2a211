package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/yartsul/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// DBPath is the journal default taken from YARTSUL_DB. Commands expose
	// it through their own --db flag.
	DBPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the yartsul CLI. Flag
// defaults come from the environment; see config.Config.
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Config{Format: "text", DBPath: ":memory:"}
	}
	opts := &RootOptions{DBPath: cfg.DBPath}

	cmd := &cobra.Command{
		Use:   "yartsul",
		Short: "yartsul - typed actions and reducers",
		Long: `Run reducer scenarios, validate action catalogs and inspect
journaled runs for the yartsul action and reducer library.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", cfgErr)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", cfg.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// requireFileDB rejects journal paths that cannot hold earlier runs.
func requireFileDB(path string) error {
	if path == "" || path == ":memory:" {
		return NewExitError(ExitCommandError, "--db must name a journal file")
	}
	return nil
}
