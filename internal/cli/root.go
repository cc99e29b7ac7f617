package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blockaviate/internal/block"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides the configured ledger path
	Backend    string // overrides the configured backend

	// Clock overrides block timestamps (for testing).
	// If nil, blocks are stamped with the system clock.
	Clock block.Clock

	// BatchIDs overrides ingest batch id generation (for testing).
	// If nil, UUIDv7 ids are used.
	BatchIDs BatchIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the blockaviate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "blockaviate",
		Short: "Block-Aviate - tamper-evident operation ledger",
		Long: `An append-only, hash-linked ledger recording which create/read/update/delete
operations were performed against an external data store.

Every recorded operation becomes a proof-of-work stamped block linked to its
predecessor by SHA-256, so the history can be re-verified at any time.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the ledger (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend: file|sqlite|bolt (overrides config)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAppendCommand(opts))
	cmd.AddCommand(NewLatestCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))

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
