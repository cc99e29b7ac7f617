package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blockaviate/internal/verify"
)

// ValidationResult holds the outcome of a chain audit.
type ValidationResult struct {
	Path string `json:"path"`
	verify.Report
}

func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("✓ Chain valid: %d blocks, latest #%d", r.Length, r.LatestIndex)
	}
	return fmt.Sprintf("✗ Chain invalid: %s", r.Violation)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Verify every hash link and proof in the ledger",
		Long: `Re-derive every block's link and proof-of-work and report the first failure.

Exits 0 when the chain is intact, 1 when an integrity violation is found, and
2 when the ledger cannot be opened at all.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	l, _, err := openLedger(commandContext(cmd), opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer l.Close()

	result := ValidationResult{Path: l.Path(), Report: l.Audit()}
	if result.Valid {
		return formatter.Success(result)
	}

	if opts.Format == "json" {
		_ = formatter.Error(ErrCodeIntegrity, result.Violation.String(), result)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), result)
	}
	return NewExitError(ExitFailure, "chain integrity violation")
}
