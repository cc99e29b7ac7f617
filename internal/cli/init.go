package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ledger if it does not exist",
		Long: `Open the configured ledger, writing the genesis block when the log is empty.

Running init against an existing ledger is a no-op that prints its latest block.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	l, _, err := openLedger(commandContext(cmd), opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer l.Close()

	return formatter.Success(newBlockView(l.Latest()))
}
