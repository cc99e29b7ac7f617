package cli

import (
	"github.com/spf13/cobra"
)

// NewLatestCommand creates the latest command.
func NewLatestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "latest",
		Short:         "Print the most recent block",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLatest(rootOpts, cmd)
		},
	}

	return cmd
}

func runLatest(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	l, _, err := openLedger(commandContext(cmd), opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer l.Close()

	return formatter.Success(newBlockView(l.Latest()))
}
