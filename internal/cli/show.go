package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ShowResult lists every block in append order.
type ShowResult struct {
	Path   string      `json:"path"`
	Blocks []BlockView `json:"blocks"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every block in the ledger",
		Long: `Print the whole chain in append order.

Text output renders a table with truncated hashes; JSON output carries full hashes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd)
		},
	}

	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	l, _, err := openLedger(commandContext(cmd), opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer l.Close()

	blocks := l.Blocks()
	result := ShowResult{Path: l.Path(), Blocks: make([]BlockView, 0, len(blocks))}
	for _, b := range blocks {
		result.Blocks = append(result.Blocks, newBlockView(b))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	table, err := renderTable(result.Blocks)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to render table", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	fmt.Fprintf(cmd.OutOrStdout(), "%d blocks in %s\n", len(result.Blocks), result.Path)
	return nil
}

func renderTable(views []BlockView) (string, error) {
	data := pterm.TableData{{"Index", "Timestamp", "Op", "Proof", "Prev", "Hash"}}
	for _, v := range views {
		data = append(data, v.row())
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
