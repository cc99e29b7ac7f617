package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/store"
)

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append <op>",
		Short: "Record one completed operation",
		Long: `Record that a create, read, update or delete completed against the data store.

The op may be given by name (create, read, update, delete) or by code (0..3).
Appending solves a proof-of-work puzzle first, which takes a moment.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppend(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runAppend(opts *RootOptions, rawOp string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	op, err := block.ParseOpKind(rawOp)
	if err == nil && op == block.NoOp {
		err = errors.New("noop is reserved for the genesis block")
	}
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidArgs, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid op", err)
	}

	ctx := commandContext(cmd)
	l, _, err := openLedger(ctx, opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer l.Close()

	formatter.VerboseLog("Solving proof for block %d...", l.Latest().Index+1)

	b, err := l.Append(ctx, op)
	if err != nil {
		code := ErrCodeGeneric
		if store.IsStorageUnavailable(err) {
			code = ErrCodeStorage
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "append failed", err)
	}

	return formatter.Success(newBlockView(b))
}
