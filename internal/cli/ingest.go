package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/blockaviate/internal/block"
)

// IngestResult summarizes one ingest run.
type IngestResult struct {
	BatchID        string    `json:"batch_id"`
	Records        int       `json:"records"`
	Every          int       `json:"every"`
	BlocksAppended int       `json:"blocks_appended"`
	Latest         BlockView `json:"latest"`
}

func (r IngestResult) String() string {
	return fmt.Sprintf("Ingested %d records (batch %s): %d blocks appended, latest #%d",
		r.Records, r.BatchID, r.BlocksAppended, r.Latest.Index)
}

type ingestOptions struct {
	every int
	query bool
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest <records.json>",
		Short: "Record a batch import of a JSON record file",
		Long: `Walk a JSON array of records as a batch import would and record the
ledger operations it performs.

A create block is appended for every record whose position is a multiple of
--every, counting from zero. With --query, one read block is appended after
the import. The records themselves are not stored.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.every, "every", 0, "append a create block every N records (default from config)")
	cmd.Flags().BoolVar(&opts.query, "query", false, "append a read block after the import")

	return cmd
}

func runIngest(rootOpts *RootOptions, opts *ingestOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	if opts.every < 0 {
		_ = formatter.Error(ErrCodeInvalidArgs, fmt.Sprintf("--every must be >= 1, got %d", opts.every), nil)
		return NewExitError(ExitCommandError, "invalid --every")
	}

	records, err := readRecords(path)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), map[string]string{"path": path})
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}

	ctx := commandContext(cmd)
	l, cfg, err := openLedger(ctx, rootOpts, cmd, formatter)
	if err != nil {
		return err
	}
	defer l.Close()

	every := cfg.IngestEvery
	if opts.every > 0 {
		every = opts.every
	}

	batchID := batchIDs(rootOpts).Generate()
	logger := slog.Default().With("batch_id", batchID)
	logger.Info("ingest started", "records", len(records), "every", every, "source", path)

	result := IngestResult{BatchID: batchID, Records: len(records), Every: every}

	appendOp := func(op block.OpKind) error {
		b, created, err := appendCounted(ctx, l, op)
		if err != nil {
			return err
		}
		if created {
			result.BlocksAppended++
		}
		result.Latest = newBlockView(b)
		return nil
	}

	for i := range records {
		if i%every != 0 {
			continue
		}
		formatter.VerboseLog("Record %d: appending create block", i)
		if err := appendOp(block.Create); err != nil {
			_ = formatter.Error(ErrCodeStorage, err.Error(), map[string]int{"record": i})
			return WrapExitError(ExitCommandError, "ingest aborted", err)
		}
	}

	if opts.query {
		if err := appendOp(block.Read); err != nil {
			_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
			return WrapExitError(ExitCommandError, "ingest aborted", err)
		}
	}

	if result.BlocksAppended == 0 {
		result.Latest = newBlockView(l.Latest())
	}

	logger.Info("ingest finished", "blocks_appended", result.BlocksAppended, "latest", result.Latest.Index)
	return formatter.SuccessBatch(result, batchID)
}

// blockAppender is the part of the ledger ingest drives.
type blockAppender interface {
	Append(ctx context.Context, op block.OpKind) (block.Block, error)
	Latest() block.Block
}

// appendCounted appends op and reports whether a new block was written.
// A deduplicated append hands back the existing latest block instead.
func appendCounted(ctx context.Context, a blockAppender, op block.OpKind) (block.Block, bool, error) {
	prev := a.Latest().Index
	b, err := a.Append(ctx, op)
	if err != nil {
		return block.Block{}, false, err
	}
	return b, b.Index > prev, nil
}

// readRecords decodes a JSON array. Record contents are opaque.
func readRecords(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: expected a JSON array of records: %w", path, err)
	}
	return records, nil
}
