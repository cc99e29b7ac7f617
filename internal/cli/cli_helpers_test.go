package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/store"
	"github.com/roach88/blockaviate/internal/testutil"
)

// Proofs solving the puzzle from genesis (1) and then from 632238.
const (
	proofAfterGenesis int64 = 632238
	proofAfterSecond  int64 = 299203
)

// testOptions returns RootOptions pointing at a fresh ledger in a temp dir.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:   format,
		Database: filepath.Join(t.TempDir(), "chain.jsonl"),
		Backend:  "file",
		Clock:    testutil.NewDeterministicClock(),
		BatchIDs: testutil.NewFixedBatchGenerator("batch-1"),
	}
}

// execute runs a subcommand built by newCmd and returns its stdout.
func execute(t *testing.T, opts *RootOptions, newCmd func(*RootOptions) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newCmd(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seedChain writes a valid three-block chain to path without solving proofs.
// When tamper is set, the third block's proof is off by one.
func seedChain(t *testing.T, path string, tamper bool) []block.Block {
	t.Helper()

	genesis := block.Block{
		Index:     1,
		Timestamp: "2024-01-01 00:00:00.000000",
		Proof:     block.GenesisProof,
		PrevHash:  block.GenesisPrevHash,
		OpKind:    block.NoOp,
	}
	second := block.Block{
		Index:     2,
		Timestamp: "2024-01-01 00:00:01.000000",
		Proof:     proofAfterGenesis,
		PrevHash:  block.Hash(genesis),
		OpKind:    block.Create,
	}
	third := block.Block{
		Index:     3,
		Timestamp: "2024-01-01 00:00:02.000000",
		Proof:     proofAfterSecond,
		PrevHash:  block.Hash(second),
		OpKind:    block.Read,
	}
	if tamper {
		third.Proof++
	}

	log := store.NewFileLog(path)
	blocks := []block.Block{genesis, second, third}
	for _, b := range blocks {
		require.NoError(t, log.Append(context.Background(), b))
	}
	return blocks
}
