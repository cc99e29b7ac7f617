package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/testutil"
)

// discardLogger keeps test output quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tempLogPath returns a path for a ledger file that does not exist yet.
func tempLogPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "chain.jsonl")
}

// openTestChain opens a chain over backend with a deterministic clock.
func openTestChain(t *testing.T, backend Backend) *Chain {
	t.Helper()
	c, err := Open(context.Background(), backend,
		WithClock(testutil.NewDeterministicClock()),
		WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// createTestSQLite opens a SQLite log in a temp directory.
func createTestSQLite(t *testing.T) *SQLiteLog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBolt opens a bbolt log in a temp directory.
func createTestBolt(t *testing.T) *BoltLog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bolt")
	l, err := OpenBolt(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

// writeLines writes raw lines to path, each terminated by a newline.
func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testBlocks returns n linked blocks with arbitrary proofs.
func testBlocks(n int) []block.Block {
	clock := testutil.NewDeterministicClock()
	blocks := make([]block.Block, 0, n)
	prevHash := block.GenesisPrevHash
	op := block.NoOp
	for i := 1; i <= n; i++ {
		b := block.Block{
			Index:     int64(i),
			Timestamp: clock.Now(),
			Proof:     int64(i * 1000),
			PrevHash:  prevHash,
			OpKind:    op,
		}
		blocks = append(blocks, b)
		prevHash = block.Hash(b)
		op = block.OpKind(i % 4)
	}
	return blocks
}

// failingBackend wraps a backend and fails appends on demand.
type failingBackend struct {
	Backend
	appendErr error
}

func (f *failingBackend) Append(ctx context.Context, b block.Block) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.Backend.Append(ctx, b)
}
