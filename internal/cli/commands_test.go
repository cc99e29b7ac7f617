package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockaviate/internal/block"
)

func decodeBlockView(t *testing.T, out string) BlockView {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   BlockView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestInitCreatesGenesis(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(t, opts, NewInitCommand)
	require.NoError(t, err)

	view := decodeBlockView(t, out)
	assert.Equal(t, int64(1), view.Index)
	assert.Equal(t, "noop", view.Op)
	assert.Equal(t, -1, view.OpKind)
	assert.Equal(t, block.GenesisPrevHash, view.PrevHash)
	assert.Equal(t, block.GenesisProof, view.Proof)
	assert.Equal(t, "2024-01-01 00:00:00.000000", view.Timestamp)
	assert.Len(t, view.Hash, 64)

	_, err = os.Stat(opts.Database)
	require.NoError(t, err, "init must persist genesis")
}

func TestInitIsIdempotent(t *testing.T) {
	opts := testOptions(t, "json")
	seeded := seedChain(t, opts.Database, false)

	out, err := execute(t, opts, NewInitCommand)
	require.NoError(t, err)

	view := decodeBlockView(t, out)
	assert.Equal(t, seeded[2].Index, view.Index)
	assert.Equal(t, block.Hash(seeded[2]), view.Hash)
}

func TestInitSQLiteBackend(t *testing.T) {
	opts := testOptions(t, "json")
	opts.Backend = "sqlite"
	opts.Database = filepath.Join(t.TempDir(), "chain.db")

	out, err := execute(t, opts, NewInitCommand)
	require.NoError(t, err)
	assert.Equal(t, int64(1), decodeBlockView(t, out).Index)

	// Reopening sees the same genesis rather than writing a new one.
	out, err = execute(t, opts, NewLatestCommand)
	require.NoError(t, err)
	assert.Equal(t, int64(1), decodeBlockView(t, out).Index)
}

func TestInitInvalidBackend(t *testing.T) {
	opts := testOptions(t, "json")
	opts.Backend = "tape"

	out, err := execute(t, opts, NewInitCommand)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func TestAppendRecordsOperation(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(t, opts, NewAppendCommand, "create")
	require.NoError(t, err)

	view := decodeBlockView(t, out)
	assert.Equal(t, int64(2), view.Index)
	assert.Equal(t, "create", view.Op)
	assert.Equal(t, proofAfterGenesis, view.Proof)

	out, err = execute(t, opts, NewLatestCommand)
	require.NoError(t, err)
	assert.Equal(t, view, decodeBlockView(t, out))
}

func TestAppendAcceptsNumericCode(t *testing.T) {
	opts := testOptions(t, "text")
	seedChain(t, opts.Database, false)

	out, err := execute(t, opts, NewAppendCommand, "3")
	require.NoError(t, err)
	assert.Contains(t, out, "#4")
	assert.Contains(t, out, "op=delete")
	assert.Contains(t, out, "proof=64198")
}

func TestAppendRejectsInvalidOp(t *testing.T) {
	tests := []string{"noop", "4", "upsert"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			opts := testOptions(t, "json")

			out, err := execute(t, opts, NewAppendCommand, raw)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, ErrCodeInvalidArgs, resp.Error.Code)

			_, statErr := os.Stat(opts.Database)
			assert.True(t, os.IsNotExist(statErr), "rejected op must not touch the ledger")
		})
	}
}

func TestAppendRequiresOneArg(t *testing.T) {
	opts := testOptions(t, "text")

	_, err := execute(t, opts, NewAppendCommand)
	require.Error(t, err)
}

func TestLatestText(t *testing.T) {
	opts := testOptions(t, "text")
	seeded := seedChain(t, opts.Database, false)

	out, err := execute(t, opts, NewLatestCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "op=read")
	assert.Contains(t, out, block.Hash(seeded[2])[:12])
}

func TestLatestCorruptLedger(t *testing.T) {
	opts := testOptions(t, "json")
	require.NoError(t, os.WriteFile(opts.Database, []byte("{not json\n"), 0o644))

	out, err := execute(t, opts, NewLatestCommand)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodeCorrupt, resp.Error.Code)
}

func TestLatestStorageUnavailable(t *testing.T) {
	opts := testOptions(t, "json")
	// A directory where the log should be cannot be read as a file.
	require.NoError(t, os.Mkdir(opts.Database, 0o755))

	out, err := execute(t, opts, NewLatestCommand)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodeStorage, resp.Error.Code)
}

func TestShowJSON(t *testing.T) {
	opts := testOptions(t, "json")
	seeded := seedChain(t, opts.Database, false)

	out, err := execute(t, opts, NewShowCommand)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   ShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, opts.Database, resp.Data.Path)
	require.Len(t, resp.Data.Blocks, len(seeded))
	for i, b := range seeded {
		assert.Equal(t, b.Index, resp.Data.Blocks[i].Index)
		assert.Equal(t, b.PrevHash, resp.Data.Blocks[i].PrevHash)
		assert.Equal(t, block.Hash(b), resp.Data.Blocks[i].Hash)
	}
}

func TestShowTable(t *testing.T) {
	opts := testOptions(t, "text")
	seedChain(t, opts.Database, false)

	out, err := execute(t, opts, NewShowCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "Timestamp")
	assert.Contains(t, out, "632238")
	assert.Contains(t, out, "299203")
	assert.Contains(t, out, "create")
	assert.Contains(t, out, "3 blocks in")
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "0", shortHash("0"))
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
}

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blockaviate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: sqlite\npath: from-yaml.db\ningest_every: 4\n"), 0o644))
	t.Setenv("BLOCKAVIATE_INGEST_EVERY", "3")

	opts := &RootOptions{ConfigPath: cfgPath, Database: filepath.Join(dir, "flag.db")}
	cfg, err := resolveConfig(opts)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend, "yaml overrides default")
	assert.Equal(t, 3, cfg.IngestEvery, "env overrides yaml")
	assert.Equal(t, opts.Database, cfg.Path, "flag overrides yaml")
}
