package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockaviate/internal/verify"
)

func TestValidateValidChain(t *testing.T) {
	opts := testOptions(t, "text")
	seedChain(t, opts.Database, false)

	out, err := execute(t, opts, NewValidateCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Chain valid: 3 blocks, latest #3")
}

func TestValidateValidChainJSON(t *testing.T) {
	opts := testOptions(t, "json")
	seedChain(t, opts.Database, false)

	out, err := execute(t, opts, NewValidateCommand)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Length)
	assert.Equal(t, int64(3), resp.Data.LatestIndex)
	assert.Nil(t, resp.Data.Violation)
}

func TestValidateFreshLedger(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(t, opts, NewValidateCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "1 blocks")
}

func TestValidateTamperedProof(t *testing.T) {
	opts := testOptions(t, "text")
	seedChain(t, opts.Database, true)

	out, err := execute(t, opts, NewValidateCommand)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Chain invalid")
	assert.Contains(t, out, "INVALID_PROOF at block 3")
}

func TestValidateTamperedProofJSON(t *testing.T) {
	opts := testOptions(t, "json")
	seedChain(t, opts.Database, true)

	out, err := execute(t, opts, NewValidateCommand)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeIntegrity, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, string(verify.InvalidProof))
}

func TestValidateCorruptLedgerIsCommandError(t *testing.T) {
	opts := testOptions(t, "text")
	require.NoError(t, os.WriteFile(opts.Database, []byte("garbage\n"), 0o644))

	_, err := execute(t, opts, NewValidateCommand)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
