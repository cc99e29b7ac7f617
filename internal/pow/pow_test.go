package pow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_GenesisProofIsMinimal(t *testing.T) {
	n := Solve(1)
	require.GreaterOrEqual(t, n, int64(1))

	assert.True(t, Check(n, 1))
	assert.True(t, strings.HasPrefix(Digest(n, 1), "00000"))

	if n > 1 {
		assert.False(t, Check(n-1, 1), "n-1 must not satisfy the puzzle")
	}
}

func TestSolve_NoSmallerSolution(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive minimality scan")
	}
	n := Solve(1)
	for m := int64(1); m < n; m++ {
		if Check(m, 1) {
			t.Fatalf("found smaller solution %d < %d", m, n)
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	assert.Equal(t, Solve(1), Solve(1))
}

func TestSolve_ChainedProof(t *testing.T) {
	// prev⁵ of a solved proof overflows int64; the search must still work.
	first := Solve(1)
	second := Solve(first)

	assert.Equal(t, int64(299203), second)
	assert.True(t, Check(second, first))
}

func TestSolve_KnownValues(t *testing.T) {
	assert.Equal(t, int64(632238), Solve(1))
	assert.Equal(t, "00000d27548b48fb9948dec841504bb2dfe0ad4812f0f6c049f2cd02dada6dcd", Digest(632238, 1))
}

func TestCheck_RejectsWrongProof(t *testing.T) {
	assert.False(t, Check(632237, 1))
	assert.False(t, Check(632239, 1))
	assert.False(t, Check(0, 1))
}

func TestDigest_NegativeOperand(t *testing.T) {
	// 0² − 1⁵ = −1, hashed as the string "-1"
	assert.Equal(t, "1bad6b8cf97131fceab8543e81f7757195fbb1d36b376ee994ad1cf17699c464", Digest(0, 1))
	// 1² − 2⁵ = −31
	assert.Equal(t, "fe2544c4fc87aad6cacec50229e806d495a946ec905b5ac26f116ee89e5567d4", Digest(1, 2))
}

func TestSolveContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The solution for 1 lies far beyond the first cancellation check.
	n, err := SolveContext(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestSolveContext_Deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	_, err := SolveContext(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSolveContext_MatchesSolve(t *testing.T) {
	n, err := SolveContext(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Solve(1), n)
}
