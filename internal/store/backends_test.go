package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/verify"
)

// allBackends opens a fresh, empty log of every kind.
func allBackends() map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		"file":   func(t *testing.T) Backend { return NewFileLog(tempLogPath(t)) },
		"sqlite": func(t *testing.T) Backend { return createTestSQLite(t) },
		"bolt":   func(t *testing.T) Backend { return createTestBolt(t) },
	}
}

func TestBackends_NonLowercaseLinkIsBrokenNotCorrupt(t *testing.T) {
	ctx := context.Background()

	for name, open := range allBackends() {
		t.Run(name, func(t *testing.T) {
			backend := open(t)
			blocks := testBlocks(3)
			blocks[1].PrevHash = "ABCDEF"
			for _, b := range blocks {
				require.NoError(t, backend.Append(ctx, b))
			}

			loaded, err := backend.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, blocks, loaded)

			v, found := verify.FirstViolation(loaded)
			require.True(t, found)
			assert.Equal(t, verify.BrokenLink, v.Kind)
			assert.Equal(t, int64(2), v.Index)
			assert.Equal(t, "ABCDEF", v.Got)
		})
	}
}

func TestBackends_DecomposedTextIsCorrupt(t *testing.T) {
	ctx := context.Background()

	mutations := map[string]func(b *block.Block){
		"timestamp": func(b *block.Block) { b.Timestamp = "cafe\u0301" },
		"prevHash":  func(b *block.Block) { b.PrevHash = "e\u0301" },
	}

	for name, open := range allBackends() {
		for field, mutate := range mutations {
			t.Run(name+"/"+field, func(t *testing.T) {
				backend := open(t)
				blocks := testBlocks(2)
				mutate(&blocks[1])
				for _, b := range blocks {
					require.NoError(t, backend.Append(ctx, b))
				}

				_, err := backend.Load(ctx)
				require.Error(t, err)
				assert.True(t, IsCorruptRecord(err), "got %v", err)
			})
		}
	}
}
