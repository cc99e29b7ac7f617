package store

import (
	"context"

	"github.com/roach88/blockaviate/internal/block"
)

// Backend is the durable, append-only mirror of a chain.
//
// Implementations must:
//   - return records in append order from Load
//   - treat a missing log as an empty chain, not an error
//   - make Append durable before returning
//   - report open/write failures as ErrCodeStorageUnavailable and
//     unparseable records as ErrCodeCorruptRecord
type Backend interface {
	Load(ctx context.Context) ([]block.Block, error)
	Append(ctx context.Context, b block.Block) error
	Path() string
	Close() error
}
