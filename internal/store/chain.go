package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/blockaviate/internal/block"
)

// Chain owns the in-memory block sequence and mirrors it to a Backend.
//
// INVARIANTS:
//   - blocks is never empty once Open returns
//   - blocks[i].Index == i+1
//   - every block is persisted before it becomes visible in memory
//
// Thread-safety: reads are safe from any goroutine. CreateBlock assumes a
// single writer per backing log; concurrent writers are not supported.
type Chain struct {
	mu       sync.RWMutex
	backend  Backend
	blocks   []block.Block
	prevSeen map[string]struct{} // prevHash dedupe index
	clock    block.Clock
	logger   *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithClock sets the timestamp source for new blocks.
func WithClock(clock block.Clock) Option {
	return func(c *Chain) {
		c.clock = clock
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// Open loads the chain from backend and creates the genesis block if the log
// is empty. Corrupt records and out-of-sequence indices abort the open.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Chain, error) {
	c := &Chain{
		backend:  backend,
		prevSeen: make(map[string]struct{}),
		clock:    block.SystemClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	blocks, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chain: %w", err)
	}

	for i, b := range blocks {
		if want := int64(i + 1); b.Index != want {
			return nil, fmt.Errorf("load chain: %w", newCorruptError(backend.Path(), i+1,
				fmt.Sprintf("index out of sequence: want %d, got %d", want, b.Index), nil))
		}
		c.prevSeen[b.PrevHash] = struct{}{}
	}
	c.blocks = blocks

	if len(c.blocks) == 0 {
		genesis, _, err := c.CreateBlock(ctx, block.GenesisProof, block.GenesisPrevHash, block.NoOp)
		if err != nil {
			return nil, fmt.Errorf("create genesis block: %w", err)
		}
		c.logger.Info("genesis block created", "path", backend.Path(), "timestamp", genesis.Timestamp)
	}

	c.logger.Debug("chain loaded", "path", backend.Path(), "blocks", len(c.blocks))
	return c, nil
}

// CreateBlock appends a block recording op with the given proof and link.
//
// If any block already carries prevHash the call is a no-op and returns
// created=false. This keeps the genesis block from being re-inserted on
// restart; it also means two different blocks extending the same parent
// collapse to one, which is only sound with a single writer.
//
// The block is durably persisted before it is added to memory.
func (c *Chain) CreateBlock(ctx context.Context, proof int64, prevHash string, op block.OpKind) (b block.Block, created bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.prevSeen[prevHash]; dup {
		c.logger.Debug("duplicate prev hash, skipping", "prev_hash", prevHash)
		return block.Block{}, false, nil
	}

	b = block.Block{
		Index:     int64(len(c.blocks) + 1),
		Timestamp: c.clock.Now(),
		Proof:     proof,
		PrevHash:  prevHash,
		OpKind:    op,
	}
	if err := checkBlock(b); err != nil {
		return block.Block{}, false, fmt.Errorf("block %d: %w", b.Index, err)
	}

	if err := c.backend.Append(ctx, b); err != nil {
		return block.Block{}, false, fmt.Errorf("persist block %d: %w", b.Index, err)
	}

	c.blocks = append(c.blocks, b)
	c.prevSeen[prevHash] = struct{}{}
	return b, true, nil
}

// Latest returns the most recent block.
func (c *Chain) Latest() block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1]
}

// Len returns the number of blocks.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// Blocks returns a copy of the sequence in append order.
func (c *Chain) Blocks() []block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]block.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Path returns the backing log location.
func (c *Chain) Path() string {
	return c.backend.Path()
}

// Close releases the backend.
func (c *Chain) Close() error {
	return c.backend.Close()
}
