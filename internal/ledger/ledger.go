// Package ledger is the entry point collaborators use to record operations.
//
// A Ledger wraps one store.Chain. Callers hold the *Ledger explicitly; there
// is no process-wide instance. Append mines a proof, links the new block to
// the latest one and persists it. IsValid re-verifies the whole chain.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/pow"
	"github.com/roach88/blockaviate/internal/store"
	"github.com/roach88/blockaviate/internal/verify"
)

// ErrInvalidOpKind is returned by Append for op kinds collaborators may not record.
var ErrInvalidOpKind = errors.New("invalid op kind")

// Ledger records external operations as proof-stamped, hash-linked blocks.
//
// Thread-safety: Append calls are serialized. This keeps one process handle
// consistent; it does not make multiple processes sharing a log safe.
type Ledger struct {
	mu     sync.Mutex
	chain  *store.Chain
	logger *slog.Logger
	clock  block.Clock
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithClock sets the timestamp source used when Open creates the chain.
func WithClock(clock block.Clock) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// New returns a Ledger over chain.
func New(chain *store.Chain, opts ...Option) *Ledger {
	l := &Ledger{chain: chain, logger: slog.Default(), clock: block.SystemClock{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open loads a chain from backend and wraps it in a Ledger.
func Open(ctx context.Context, backend store.Backend, opts ...Option) (*Ledger, error) {
	l := New(nil, opts...)
	chain, err := store.Open(ctx, backend, store.WithLogger(l.logger), store.WithClock(l.clock))
	if err != nil {
		return nil, err
	}
	l.chain = chain
	l.logger.Info("ledger loaded", "path", chain.Path(), "blocks", chain.Len())
	return l, nil
}

// Append records that an operation of kind op completed.
//
// The proof is solved from the latest block's proof; cancelling ctx stops the
// search. If the chain's dedupe guard rejects the link, the latest block is
// returned unchanged.
func (l *Ledger) Append(ctx context.Context, op block.OpKind) (block.Block, error) {
	if !op.Valid() || op == block.NoOp {
		return block.Block{}, fmt.Errorf("append %v: %w", op, ErrInvalidOpKind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	latest := l.chain.Latest()

	start := time.Now()
	proof, err := pow.SolveContext(ctx, latest.Proof)
	if err != nil {
		return block.Block{}, fmt.Errorf("solve proof for block %d: %w", latest.Index+1, err)
	}
	elapsed := time.Since(start)

	prevHash := block.Hash(latest)
	b, created, err := l.chain.CreateBlock(ctx, proof, prevHash, op)
	if err != nil {
		return block.Block{}, fmt.Errorf("append %v: %w", op, err)
	}
	if !created {
		l.logger.Warn("duplicate prev hash, skipping", "prev_hash", prevHash, "op", op.String())
		return latest, nil
	}

	l.logger.Info("block appended",
		"index", b.Index,
		"op", op.String(),
		"proof", b.Proof,
		"duration", elapsed,
	)
	return b, nil
}

// Latest returns the most recent block.
func (l *Ledger) Latest() block.Block {
	return l.chain.Latest()
}

// Blocks returns a copy of the chain in append order.
func (l *Ledger) Blocks() []block.Block {
	return l.chain.Blocks()
}

// Len returns the number of blocks, genesis included.
func (l *Ledger) Len() int {
	return l.chain.Len()
}

// IsValid reports whether every block is correctly linked and proof-stamped.
// An invalid chain is still readable; callers decide whether to stop writing.
func (l *Ledger) IsValid() bool {
	return verify.Validate(l.chain.Blocks())
}

// Audit validates the chain and logs the first violation, if any.
func (l *Ledger) Audit() verify.Report {
	report := verify.Audit(l.chain.Blocks())
	if report.Violation != nil {
		l.logger.Error("chain integrity violation",
			"index", report.Violation.Index,
			"kind", string(report.Violation.Kind),
			"path", l.chain.Path(),
		)
	}
	return report
}

// Path returns the backing log location.
func (l *Ledger) Path() string {
	return l.chain.Path()
}

// Close releases the backing store.
func (l *Ledger) Close() error {
	return l.chain.Close()
}
