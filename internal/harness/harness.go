package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/config"
	"github.com/roach88/blockaviate/internal/ledger"
	"github.com/roach88/blockaviate/internal/store"
	"github.com/roach88/blockaviate/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs steps against one ledger with a deterministic clock.
type Harness struct {
	cfg    config.Config
	ledger *ledger.Ledger
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Run executes a scenario against a fresh ledger created under dir.
//
// Execution flow:
// 1. Open a new ledger (writing genesis)
// 2. Execute steps in order
// 3. Reload the chain from storage and audit it
// 4. Evaluate assertions
func Run(ctx context.Context, scenario *Scenario, dir string) (*Result, error) {
	cfg := config.Default()
	cfg.Backend = scenario.Backend
	cfg.Path = filepath.Join(dir, scenario.Name+ledgerExt(scenario.Backend))

	h := &Harness{
		cfg:    cfg,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	if err := h.open(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if h.ledger != nil {
			h.ledger.Close()
		}
	}()

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	// Reload so assertions see what storage holds, not just memory.
	if err := h.reopen(ctx); err != nil {
		return nil, fmt.Errorf("final reload: %w", err)
	}
	result.Blocks = h.ledger.Blocks()
	result.Report = h.ledger.Audit()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func ledgerExt(backend string) string {
	switch backend {
	case config.BackendSQLite:
		return ".db"
	case config.BackendBolt:
		return ".bolt"
	default:
		return ".jsonl"
	}
}

func (h *Harness) open(ctx context.Context) error {
	backend, err := h.cfg.OpenBackend(ctx)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	l, err := ledger.Open(ctx, backend, ledger.WithLogger(h.logger), ledger.WithClock(h.clock))
	if err != nil {
		backend.Close()
		return fmt.Errorf("open ledger: %w", err)
	}
	h.ledger = l
	return nil
}

func (h *Harness) reopen(ctx context.Context) error {
	if err := h.ledger.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	h.ledger = nil
	return h.open(ctx)
}

// execute runs a single step and records it in the trace.
func (h *Harness) execute(ctx context.Context, i int, step Step, result *Result) error {
	switch {
	case step.Append != "":
		op, err := block.ParseOpKind(step.Append)
		if err != nil {
			return err
		}
		b, err := h.ledger.Append(ctx, op)
		if err != nil {
			return err
		}
		result.AddTrace(i, "append", op.String(), b.Index)
		h.logger.Info("step completed", "step", i, "action", "append", "index", b.Index)

	case step.Tamper != nil:
		if err := h.tamper(ctx, *step.Tamper); err != nil {
			return err
		}
		t := step.Tamper
		result.AddTrace(i, "tamper", fmt.Sprintf("block %d %s=%s", t.Index, t.Field, t.Value), h.ledger.Latest().Index)

	case step.Reopen:
		if err := h.reopen(ctx); err != nil {
			return err
		}
		result.AddTrace(i, "reopen", "", h.ledger.Latest().Index)
	}
	return nil
}

// tamper rewrites the file log with one field of one block replaced.
// The open ledger keeps its in-memory copy until the next reopen.
func (h *Harness) tamper(ctx context.Context, t TamperStep) error {
	log := store.NewFileLog(h.cfg.Path)
	blocks, err := log.Load(ctx)
	if err != nil {
		return err
	}
	if t.Index < 1 || t.Index > int64(len(blocks)) {
		return fmt.Errorf("tamper block %d: chain has %d blocks", t.Index, len(blocks))
	}

	b := &blocks[t.Index-1]
	switch t.Field {
	case FieldTimestamp:
		b.Timestamp = t.Value
	case FieldPrevHash:
		b.PrevHash = t.Value
	case FieldProof:
		n, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("tamper proof: %w", err)
		}
		b.Proof = n
	case FieldOpKind:
		op, err := block.ParseOpKind(t.Value)
		if err != nil {
			return fmt.Errorf("tamper opKind: %w", err)
		}
		b.OpKind = op
	}

	if err := os.Remove(h.cfg.Path); err != nil {
		return fmt.Errorf("tamper: %w", err)
	}
	for _, rewritten := range blocks {
		if err := log.Append(ctx, rewritten); err != nil {
			return err
		}
	}
	return nil
}
