package harness

import (
	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/verify"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step   int    `json:"step"`
	Action string `json:"action"` // "append", "tamper" or "reopen"
	Detail string `json:"detail,omitempty"`
	Index  int64  `json:"index"` // latest block index after the step
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Blocks is the final chain as loaded from storage.
	Blocks []block.Block `json:"blocks"`

	// Report is the audit of Blocks.
	Report verify.Report `json:"report"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records an executed step.
func (r *Result) AddTrace(step int, action, detail string, index int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Step:   step,
		Action: action,
		Detail: detail,
		Index:  index,
	})
}
