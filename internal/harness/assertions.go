package harness

import (
	"fmt"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/verify"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertValid:
		return assertValid(result.Report, *a.Want)
	case AssertLength:
		return assertLength(result.Blocks, a.Count)
	case AssertLatestOp:
		return assertLatestOp(result.Blocks, a.Op)
	case AssertViolation:
		return assertViolation(result.Report, a.Index, verify.ViolationKind(a.Kind))
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertValid(report verify.Report, want bool) error {
	if report.Valid == want {
		return nil
	}
	actual := "valid"
	if report.Violation != nil {
		actual = report.Violation.String()
	}
	return &AssertionError{
		Type:     AssertValid,
		Expected: fmt.Sprintf("valid=%t", want),
		Actual:   actual,
	}
}

func assertLength(blocks []block.Block, count int) error {
	if len(blocks) == count {
		return nil
	}
	return &AssertionError{
		Type:     AssertLength,
		Expected: fmt.Sprintf("%d blocks", count),
		Actual:   fmt.Sprintf("%d blocks", len(blocks)),
	}
}

func assertLatestOp(blocks []block.Block, raw string) error {
	want, err := block.ParseOpKind(raw)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return &AssertionError{Type: AssertLatestOp, Expected: want.String(), Actual: "empty chain"}
	}
	if got := blocks[len(blocks)-1].OpKind; got != want {
		return &AssertionError{Type: AssertLatestOp, Expected: want.String(), Actual: got.String()}
	}
	return nil
}

func assertViolation(report verify.Report, index int64, kind verify.ViolationKind) error {
	expected := fmt.Sprintf("%s at block %d", kind, index)
	if report.Violation == nil {
		return &AssertionError{Type: AssertViolation, Expected: expected, Actual: "no violation"}
	}
	if v := report.Violation; v.Index != index || v.Kind != kind {
		return &AssertionError{
			Type:     AssertViolation,
			Expected: expected,
			Actual:   fmt.Sprintf("%s at block %d", v.Kind, v.Index),
		}
	}
	return nil
}
