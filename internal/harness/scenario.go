package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/config"
	"github.com/roach88/blockaviate/internal/verify"
)

// Scenario defines a ledger conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backend selects the storage backend ("file", "sqlite" or "bolt").
	// Defaults to "file".
	Backend string `yaml:"backend,omitempty"`

	// Steps run in order against a fresh ledger.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final chain and audit report.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action in a scenario. Exactly one field must be set.
type Step struct {
	// Append records an operation by name or code.
	Append string `yaml:"append,omitempty"`

	// Tamper rewrites one field of one persisted block.
	Tamper *TamperStep `yaml:"tamper,omitempty"`

	// Reopen closes the ledger and loads it again from storage.
	Reopen bool `yaml:"reopen,omitempty"`
}

// TamperStep edits a persisted block behind the ledger's back.
type TamperStep struct {
	Index int64  `yaml:"index"`
	Field string `yaml:"field"` // timestamp | proof | prevHash | opKind
	Value string `yaml:"value"`
}

// Assertion validates the final chain or audit report.
type Assertion struct {
	// Type specifies the assertion type:
	// - "valid": chain validity equals Want
	// - "length": chain has exactly Count blocks
	// - "latest_op": latest block records Op
	// - "violation": first violation is Kind at Index
	Type string `yaml:"type"`

	Want  *bool  `yaml:"want,omitempty"`
	Count int    `yaml:"count,omitempty"`
	Op    string `yaml:"op,omitempty"`
	Index int64  `yaml:"index,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
}

// Assertion type constants.
const (
	AssertValid     = "valid"
	AssertLength    = "length"
	AssertLatestOp  = "latest_op"
	AssertViolation = "violation"
)

// Tamperable block fields.
const (
	FieldTimestamp = "timestamp"
	FieldProof     = "proof"
	FieldPrevHash  = "prevHash"
	FieldOpKind    = "opKind"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Backend == "" {
		scenario.Backend = config.BackendFile
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Backend {
	case config.BackendFile, config.BackendSQLite, config.BackendBolt:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, s.Backend, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, backend string, step Step) error {
	set := 0
	if step.Append != "" {
		set++
	}
	if step.Tamper != nil {
		set++
	}
	if step.Reopen {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of append, tamper or reopen is required", index)
	}

	if step.Append != "" {
		op, err := block.ParseOpKind(step.Append)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		if op == block.NoOp {
			return fmt.Errorf("steps[%d]: noop cannot be appended", index)
		}
	}

	if t := step.Tamper; t != nil {
		if backend != config.BackendFile {
			return fmt.Errorf("steps[%d]: tamper is only supported on the file backend", index)
		}
		if t.Index < 1 {
			return fmt.Errorf("steps[%d]: tamper index must be >= 1", index)
		}
		switch t.Field {
		case FieldTimestamp, FieldProof, FieldPrevHash, FieldOpKind:
		default:
			return fmt.Errorf("steps[%d]: unknown tamper field %q", index, t.Field)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertValid:
		if a.Want == nil {
			return fmt.Errorf("assertions[%d]: want is required for valid", index)
		}
	case AssertLength:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be >= 1 for length", index)
		}
	case AssertLatestOp:
		if _, err := block.ParseOpKind(a.Op); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertViolation:
		if a.Index < 1 {
			return fmt.Errorf("assertions[%d]: index is required for violation", index)
		}
		switch verify.ViolationKind(a.Kind) {
		case verify.BrokenLink, verify.InvalidProof:
		default:
			return fmt.Errorf("assertions[%d]: unknown violation kind %q", index, a.Kind)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
