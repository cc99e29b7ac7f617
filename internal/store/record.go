package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/blockaviate/internal/block"
)

//go:embed record.cue
var recordSchemaSrc string

// recordSchema validates raw records against the #Record definition.
// A cue.Context is not safe for concurrent use, so checks are serialized.
type recordSchema struct {
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

var loadRecordSchema = sync.OnceValues(newRecordSchema)

func newRecordSchema() (*recordSchema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(recordSchemaSrc, cue.Filename("record.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}

	def := v.LookupPath(cue.ParsePath("#Record"))
	if !def.Exists() {
		return nil, fmt.Errorf("record schema: #Record not defined")
	}

	return &recordSchema{ctx: ctx, def: def}, nil
}

// check unifies one JSON record with the schema and requires a concrete result.
func (s *recordSchema) check(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.CompileBytes(data, cue.Filename("record.json"))
	if err := v.Err(); err != nil {
		return err
	}
	return s.def.Unify(v).Validate(cue.Concrete(true))
}

// decodeRecord parses one persisted line into a block.
// The schema check runs first so field-level errors name the field; the
// strict JSON decode then guards int64 range and trailing data.
func decodeRecord(data []byte) (block.Block, error) {
	schema, err := loadRecordSchema()
	if err != nil {
		return block.Block{}, err
	}
	if err := schema.check(data); err != nil {
		return block.Block{}, fmt.Errorf("schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var b block.Block
	if err := dec.Decode(&b); err != nil {
		return block.Block{}, fmt.Errorf("decode: %w", err)
	}
	if dec.More() {
		return block.Block{}, fmt.Errorf("decode: trailing data after record")
	}

	if err := checkBlock(b); err != nil {
		return block.Block{}, err
	}
	return b, nil
}

// checkBlock enforces the field rules every backend must honour. Link and
// proof validity are left to verification.
func checkBlock(b block.Block) error {
	if b.Index < 1 {
		return fmt.Errorf("index %d: must be >= 1", b.Index)
	}
	if b.Proof < 0 {
		return fmt.Errorf("proof %d: must be >= 0", b.Proof)
	}
	if !b.OpKind.Valid() {
		return fmt.Errorf("opKind %d: must be in -1..3", int(b.OpKind))
	}
	if b.PrevHash == "" {
		return fmt.Errorf("prevHash: must not be empty")
	}
	if err := checkText("timestamp", b.Timestamp); err != nil {
		return err
	}
	return checkText("prevHash", b.PrevHash)
}

// checkText requires valid UTF-8 in NFC form. The canonical encoding is
// byte-exact, so two spellings of the same text would otherwise hash apart
// while rendering identically.
func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s: invalid UTF-8", field)
	}
	if !norm.NFC.IsNormalString(s) {
		return fmt.Errorf("%s: not in NFC form", field)
	}
	return nil
}

// encodeRecord returns the persisted line for b, newline included.
func encodeRecord(b block.Block) []byte {
	return append(block.MarshalCanonical(b), '\n')
}
