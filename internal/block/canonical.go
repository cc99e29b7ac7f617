package block

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Field names as they appear in the canonical encoding.
const (
	FieldIndex     = "index"
	FieldTimestamp = "timestamp"
	FieldProof     = "proof"
	FieldPrevHash  = "prevHash"
	FieldOpKind    = "opKind"
)

// MarshalCanonical produces the canonical JSON encoding of a block.
// This is the ONLY encoding used for hashing and for the persisted log.
//
// Differences from json.Marshal:
//  1. Object keys are emitted in sorted order, independent of struct layout
//  2. No HTML escaping (< > & are written as-is)
//  3. Strings are written byte-exact, never normalized
//  4. No whitespace between tokens
//
// Distinct blocks with valid UTF-8 strings always encode differently.
// Invalid UTF-8 is coerced to U+FFFD, so stores reject it before it gets here.
func MarshalCanonical(b Block) []byte {
	fields := map[string][]byte{
		FieldIndex:     strconv.AppendInt(nil, b.Index, 10),
		FieldTimestamp: marshalCanonicalString(b.Timestamp),
		FieldProof:     strconv.AppendInt(nil, b.Proof, 10),
		FieldPrevHash:  marshalCanonicalString(b.PrevHash),
		FieldOpKind:    strconv.AppendInt(nil, int64(b.OpKind), 10),
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalCanonicalString(k))
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// marshalCanonicalString encodes s as a JSON string.
// Only control characters, backslash and quote are escaped.
func marshalCanonicalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)

	// json.Encoder adds a trailing newline
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}
