// Package verify re-derives a chain's links and proofs to detect tampering.
package verify

import (
	"fmt"

	"github.com/roach88/blockaviate/internal/block"
	"github.com/roach88/blockaviate/internal/pow"
)

// ViolationKind categorizes an integrity failure.
type ViolationKind string

const (
	// BrokenLink means a block's prevHash does not match its predecessor's hash.
	BrokenLink ViolationKind = "BROKEN_LINK"

	// InvalidProof means a block's proof does not solve the puzzle relative to
	// its predecessor's proof.
	InvalidProof ViolationKind = "INVALID_PROOF"
)

// Violation describes the first pair of blocks that failed verification.
type Violation struct {
	Index int64         `json:"index"` // index of the offending (later) block
	Kind  ViolationKind `json:"kind"`
	Want  string        `json:"want"`
	Got   string        `json:"got"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at block %d: want %s, got %s", v.Kind, v.Index, v.Want, v.Got)
}

// Validate reports whether every adjacent pair of blocks is linked by hash
// and carries a valid proof. Empty and genesis-only chains are valid.
func Validate(blocks []block.Block) bool {
	_, bad := FirstViolation(blocks)
	return !bad
}

// FirstViolation walks the chain pairwise and returns the first failure.
// The link is checked before the proof for each pair.
func FirstViolation(blocks []block.Block) (Violation, bool) {
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]

		if want := block.Hash(prev); cur.PrevHash != want {
			return Violation{Index: cur.Index, Kind: BrokenLink, Want: want, Got: cur.PrevHash}, true
		}

		if !pow.Check(cur.Proof, prev.Proof) {
			return Violation{
				Index: cur.Index,
				Kind:  InvalidProof,
				Want:  fmt.Sprintf("digest with %d leading zeros", pow.Difficulty),
				Got:   pow.Digest(cur.Proof, prev.Proof),
			}, true
		}
	}
	return Violation{}, false
}

// Report summarizes a chain audit.
type Report struct {
	Length      int        `json:"length"`
	LatestIndex int64      `json:"latest_index"`
	Valid       bool       `json:"valid"`
	Violation   *Violation `json:"violation,omitempty"`
}

// Audit validates blocks and summarizes the result.
func Audit(blocks []block.Block) Report {
	r := Report{Length: len(blocks), Valid: true}
	if len(blocks) > 0 {
		r.LatestIndex = blocks[len(blocks)-1].Index
	}
	if v, bad := FirstViolation(blocks); bad {
		r.Valid = false
		r.Violation = &v
	}
	return r
}
