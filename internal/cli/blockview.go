package cli

import (
	"fmt"
	"strconv"

	"github.com/roach88/blockaviate/internal/block"
)

// BlockView is the CLI representation of a block.
type BlockView struct {
	Index     int64  `json:"index"`
	Timestamp string `json:"timestamp"`
	Proof     int64  `json:"proof"`
	PrevHash  string `json:"prevHash"`
	OpKind    int    `json:"opKind"`
	Op        string `json:"op"`
	Hash      string `json:"hash"`
}

func newBlockView(b block.Block) BlockView {
	return BlockView{
		Index:     b.Index,
		Timestamp: b.Timestamp,
		Proof:     b.Proof,
		PrevHash:  b.PrevHash,
		OpKind:    int(b.OpKind),
		Op:        b.OpKind.String(),
		Hash:      block.Hash(b),
	}
}

func (v BlockView) String() string {
	return fmt.Sprintf("#%d %s op=%s proof=%d prev=%s hash=%s",
		v.Index, v.Timestamp, v.Op, v.Proof, shortHash(v.PrevHash), shortHash(v.Hash))
}

// row renders the view as a table row.
func (v BlockView) row() []string {
	return []string{
		strconv.FormatInt(v.Index, 10),
		v.Timestamp,
		v.Op,
		strconv.FormatInt(v.Proof, 10),
		shortHash(v.PrevHash),
		shortHash(v.Hash),
	}
}

// shortHash truncates a hex digest for display.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
