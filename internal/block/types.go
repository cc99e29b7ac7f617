package block

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenesisPrevHash is the link value stored in the first block of every chain.
const GenesisPrevHash = "0"

// GenesisProof is the proof stored in the genesis block. Every later proof is
// solved relative to its predecessor, starting from this value.
const GenesisProof int64 = 1

// OpKind identifies the external operation a block attests to.
// The integer codes are part of the persisted format and must not change.
type OpKind int

const (
	NoOp   OpKind = -1 // genesis sentinel
	Create OpKind = 0
	Read   OpKind = 1
	Update OpKind = 2
	Delete OpKind = 3
)

var opKindNames = map[OpKind]string{
	NoOp:   "noop",
	Create: "create",
	Read:   "read",
	Update: "update",
	Delete: "delete",
}

// String returns the lowercase name of the op kind.
func (k OpKind) String() string {
	if name, ok := opKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Valid reports whether k is one of the five defined codes.
func (k OpKind) Valid() bool {
	_, ok := opKindNames[k]
	return ok
}

// ParseOpKind accepts an op kind name (case-insensitive) or its integer code.
func ParseOpKind(s string) (OpKind, error) {
	s = strings.TrimSpace(s)
	for k, name := range opKindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && OpKind(n).Valid() {
		return OpKind(n), nil
	}
	return 0, fmt.Errorf("unknown op kind %q: must be one of noop, create, read, update, delete or -1..3", s)
}

// Block is one entry in the ledger.
//
// JSON tags match the persisted log format. Encoding for hashing and
// persistence goes through MarshalCanonical, not encoding/json.
type Block struct {
	Index     int64  `json:"index"`
	Timestamp string `json:"timestamp"`
	Proof     int64  `json:"proof"`
	PrevHash  string `json:"prevHash"`
	OpKind    OpKind `json:"opKind"`
}

// IsGenesis reports whether b is the chain's sentinel first block.
func (b Block) IsGenesis() bool {
	return b.PrevHash == GenesisPrevHash && b.OpKind == NoOp
}

// Clock supplies block timestamps.
type Clock interface {
	Now() string
}

// TimestampLayout is the layout used by SystemClock.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// SystemClock stamps blocks with the host's local wall time.
type SystemClock struct{}

// Now returns the current local time formatted with TimestampLayout.
func (SystemClock) Now() string {
	return time.Now().Format(TimestampLayout)
}
