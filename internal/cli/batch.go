package cli

import (
	"github.com/google/uuid"
)

// BatchIDGenerator produces the id that tags one ingest run.
type BatchIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 batch ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids from
// successive ingest runs sort by start time in logs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

func batchIDs(opts *RootOptions) BatchIDGenerator {
	if opts.BatchIDs != nil {
		return opts.BatchIDs
	}
	return UUIDv7Generator{}
}
