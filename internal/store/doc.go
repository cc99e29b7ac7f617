// Package store provides the ledger's append-only block storage.
//
// A Chain holds the full block sequence in memory and mirrors every append to
// a Backend before the block becomes visible:
//   - FileLog: newline-delimited canonical JSON, one block per line (default)
//   - SQLiteLog: the same records in a SQLite table
//   - BoltLog: canonical records in a bbolt bucket keyed by index
//
// # Record Format
//
// Each record carries exactly index, timestamp, proof, prevHash and opKind.
// Records are validated against the embedded CUE definition in record.cue and
// then decoded strictly; anything that fails is ErrCodeCorruptRecord and
// aborts the load. A ledger that cannot be fully parsed is not trusted.
//
// # Durability
//
//   - FileLog opens, writes, syncs and closes the file on every append
//   - SQLiteLog runs in WAL mode with synchronous=FULL
//   - BoltLog commits (and fsyncs) one transaction per append
//   - A missing log is an empty chain, which triggers genesis creation
//
// Block hashes are computed via internal/block, never re-derived from the
// stored bytes.
package store
