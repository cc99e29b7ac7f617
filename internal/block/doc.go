// Package block defines the ledger's block record and its canonical hashing.
//
// This package imports nothing internal. Every other ledger package builds on
// it, so the on-disk record shape and the digest that links blocks together
// are defined in exactly one place.
//
// Key constraints:
//   - Blocks are plain values, compared with ==
//   - The canonical encoding doubles as the persisted line format
//   - Hash is SHA-256 over the canonical encoding, lowercase hex
//   - Strings are encoded byte-exact; stores reject non-NFC text
//   - Timestamps are informational only, never used for ordering
package block
