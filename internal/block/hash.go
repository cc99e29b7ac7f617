package block

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 digest of the block's canonical
// encoding. Equal blocks always hash identically.
func Hash(b Block) string {
	return HashBytes(MarshalCanonical(b))
}

// HashBytes returns the lowercase hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
