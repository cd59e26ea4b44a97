package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Hash returns the hex SHA-256 of data. File cache paths and file ledger
// versions are both derived from it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// shardedPath places a hex digest below dir as "ab/cdef...ext", so no single
// directory holds more than 1/256 of the entries.
func shardedPath(dir, digest, ext string) string {
	return filepath.Join(dir, digest[:2], digest[2:]+ext)
}
