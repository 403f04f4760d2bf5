package project

import (
	"crypto/sha256"
)

// Digest is a sha256 sum, the same size as source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by salts in order. The scan cache uses
// it to key a file's cells by its text and the cache schema.
func Combine(content Digest, salts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, s := range salts {
		_, _ = h.Write(s)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
