package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/matzehuels/traitforge/pkg/dna"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint hashes the canonical JSON encoding of s. Two sets have the
// same fingerprint exactly when they hold the same vectors in the same
// order.
func Fingerprint(s dna.Set) string {
	var buf bytes.Buffer
	_ = dna.WriteJSON(&buf, s)
	return Hash(buf.Bytes())
}
