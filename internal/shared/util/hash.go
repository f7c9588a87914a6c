package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns a stable pseudonymous identifier for a sensitive value such
// as a visitor IP.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
