package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a 24-character lowercase hex ID.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsValidID reports whether s has the shape produced by NewID.
// Record lookups reject malformed IDs before touching the store.
func IsValidID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
