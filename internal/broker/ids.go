package broker

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// randomHex returns n hex characters (n/2 random bytes) from a
// cryptographically-secure source. n must be even.
func randomHex(n int) (string, error) {
	buf := make([]byte, n/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// newStateKey generates a 32-hex-character state key for StartLogin.
func newStateKey() (string, error) {
	return randomHex(32)
}

// newKeyID generates the 32-hex-character identifier for a V1 StoredEntry,
// a UUIDv4 with its dashes stripped.
func newKeyID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
