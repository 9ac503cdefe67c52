// Package secretgen generates cryptographically-strong opaque password
// strings used as the second half of a V1 AuthId.
package secretgen

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// DefaultLength is the password length generated when none is specified.
const DefaultLength = 32

// charClasses are the four character classes a generated password draws
// from. Consecutive characters are never drawn from the same class.
var charClasses = []string{
	"abcdefghijklmnopqrstuvwxyz",
	"0123456789",
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	"!-_.",
}

// Generator produces passwords using a shared, mutex-guarded CSPRNG. The
// RNG itself (crypto/rand.Reader) is safe for concurrent use, but the
// class-alternation bookkeeping is easiest to reason about behind a single
// lock, matching the source design's "shared RNG behind a mutex" guarantee.
type Generator struct {
	mu sync.Mutex
}

// New creates a password Generator.
func New() *Generator {
	return &Generator{}
}

// Generate returns a DefaultLength password.
func (g *Generator) Generate() (string, error) {
	return g.GenerateLength(DefaultLength)
}

// GenerateLength returns a password of the given length. Each character is
// drawn from one of four classes (lowercase, digit, uppercase, symbol); a
// candidate is rejected and redrawn if its class matches the previous
// character's class, so no two consecutive characters share a class.
func (g *Generator) GenerateLength(length int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]byte, 0, length)
	lastClass := -1
	for len(out) < length {
		class, err := randIndex(len(charClasses))
		if err != nil {
			return "", err
		}
		if class == lastClass {
			continue
		}
		ch, err := randChar(charClasses[class])
		if err != nil {
			return "", err
		}
		out = append(out, ch)
		lastClass = class
	}
	return string(out), nil
}

func randIndex(n int) (int, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(idx.Int64()), nil
}

func randChar(class string) (byte, error) {
	idx, err := randIndex(len(class))
	if err != nil {
		return 0, err
	}
	return class[idx], nil
}
