// Package cryptostore implements the encrypted-at-rest file store for V1
// StoredEntry credentials: one AES-256-GCM encrypted file per keyId.
package cryptostore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32

	filePerm = 0o600
	dirPerm  = 0o700
)

// StoredEntry is the persisted, encrypted payload referenced by a V1 AuthId.
type StoredEntry struct {
	ServiceID    string `json:"service_id"`
	Expires      int64  `json:"expires"` // unix seconds
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Json         string `json:"json"` // raw provider response, verbatim
}

// ErrDecryptingFailed is returned for any failure to recover a StoredEntry —
// wrong password, corrupt file, or a missing file. The failure mode is
// deliberately collapsed into one sentinel so a caller cannot distinguish
// "wrong password" from "no such entry".
var ErrDecryptingFailed = fmt.Errorf("decrypting failed")

// Store is a single directory on local disk holding one encrypted file per
// keyId. Single-writer/single-reader per keyId is assumed adequate: each
// AuthId is held by exactly one client, and the store is not transactional
// across multiple keys.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(keyID string) string {
	return filepath.Join(s.dir, keyID)
}

// deriveKey turns a per-entry password into a 32-byte AES key via scrypt,
// salted with the keyId so two entries never derive the same key even if
// their passwords collided (cryptographically implausible, but free).
func deriveKey(password, keyID string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(keyID), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Create writes a new StoredEntry under keyId, encrypted with password.
// Any prior content at keyId is truncated.
func (s *Store) Create(keyID, password string, entry *StoredEntry) error {
	return s.write(keyID, password, entry)
}

// Update rewrites the StoredEntry under keyId with a (possibly) new
// password — used by Refresh, which preserves the original password.
func (s *Store) Update(keyID, password string, entry *StoredEntry) error {
	return s.write(keyID, password, entry)
}

func (s *Store) write(keyID, password string, entry *StoredEntry) error {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling stored entry: %w", err)
	}

	key, err := deriveKey(password, keyID)
	if err != nil {
		return err
	}
	aead, err := newAEAD(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	ciphertext := aead.Seal(nonce, nonce, plaintext, nil)

	tmp := s.path(keyID) + ".tmp"
	if err := os.WriteFile(tmp, ciphertext, filePerm); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	if err := os.Rename(tmp, s.path(keyID)); err != nil {
		return fmt.Errorf("finalizing entry: %w", err)
	}
	return nil
}

// Get reads and decrypts the StoredEntry under keyId using password. Any
// failure — missing file, corrupt file, wrong password — is collapsed into
// ErrDecryptingFailed so the caller cannot distinguish "no such key" from
// "wrong password".
func (s *Store) Get(keyID, password string) (*StoredEntry, error) {
	raw, err := os.ReadFile(s.path(keyID))
	if err != nil {
		return nil, ErrDecryptingFailed
	}

	key, err := deriveKey(password, keyID)
	if err != nil {
		return nil, ErrDecryptingFailed
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, ErrDecryptingFailed
	}

	nonceSize := aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, ErrDecryptingFailed
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptingFailed
	}

	var entry StoredEntry
	if err := json.Unmarshal(plaintext, &entry); err != nil {
		return nil, ErrDecryptingFailed
	}
	return &entry, nil
}

// Delete removes the file backing keyId. Deleting an absent keyId returns
// an error (the caller is expected to have validated the entry with Get
// first, per the revoke flow).
func (s *Store) Delete(keyID string) error {
	if err := os.Remove(s.path(keyID)); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}
