package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/scrypt"
)

const (
	secretsScryptN      = 32768
	secretsScryptR      = 8
	secretsScryptP      = 1
	secretsScryptKeyLen = 32
	secretsSaltLen      = 16
)

// LoadSecrets resolves the SECRETS env var to a set of named values. Accepts
// either a file path or a base64:<...> inline payload. When passphrase is
// non-empty the resolved bytes are treated as
// [16-byte salt][12-byte nonce][ciphertext+tag] and decrypted with a key
// derived from passphrase via scrypt before parsing; otherwise the bytes
// are parsed directly.
//
// The decrypted (or raw) payload is a dotenv-style NAME=value document, one
// secret per line, matching the %<SECRET_NAME>% placeholder convention used
// by the service catalog.
func LoadSecrets(spec, passphrase string) (map[string]string, error) {
	if spec == "" {
		return map[string]string{}, nil
	}

	raw, err := resolveSecretsBytes(spec)
	if err != nil {
		return nil, err
	}

	if passphrase != "" {
		raw, err = decryptSecrets(raw, passphrase)
		if err != nil {
			return nil, fmt.Errorf("decrypting secrets: %w", err)
		}
	}

	secrets, err := godotenv.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing secrets document: %w", err)
	}
	return secrets, nil
}

func resolveSecretsBytes(spec string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(spec, "base64:"); ok {
		decoded, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("decoding inline base64 secrets: %w", err)
		}
		return decoded, nil
	}

	raw, err := os.ReadFile(spec)
	if err != nil {
		return nil, fmt.Errorf("reading secrets file %s: %w", spec, err)
	}
	return raw, nil
}

func decryptSecrets(data []byte, passphrase string) ([]byte, error) {
	if len(data) < secretsSaltLen {
		return nil, fmt.Errorf("secrets payload too short")
	}
	salt, rest := data[:secretsSaltLen], data[secretsSaltLen:]

	key, err := scrypt.Key([]byte(passphrase), salt, secretsScryptN, secretsScryptR, secretsScryptP, secretsScryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving secrets key: %w", err)
	}

	aead, err := newSecretsAEAD(key)
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(rest) < nonceSize {
		return nil, fmt.Errorf("secrets payload too short")
	}
	nonce, ciphertext := rest[:nonceSize], rest[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("secrets passphrase incorrect or payload corrupt")
	}
	return plaintext, nil
}

func newSecretsAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// EncryptSecrets is the inverse of the decryption path in LoadSecrets: it
// produces the [salt][nonce][ciphertext] payload an operator would write to
// the SECRETS file. Exposed for tooling and tests; the broker itself never
// encrypts secrets at runtime.
func EncryptSecrets(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, secretsSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	key, err := scrypt.Key([]byte(passphrase), salt, secretsScryptN, secretsScryptR, secretsScryptP, secretsScryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving secrets key: %w", err)
	}

	aead, err := newSecretsAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 0, secretsSaltLen+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	ciphertext := aead.Seal(nonce, nonce, plaintext, nil)
	out = append(out, ciphertext...)
	return out, nil
}
