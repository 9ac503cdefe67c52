package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudcreds/storage-oauth-broker/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadSecretsEmptySpec(t *testing.T) {
	secrets, err := config.LoadSecrets("", "")
	require.NoError(t, err)
	require.Empty(t, secrets)
}

func TestLoadSecretsFromFilePlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("GD_CLIENT_ID=abc123\nGD_CLIENT_SECRET=xyz789\n"), 0o600))

	secrets, err := config.LoadSecrets(path, "")
	require.NoError(t, err)
	require.Equal(t, "abc123", secrets["GD_CLIENT_ID"])
	require.Equal(t, "xyz789", secrets["GD_CLIENT_SECRET"])
}

func TestLoadSecretsInlineBase64(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("FOO=bar\n"))
	secrets, err := config.LoadSecrets("base64:"+payload, "")
	require.NoError(t, err)
	require.Equal(t, "bar", secrets["FOO"])
}

func TestLoadSecretsEncryptedRoundTrip(t *testing.T) {
	plaintext := []byte("GD_CLIENT_ID=abc123\nGD_CLIENT_SECRET=xyz789\n")
	encrypted, err := config.EncryptSecrets(plaintext, "correct-horse")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "secrets.enc")
	require.NoError(t, os.WriteFile(path, encrypted, 0o600))

	secrets, err := config.LoadSecrets(path, "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "abc123", secrets["GD_CLIENT_ID"])
}

func TestLoadSecretsWrongPassphraseFails(t *testing.T) {
	plaintext := []byte("FOO=bar\n")
	encrypted, err := config.EncryptSecrets(plaintext, "correct-horse")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "secrets.enc")
	require.NoError(t, os.WriteFile(path, encrypted, 0o600))

	_, err = config.LoadSecrets(path, "wrong-password")
	require.Error(t, err)
}

func TestLoadSecretsMissingFile(t *testing.T) {
	_, err := config.LoadSecrets(filepath.Join(t.TempDir(), "absent"), "")
	require.Error(t, err)
}
