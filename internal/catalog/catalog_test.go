package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"github.com/stretchr/testify/require"
)

const doc = `
defaults:
  redirect_uri: "%OAUTH_CALLBACK_URI%"
services:
  - id: gd
    name: Google Drive
    client_id: "%GD_CLIENT_ID%"
    client_secret: "%GD_CLIENT_SECRET%"
    auth_url: https://oauth2.googleapis.com/token
    login_url: https://accounts.google.com/o/oauth2/v2/auth
    scope: drive.file
  - id: box
    name: Box
    redirect_uri: https://override.example/custom
    hidden: true
    prefer_v2: true
    additional_elements: ["state", "foo"]
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestLoadMergesDefaultsAndExpandsPlaceholders(t *testing.T) {
	path := writeCatalog(t)
	secrets := map[string]string{
		"GD_CLIENT_ID":     "id-123",
		"GD_CLIENT_SECRET": "secret-456",
	}

	cat, err := catalog.Load(path, "example.com", secrets)
	require.NoError(t, err)

	gd, ok := cat.Get("gd")
	require.True(t, ok)
	require.Equal(t, "id-123", gd.ClientID)
	require.Equal(t, "secret-456", gd.ClientSecret)
	require.Equal(t, "https://example.com/logged-in", gd.RedirectURI)
	require.False(t, gd.Hidden)
}

func TestLoadRecordOverridesDefault(t *testing.T) {
	path := writeCatalog(t)
	cat, err := catalog.Load(path, "example.com", nil)
	require.NoError(t, err)

	box, ok := cat.Get("box")
	require.True(t, ok)
	require.Equal(t, "https://override.example/custom", box.RedirectURI)
	require.True(t, box.Hidden)
	require.True(t, box.PreferV2)
	require.Equal(t, []string{"state", "foo"}, box.AdditionalElements)
}

func TestLoadUnknownService(t *testing.T) {
	path := writeCatalog(t)
	cat, err := catalog.Load(path, "example.com", nil)
	require.NoError(t, err)

	_, ok := cat.Get("nope")
	require.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "absent.yaml"), "example.com", nil)
	require.Error(t, err)
}

func TestAllReturnsEveryService(t *testing.T) {
	path := writeCatalog(t)
	cat, err := catalog.Load(path, "example.com", nil)
	require.NoError(t, err)
	require.Len(t, cat.All(), 2)
}
