package cryptostore_test

import (
	"errors"
	"testing"

	"github.com/cloudcreds/storage-oauth-broker/internal/cryptostore"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetRoundTrip(t *testing.T) {
	store, err := cryptostore.New(t.TempDir())
	require.NoError(t, err)

	entry := &cryptostore.StoredEntry{
		ServiceID:    "gd",
		Expires:      1234,
		AccessToken:  "A",
		RefreshToken: "R",
		Json:         `{"access_token":"A"}`,
	}

	require.NoError(t, store.Create("key1", "correct-password", entry))

	got, err := store.Get("key1", "correct-password")
	require.NoError(t, err)
	require.Equal(t, entry, got)
}

func TestGetWithWrongPasswordFailsOpaquely(t *testing.T) {
	store, err := cryptostore.New(t.TempDir())
	require.NoError(t, err)

	entry := &cryptostore.StoredEntry{ServiceID: "gd", RefreshToken: "R"}
	require.NoError(t, store.Create("key1", "correct-password", entry))

	_, err = store.Get("key1", "wrong-password")
	require.ErrorIs(t, err, cryptostore.ErrDecryptingFailed)
}

func TestGetMissingKeyFailsOpaquely(t *testing.T) {
	store, err := cryptostore.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("never-created", "any-password")
	require.True(t, errors.Is(err, cryptostore.ErrDecryptingFailed))
}

func TestUpdateOverwritesPriorContent(t *testing.T) {
	store, err := cryptostore.New(t.TempDir())
	require.NoError(t, err)

	first := &cryptostore.StoredEntry{ServiceID: "gd", RefreshToken: "R1"}
	require.NoError(t, store.Create("key1", "pw", first))

	second := &cryptostore.StoredEntry{ServiceID: "gd", RefreshToken: "R2"}
	require.NoError(t, store.Update("key1", "pw", second))

	got, err := store.Get("key1", "pw")
	require.NoError(t, err)
	require.Equal(t, "R2", got.RefreshToken)
}

func TestDeleteRemovesEntry(t *testing.T) {
	store, err := cryptostore.New(t.TempDir())
	require.NoError(t, err)

	entry := &cryptostore.StoredEntry{ServiceID: "gd", RefreshToken: "R"}
	require.NoError(t, store.Create("key1", "pw", entry))
	require.NoError(t, store.Delete("key1"))

	_, err = store.Get("key1", "pw")
	require.ErrorIs(t, err, cryptostore.ErrDecryptingFailed)
}

func TestDeleteMissingKeyErrors(t *testing.T) {
	store, err := cryptostore.New(t.TempDir())
	require.NoError(t, err)

	err = store.Delete("never-created")
	require.Error(t, err)
}
