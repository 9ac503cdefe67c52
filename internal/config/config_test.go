package config_test

import (
	"testing"

	"github.com/cloudcreds/storage-oauth-broker/internal/config"
	"github.com/stretchr/testify/require"
)

func TestServiceFilterEmptyMeansAll(t *testing.T) {
	c := &config.Config{}
	require.Nil(t, c.ServiceFilter())
}

func TestServiceFilterParsesList(t *testing.T) {
	c := &config.Config{Services: "gd, box ,onedrive"}
	filter := c.ServiceFilter()
	require.Len(t, filter, 3)
	_, ok := filter["box"]
	require.True(t, ok)
}

func TestDisplayNameFallsBackToAppName(t *testing.T) {
	c := &config.Config{AppName: "cloudcreds"}
	require.Equal(t, "cloudcreds", c.DisplayNameOrDefault())

	c.DisplayName = "Cloud Creds"
	require.Equal(t, "Cloud Creds", c.DisplayNameOrDefault())
}

func TestStorageDirUnset(t *testing.T) {
	c := &config.Config{}
	_, ok, err := c.StorageDir()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorageDirBarePath(t *testing.T) {
	c := &config.Config{Storage: "/var/lib/broker/store"}
	dir, ok, err := c.StorageDir()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/var/lib/broker/store", dir)
}

func TestStorageDirFileURL(t *testing.T) {
	c := &config.Config{Storage: "file:///var/lib/broker/store?pathmapped=true"}
	dir, ok, err := c.StorageDir()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/var/lib/broker/store", dir)
}
