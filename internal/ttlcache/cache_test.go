package ttlcache_test

import (
	"testing"
	"time"

	"github.com/cloudcreds/storage-oauth-broker/internal/ttlcache"
	"github.com/stretchr/testify/require"
)

func TestGetAbsentKey(t *testing.T) {
	c := ttlcache.New[string]()
	_, ok := c.Get("missing")
	require.False(t, ok)
}

func TestSetAndGet(t *testing.T) {
	c := ttlcache.New[string]()
	c.Set("value", "key", time.Minute)

	v, ok := c.Get("key")
	require.True(t, ok)
	require.Equal(t, "value", v)
}

func TestExpiryIsAuthoritative(t *testing.T) {
	c := ttlcache.New[int]()
	now := time.Now()
	c.SetNow(func() time.Time { return now })

	c.Set(42, "key", time.Second)

	now = now.Add(2 * time.Second)
	_, ok := c.Get("key")
	require.False(t, ok, "entry must be absent strictly after its TTL elapses")
}

func TestSetOverwrites(t *testing.T) {
	c := ttlcache.New[string]()
	c.Set("first", "key", time.Minute)
	c.Set("second", "key", time.Minute)

	v, ok := c.Get("key")
	require.True(t, ok)
	require.Equal(t, "second", v)
}

func TestDeleteIsIdempotent(t *testing.T) {
	c := ttlcache.New[string]()
	c.Delete("never-set")

	c.Set("value", "key", time.Minute)
	c.Delete("key")
	_, ok := c.Get("key")
	require.False(t, ok)
}

func TestDefaultTTLAppliesForNonPositiveTTL(t *testing.T) {
	c := ttlcache.New[string]()
	now := time.Now()
	c.SetNow(func() time.Time { return now })

	c.Set("value", "key", 0)

	now = now.Add(ttlcache.DefaultTTL - time.Second)
	_, ok := c.Get("key")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("key")
	require.False(t, ok)
}

func TestJanitorSweepsExpiredEntries(t *testing.T) {
	c := ttlcache.New[string]()
	c.Set("value", "key", time.Millisecond)

	stop := c.StartJanitor(2 * time.Millisecond)
	defer stop()

	require.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, time.Millisecond)
}
