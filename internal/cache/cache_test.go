package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newWithClock(true, clock)

	etag := c.Set("earthquakes", []byte(`{"result":[]}`), TTLEarthquakes)
	assert.NotEmpty(t, etag)

	data, gotTag, ok := c.Get("earthquakes")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"result":[]}`), data)
	assert.Equal(t, etag, gotTag)
}

func TestCacheExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newWithClock(true, clock)

	c.Set("k", []byte("v"), time.Minute)
	clock.Advance(61 * time.Second)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	c := New(false)

	etag := c.Set("k", []byte("v"), time.Minute)
	assert.NotEmpty(t, etag) // etag still computed for the response headers

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestEvictRemovesExpiredEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newWithClock(true, clock)

	c.Set("old", []byte("v"), time.Minute)
	clock.Advance(2 * time.Minute)
	c.Set("new", []byte("v"), time.Minute)

	c.evict()

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_keys"])
	assert.Equal(t, 1, stats["active_keys"])
}

func TestComputeETagIsStable(t *testing.T) {
	a := ComputeETag([]byte("payload"))
	b := ComputeETag([]byte("payload"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, ComputeETag([]byte("other")))
	assert.Contains(t, a, `W/"`)
}

func TestCheckETagMatch(t *testing.T) {
	assert.False(t, CheckETagMatch("", `W/"abc"`))
	assert.True(t, CheckETagMatch("*", `W/"abc"`))
	assert.True(t, CheckETagMatch(`W/"abc"`, `W/"abc"`))
	assert.False(t, CheckETagMatch(`W/"def"`, `W/"abc"`))
}
