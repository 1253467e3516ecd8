package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
)

func channel(id int64) domain.Peer {
	return domain.Peer{Kind: domain.PeerChannel, ID: id}
}

func TestUsernameCache_CaseInsensitive(t *testing.T) {
	c := NewUsernameCache(10, time.Hour, zerolog.Nop())

	c.Set("GolangNews", channel(1))

	peer, ok := c.Get("golangnews")
	require.True(t, ok)
	assert.Equal(t, channel(1), peer)
}

func TestUsernameCache_Expires(t *testing.T) {
	c := NewUsernameCache(10, time.Minute, zerolog.Nop())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("news", channel(1))
	now = now.Add(2 * time.Minute)

	_, ok := c.Get("news")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestUsernameCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewUsernameCache(2, 0, zerolog.Nop())

	c.Set("a", channel(1))
	c.Set("b", channel(2))
	_, _ = c.Get("a")
	c.Set("c", channel(3))

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestUsernameCache_OverwriteAndDelete(t *testing.T) {
	c := NewUsernameCache(10, 0, zerolog.Nop())

	c.Set("news", channel(1))
	c.Set("news", channel(2))
	peer, _ := c.Get("news")
	assert.Equal(t, channel(2), peer)
	assert.Equal(t, 1, c.Len())

	c.Delete("NEWS")
	_, ok := c.Get("news")
	assert.False(t, ok)
}
