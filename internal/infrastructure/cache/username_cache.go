package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
)

// UsernameCache remembers which peer a public username resolved to.
// Entries expire after ttl and the least recently used entry is evicted past maxSize.
type UsernameCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // most recently used at front
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

type usernameEntry struct {
	username string
	peer     domain.Peer
	storedAt time.Time
}

// NewUsernameCache creates a new UsernameCache instance
func NewUsernameCache(maxSize int, ttl time.Duration, logger zerolog.Logger) *UsernameCache {
	if maxSize <= 0 {
		maxSize = 1024 // Default
	}
	return &UsernameCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With().Str("component", "username_cache").Logger(),
	}
}

// Get returns the peer username resolved to, if it is still fresh
func (c *UsernameCache) Get(username string) (domain.Peer, bool) {
	key := normalize(username)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, found := c.entries[key]
	if !found {
		return domain.Peer{}, false
	}

	entry := elem.Value.(*usernameEntry)
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return domain.Peer{}, false
	}

	c.order.MoveToFront(elem)
	return entry.peer, true
}

// Set stores the peer for username, evicting the oldest entries when the limit is reached
func (c *UsernameCache) Set(username string, peer domain.Peer) {
	key := normalize(username)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.entries[key]; found {
		entry := elem.Value.(*usernameEntry)
		entry.peer = peer
		entry.storedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(&usernameEntry{username: key, peer: peer, storedAt: c.now()})

	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		delete(c.entries, oldest.Value.(*usernameEntry).username)
		c.order.Remove(oldest)
	}
}

// Delete forgets username, e.g. after the server rejected the cached peer
func (c *UsernameCache) Delete(username string) {
	key := normalize(username)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.entries[key]; found {
		c.order.Remove(elem)
		delete(c.entries, key)
		c.logger.Debug().Str("username", key).Msg("removed username from cache")
	}
}

// Len returns the number of cached usernames
func (c *UsernameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Telegram usernames are case-insensitive
func normalize(username string) string {
	return strings.ToLower(username)
}
