package telegram

import (
	"sync"

	"github.com/gotd/td/tg"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
)

// channelIDMarker is the offset of Bot-API style channel ids (-100xxxxxxxxxx)
const channelIDMarker = -1000000000000

// peerCache remembers access hashes of every entity the client has seen, so
// numeric ids can be used in later requests
type peerCache struct {
	mu       sync.RWMutex
	entities map[domain.Peer]domain.Entity
}

func newPeerCache() *peerCache {
	return &peerCache{entities: make(map[domain.Peer]domain.Entity)}
}

func (c *peerCache) add(entities ...domain.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entities {
		c.entities[e.Peer] = e
	}
}

func (c *peerCache) get(p domain.Peer) (domain.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entities[p]
	return e, ok
}

// lookupID finds an entity by a numeric id as users type it: bare positive
// ids match any kind, negative ids match chats and channels
func (c *peerCache) lookupID(id int64) (domain.Entity, bool) {
	for _, p := range candidatePeers(id) {
		if e, ok := c.get(p); ok {
			return e, true
		}
	}
	return domain.Entity{}, false
}

func (c *peerCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entities)
}

// candidatePeers lists the peers a numeric id may refer to, most likely first
func candidatePeers(id int64) []domain.Peer {
	switch {
	case id <= channelIDMarker:
		return []domain.Peer{{Kind: domain.PeerChannel, ID: channelIDMarker - id}}
	case id < 0:
		return []domain.Peer{
			{Kind: domain.PeerChat, ID: -id},
			{Kind: domain.PeerChannel, ID: -id},
		}
	default:
		return []domain.Peer{
			{Kind: domain.PeerChannel, ID: id},
			{Kind: domain.PeerChat, ID: id},
			{Kind: domain.PeerUser, ID: id},
		}
	}
}

// syntheticEntity builds an unresolved entity: negative ids are channels,
// everything else a user. The access hash is unknown.
func syntheticEntity(id int64) *domain.Entity {
	peer := domain.Peer{Kind: domain.PeerUser, ID: id}
	if id < 0 {
		bare := -id
		if id <= channelIDMarker {
			bare = channelIDMarker - id
		}
		peer = domain.Peer{Kind: domain.PeerChannel, ID: bare}
	}

	return &domain.Entity{Peer: peer, Synthetic: true}
}

// inputPeer converts an entity to the request form
func inputPeer(e *domain.Entity) tg.InputPeerClass {
	switch e.Kind {
	case domain.PeerChannel:
		return &tg.InputPeerChannel{ChannelID: e.ID, AccessHash: e.AccessHash}
	case domain.PeerChat:
		return &tg.InputPeerChat{ChatID: e.ID}
	default:
		return &tg.InputPeerUser{UserID: e.ID, AccessHash: e.AccessHash}
	}
}
