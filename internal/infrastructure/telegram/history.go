package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
)

const (
	historyPageSize = 100
	dialogsPageSize = 100

	usernameCacheSize = 1024
	usernameCacheTTL  = time.Hour
)

// ResolveEntity resolves a username (with or without '@', or a t.me link) or a
// numeric id the client has already seen
func (c *Client) ResolveEntity(ctx context.Context, ref string) (*domain.Entity, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrPeerNotFound
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return c.resolveID(ctx, id)
	}

	username := strings.TrimPrefix(ref, "https://")
	username = strings.TrimPrefix(username, "t.me/")
	username = strings.TrimPrefix(username, "@")
	if strings.ContainsAny(username, "/@ ") {
		return nil, domain.ErrPeerNotFound
	}

	if peer, ok := c.usernames.Get(username); ok {
		if entity, ok := c.peers.get(peer); ok {
			return &entity, nil
		}
	}

	var resolved *tg.ContactsResolvedPeer
	err := c.invoke(ctx, func(ctx context.Context, api *tg.Client) error {
		var err error
		resolved, err = api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
		return err
	})
	if err != nil {
		if tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID") {
			return nil, domain.ErrPeerNotFound
		}
		return nil, fmt.Errorf("failed to resolve %q: %w", ref, err)
	}

	c.peers.add(newEntityIndex(resolved.Users, resolved.Chats).entities()...)

	peer := decodePeer(resolved.Peer)
	if peer == nil {
		return nil, domain.ErrPeerNotFound
	}
	entity, ok := c.peers.get(*peer)
	if !ok {
		return nil, domain.ErrPeerNotFound
	}
	c.usernames.Set(username, *peer)

	return &entity, nil
}

// resolveID looks id up among known entities, loading the dialog list once
// when the cache has nothing for it
func (c *Client) resolveID(ctx context.Context, id int64) (*domain.Entity, error) {
	if entity, ok := c.peers.lookupID(id); ok {
		return &entity, nil
	}

	if _, err := c.Dialogs(ctx); err != nil {
		return nil, err
	}

	if entity, ok := c.peers.lookupID(id); ok {
		return &entity, nil
	}
	return nil, domain.ErrPeerNotFound
}

// PeerFromID returns the cached entity for id, or a synthetic one without an access hash
func (c *Client) PeerFromID(id int64) *domain.Entity {
	if entity, ok := c.peers.lookupID(id); ok {
		return &entity
	}
	return syntheticEntity(id)
}

// StreamMessages pages through the history of entity, newest first
func (c *Client) StreamMessages(_ context.Context, entity *domain.Entity, opts domain.StreamOptions) domain.MessageIterator {
	return &historyIterator{
		client: c,
		peer:   inputPeer(entity),
		limit:  opts.Limit,
		minID:  opts.MinID,
	}
}

// ForwardMessages forwards ids from one conversation to another in one request
func (c *Client) ForwardMessages(ctx context.Context, from, to *domain.Entity, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	randomIDs := make([]int64, len(ids))
	for i := range randomIDs {
		randomIDs[i] = rand.Int64()
	}

	return c.invoke(ctx, func(ctx context.Context, api *tg.Client) error {
		_, err := api.MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
			FromPeer: inputPeer(from),
			ID:       ids,
			RandomID: randomIDs,
			ToPeer:   inputPeer(to),
		})
		return err
	})
}

// Dialogs lists every dialog of the account and caches their entities
func (c *Client) Dialogs(ctx context.Context) ([]domain.Dialog, error) {
	var (
		out        []domain.Dialog
		offsetDate int
		offsetID   int
		offsetPeer tg.InputPeerClass = &tg.InputPeerEmpty{}
		seen                         = make(map[domain.Peer]struct{})
	)

	for {
		var result tg.MessagesDialogsClass
		err := c.invoke(ctx, func(ctx context.Context, api *tg.Client) error {
			var err error
			result, err = api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
				OffsetDate: offsetDate,
				OffsetID:   offsetID,
				OffsetPeer: offsetPeer,
				Limit:      dialogsPageSize,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get dialogs: %w", err)
		}

		page, ok := result.AsModified()
		if !ok {
			return out, nil
		}

		idx := newEntityIndex(page.GetUsers(), page.GetChats())
		c.peers.add(idx.entities()...)

		tops := make(map[domain.Peer]*tg.Message)
		for _, m := range page.GetMessages() {
			if msg, ok := m.(*tg.Message); ok {
				if peer := decodePeer(msg.PeerID); peer != nil {
					tops[*peer] = msg
				}
			}
		}

		added := 0
		var last *domain.Dialog
		for _, d := range page.GetDialogs() {
			dialog, ok := decodeDialog(d, idx, tops)
			if !ok {
				continue
			}
			if _, dup := seen[dialog.Peer]; dup {
				continue
			}
			seen[dialog.Peer] = struct{}{}
			out = append(out, dialog)
			last = &out[len(out)-1]
			added++
		}

		if _, full := result.(*tg.MessagesDialogs); full {
			return out, nil
		}
		if added == 0 || len(page.GetDialogs()) < dialogsPageSize || last == nil {
			return out, nil
		}

		offsetPeer = inputPeer(&last.Entity)
		if last.LastMessageID != nil {
			offsetID = *last.LastMessageID
		}
		if top, ok := tops[last.Peer]; ok {
			offsetDate = top.Date
		}
	}
}

// historyIterator implements domain.MessageIterator over MessagesGetHistory pages
type historyIterator struct {
	client *Client
	peer   tg.InputPeerClass
	limit  int
	minID  int

	buf      []domain.Message
	offsetID int
	yielded  int
	done     bool
	current  domain.Message
	err      error
}

func (it *historyIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.limit > 0 && it.yielded >= it.limit {
		return false
	}

	for len(it.buf) == 0 {
		if it.done {
			return false
		}
		if err := it.fetch(ctx); err != nil {
			it.err = err
			return false
		}
	}

	it.current = it.buf[0]
	it.buf = it.buf[1:]
	it.yielded++
	return true
}

func (it *historyIterator) fetch(ctx context.Context) error {
	pageSize := historyPageSize
	if it.limit > 0 && it.limit-it.yielded < pageSize {
		pageSize = it.limit - it.yielded
	}

	var result tg.MessagesMessagesClass
	err := it.client.invoke(ctx, func(ctx context.Context, api *tg.Client) error {
		var err error
		result, err = api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     it.peer,
			OffsetID: it.offsetID,
			Limit:    pageSize,
			MinID:    it.minID,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	page, ok := result.AsModified()
	if !ok {
		it.done = true
		return nil
	}

	idx := newEntityIndex(page.GetUsers(), page.GetChats())
	it.client.peers.add(idx.entities()...)

	raw := page.GetMessages()
	lowest := 0
	for _, m := range raw {
		id := m.GetID()
		if lowest == 0 || id < lowest {
			lowest = id
		}
		if msg, ok := decodeMessage(m, idx); ok {
			it.buf = append(it.buf, msg)
		}
	}

	if _, full := result.(*tg.MessagesMessages); full || len(raw) < pageSize || lowest <= it.minID+1 {
		it.done = true
	}
	it.offsetID = lowest
	return nil
}

func (it *historyIterator) Value() domain.Message {
	return it.current
}

func (it *historyIterator) Err() error {
	return it.err
}
