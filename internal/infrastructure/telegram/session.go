package telegram

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gotd/td/session"
)

// tokenPrefix marks session tokens exported by this service. Tokens without
// it are read as Telethon string sessions.
const tokenPrefix = "gt1:"

// ErrEmptySession is returned when a session is exported before any data was stored
var ErrEmptySession = errors.New("session has no data yet")

// TokenStorage implements session.Storage on top of an exportable string token
type TokenStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewTokenStorage decodes token into a session storage. An empty token
// starts an empty session.
func NewTokenStorage(ctx context.Context, token string) (*TokenStorage, error) {
	s := &TokenStorage{}

	token = strings.TrimSpace(token)
	if token == "" {
		return s, nil
	}

	if strings.HasPrefix(token, tokenPrefix) {
		data, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, tokenPrefix))
		if err != nil {
			return nil, fmt.Errorf("failed to decode session token: %w", err)
		}
		s.data = data
		return s, nil
	}

	data, err := session.TelethonSession(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode telethon session: %w", err)
	}

	loader := session.Loader{Storage: s}
	if err := loader.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to import telethon session: %w", err)
	}

	return s, nil
}

// LoadSession implements session.Storage
func (s *TokenStorage) LoadSession(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}

	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// StoreSession implements session.Storage
func (s *TokenStorage) StoreSession(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}

// Token exports the current session as a string token
func (s *TokenStorage) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data) == 0 {
		return "", ErrEmptySession
	}

	return tokenPrefix + base64.RawURLEncoding.EncodeToString(s.data), nil
}

// Ensure TokenStorage implements session.Storage interface
var _ session.Storage = (*TokenStorage)(nil)
