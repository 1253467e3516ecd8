package business

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/config"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/retry"
	"github.com/rs/zerolog"
)

var validToken = strings.Repeat("t", 64)

// fakeTransport implements domain.Transport for connection tests
type fakeTransport struct {
	connectErr   error
	connectDelay time.Duration
	sendCodeErr  error
	signInErr    error
	exportToken  string
	selfErr      error

	connected    atomic.Bool
	disconnected atomic.Int32
	opts         domain.TransportOptions

	mu      sync.Mutex
	signIns []string
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	if f.connectDelay > 0 {
		select {
		case <-time.After(f.connectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected.Store(true)
	return nil
}

func (f *fakeTransport) Disconnect(ctx context.Context) error {
	f.connected.Store(false)
	f.disconnected.Add(1)
	return nil
}

func (f *fakeTransport) IsConnected() bool { return f.connected.Load() }

func (f *fakeTransport) SendCode(ctx context.Context, phone string) (string, error) {
	if f.sendCodeErr != nil {
		return "", f.sendCodeErr
	}
	return "hash-" + phone, nil
}

func (f *fakeTransport) SignIn(ctx context.Context, phone, code, codeHash, password string) error {
	f.mu.Lock()
	f.signIns = append(f.signIns, phone+"|"+code+"|"+codeHash+"|"+password)
	f.mu.Unlock()
	return f.signInErr
}

func (f *fakeTransport) ExportSession(ctx context.Context) (string, error) {
	return f.exportToken, nil
}

func (f *fakeTransport) Self(ctx context.Context) (*domain.Account, error) {
	if f.selfErr != nil {
		return nil, f.selfErr
	}
	return &domain.Account{ID: 42, Username: "crawler", Phone: "+10000000000"}, nil
}

func (f *fakeTransport) ResolveEntity(ctx context.Context, ref string) (*domain.Entity, error) {
	return nil, domain.ErrPeerNotFound
}

func (f *fakeTransport) PeerFromID(id int64) *domain.Entity { return nil }

func (f *fakeTransport) StreamMessages(ctx context.Context, entity *domain.Entity, opts domain.StreamOptions) domain.MessageIterator {
	return nil
}

func (f *fakeTransport) ForwardMessages(ctx context.Context, from, to *domain.Entity, ids []int) error {
	return nil
}

func (f *fakeTransport) Dialogs(ctx context.Context) ([]domain.Dialog, error) { return nil, nil }

// fakeFactory hands out transports built by next and records them
type fakeFactory struct {
	mu         sync.Mutex
	next       func(n int) *fakeTransport
	transports []*fakeTransport
	err        error
}

func (f *fakeFactory) New(opts domain.TransportOptions) (domain.Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	var t *fakeTransport
	if f.next != nil {
		t = f.next(len(f.transports))
	}
	if t == nil {
		t = &fakeTransport{}
	}
	t.opts = opts
	f.transports = append(f.transports, t)
	return t, nil
}

func (f *fakeFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transports)
}

func (f *fakeFactory) get(i int) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transports[i]
}

// memoryStore implements deps.CredentialStore
type memoryStore struct {
	mu      sync.Mutex
	token   string
	saveErr error
}

func (s *memoryStore) SessionToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memoryStore) SaveSessionToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

// instantTimer fires immediately and counts the waits
type instantTimer struct {
	c     chan time.Time
	waits []time.Duration
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

var errDial = errors.New("dial tcp: connection refused")

func newTestManager(factory *fakeFactory, store *memoryStore, token string) (*ConnectionManager, *instantTimer) {
	cfg := &config.TelegramConfig{
		APIID:             12345,
		APIHash:           "hash",
		ConnectAttempts:   5,
		ConnectRetryDelay: time.Second,
		AutoConnect:       true,
	}

	m := NewConnectionManager(cfg, factory, store, zerolog.Nop(), nil)
	timer := newInstantTimer()
	m.policy = retry.Constant(cfg.ConnectAttempts, cfg.ConnectRetryDelay).WithTimer(timer)
	m.sessionToken = token
	return m, timer
}
