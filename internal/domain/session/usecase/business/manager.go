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
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/entities"
	sessionerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/retry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const connectFlight = "connect"

// dialAllowance bounds a single connect attempt when sizing the budget of a
// shared connect.
const dialAllowance = 30 * time.Second

// ConnectionManager owns the single live Telegram transport of the process.
//
// Connects and reconnects go through a singleflight group, so concurrent
// callers share one attempt. The attempt runs on the manager's own context,
// so a caller that gives up does not cancel it for the others. The login flow
// runs on its own short-lived transport and never touches the live one.
type ConnectionManager struct {
	apiID       int
	apiHash     string
	seedToken   string
	proxy       *domain.ProxyConfig
	autoConnect bool

	factory domain.TransportFactory
	store   deps.CredentialStore
	policy  *retry.Policy
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu           sync.Mutex
	transport    domain.Transport
	state        entities.State
	generation   uint64
	sessionToken string
	lastActivity time.Time
	lastError    error
	account      *domain.Account

	flight        singleflight.Group
	baseCtx       context.Context
	baseCancel    context.CancelFunc
	connectBudget time.Duration

	loginMu      sync.Mutex
	challenge    *loginChallenge
	loginPending atomic.Bool
}

// NewConnectionManager creates a connection manager. The session token is
// loaded by Init.
func NewConnectionManager(
	cfg *config.TelegramConfig,
	factory domain.TransportFactory,
	store deps.CredentialStore,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ConnectionManager {
	var proxy *domain.ProxyConfig
	if cfg.Proxy.Enabled() {
		proxy = &domain.ProxyConfig{
			Type: cfg.Proxy.Type,
			Host: cfg.Proxy.Host,
			Port: cfg.Proxy.Port,
		}
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &ConnectionManager{
		baseCtx:       baseCtx,
		baseCancel:    baseCancel,
		connectBudget: time.Duration(attempts) * (cfg.ConnectRetryDelay + dialAllowance),
		apiID:         cfg.APIID,
		apiHash:       cfg.APIHash,
		seedToken:     strings.TrimSpace(cfg.SessionString),
		proxy:         proxy,
		autoConnect:   cfg.AutoConnect,
		factory:       factory,
		store:         store,
		policy:        retry.Constant(cfg.ConnectAttempts, cfg.ConnectRetryDelay),
		logger:        logger.With().Str("component", "connection_manager").Logger(),
		metrics:       m,
		now:           time.Now,
		state:         entities.StateDisconnected,
	}
}

// Init loads the persisted session token. A token from the environment seeds
// an empty store.
func (m *ConnectionManager) Init(ctx context.Context) error {
	token, err := m.store.SessionToken(ctx)
	if err != nil {
		return pkgerrors.NewInternalErrorf("failed to load session token: %w", err)
	}

	if token == "" && m.seedToken != "" {
		if err := m.store.SaveSessionToken(ctx, m.seedToken); err != nil {
			return pkgerrors.NewInternalErrorf("failed to seed session token: %w", err)
		}
		token = m.seedToken
		m.logger.Info().Msg("Session token seeded from environment")
	}

	m.mu.Lock()
	m.sessionToken = token
	m.mu.Unlock()

	m.logger.Info().
		Bool("session_present", token != "").
		Bool("proxy_enabled", m.proxy != nil).
		Msg("Connection manager initialized")

	return nil
}

// AutoConnect reports whether the manager should connect on startup
func (m *ConnectionManager) AutoConnect() bool {
	return m.autoConnect
}

// State returns the current lifecycle state
func (m *ConnectionManager) State() entities.State {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	if state == entities.StateDisconnected && m.loginPending.Load() {
		return entities.StateAuthPending
	}
	return state
}

// Connect establishes the live transport. It is a no-op when already connected.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	_, err := m.connectShared(ctx)
	return err
}

// ActiveClient returns the live transport, reconnecting a stale one first.
func (m *ConnectionManager) ActiveClient(ctx context.Context) (domain.Transport, error) {
	m.mu.Lock()
	t := m.transport
	m.mu.Unlock()

	if t == nil {
		return nil, sessionerrors.ErrNotInitialized
	}

	if t.IsConnected() {
		m.touch()
		return t, nil
	}

	m.logger.Warn().Msg("Telegram client is stale, reconnecting")
	m.metrics.RecordReconnection()

	return m.connectShared(ctx)
}

func (m *ConnectionManager) connectShared(ctx context.Context) (domain.Transport, error) {
	results := m.flight.DoChan(connectFlight, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(m.baseCtx, m.connectBudget)
		defer cancel()
		return m.connect(flightCtx)
	})

	select {
	case res := <-results:
		if res.Shared {
			m.logger.Debug().Msg("Joined in-flight connection attempt")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.Transport), nil
	case <-ctx.Done():
		return nil, pkgerrors.NewConnectionErrorf("stopped waiting for connection: %w", ctx.Err())
	}
}

func (m *ConnectionManager) connect(ctx context.Context) (domain.Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewConnectionErrorf("connection manager stopped: %w", err)
	}

	m.mu.Lock()
	if m.transport != nil && m.transport.IsConnected() {
		t := m.transport
		m.mu.Unlock()
		return t, nil
	}

	stale := m.transport
	token := m.sessionToken
	generation := m.generation
	if stale != nil {
		m.state = entities.StateReconnecting
	} else {
		m.state = entities.StateConnecting
	}
	m.mu.Unlock()

	if token == "" {
		m.fail(sessionerrors.ErrSessionMissing)
		return nil, sessionerrors.ErrSessionMissing
	}
	if !entities.PlausibleToken(token) {
		m.fail(sessionerrors.ErrSessionImplausible)
		return nil, sessionerrors.ErrSessionImplausible
	}

	opts := domain.TransportOptions{
		APIID:        m.apiID,
		APIHash:      m.apiHash,
		SessionToken: token,
		Proxy:        m.proxy,
	}

	attempts := 0
	var live domain.Transport
	err := m.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		attempts = attempt
		m.metrics.RecordConnectAttempt()

		t, err := m.factory.New(opts)
		if err != nil {
			return retry.Permanent(pkgerrors.NewInternalErrorf("failed to create telegram client: %w", err))
		}

		if err := t.Connect(ctx); err != nil {
			m.release(ctx, t)
			if errors.Is(err, domain.ErrUnauthorized) {
				return retry.Permanent(pkgerrors.NewAuthErrorf("session token was rejected: %w", err))
			}
			return err
		}

		live = t
		return nil
	}, func(err error, next time.Duration) {
		m.recordError(err)
		m.metrics.RecordConnectFailure("attempt")
		m.logger.Warn().Err(err).
			Int("attempt", attempts).
			Dur("retry_in", next).
			Msg("Connection attempt failed")
	})

	if err != nil {
		var authErr *pkgerrors.AuthError
		var internalErr *pkgerrors.InternalError
		switch {
		case errors.As(err, &authErr), errors.As(err, &internalErr):
		default:
			err = pkgerrors.NewConnectionErrorf("failed to connect after %d attempts: %w", attempts, err)
		}

		m.metrics.RecordConnectFailure("exhausted")
		m.fail(err)
		m.logger.Error().Err(err).Int("attempts", attempts).Msg("Failed to connect to Telegram")
		return nil, err
	}

	m.mu.Lock()
	if m.generation != generation {
		m.mu.Unlock()
		m.release(ctx, live)
		return nil, sessionerrors.ErrDisconnected
	}
	m.transport = live
	m.state = entities.StateConnected
	m.lastActivity = m.now()
	m.lastError = nil
	m.mu.Unlock()

	if stale != nil {
		m.release(ctx, stale)
	}

	m.metrics.SetConnected(true)

	account, err := live.Self(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Connected but failed to fetch account details")
	} else {
		m.mu.Lock()
		m.account = account
		m.mu.Unlock()
	}

	m.logger.Info().
		Int("attempts", attempts).
		Bool("reconnect", stale != nil).
		Msg("Connected to Telegram")

	return live, nil
}

// Disconnect releases the live transport. It is safe to call repeatedly.
func (m *ConnectionManager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	t := m.transport
	m.transport = nil
	m.account = nil
	m.generation++
	m.state = entities.StateDisconnected
	m.mu.Unlock()

	m.metrics.SetConnected(false)

	if t == nil {
		return nil
	}

	m.release(ctx, t)
	m.logger.Info().Msg("Disconnected from Telegram")
	return nil
}

// Status never fails. Probe errors are recorded and reported as disconnected.
func (m *ConnectionManager) Status(ctx context.Context) entities.Status {
	m.mu.Lock()
	t := m.transport
	token := m.sessionToken
	m.mu.Unlock()

	connected := false
	if t != nil && t.IsConnected() {
		account, err := t.Self(ctx)
		if err != nil {
			m.recordError(err)
			m.logger.Warn().Err(err).Msg("Connection probe failed")
		} else {
			connected = true
			m.mu.Lock()
			m.account = account
			m.lastActivity = m.now()
			m.mu.Unlock()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	status := entities.Status{
		Connected:    connected,
		State:        m.state,
		ProxyEnabled: m.proxy != nil,
		SessionValid: entities.PlausibleToken(token),
		LoginPending: m.loginPending.Load(),
	}
	if !connected && status.State == entities.StateConnected {
		// stale handle; the next ActiveClient call reconnects it
		status.State = entities.StateDisconnected
	}
	if status.State == entities.StateDisconnected && status.LoginPending {
		status.State = entities.StateAuthPending
	}
	if !m.lastActivity.IsZero() {
		ts := m.lastActivity
		status.LastActivity = &ts
	}
	if m.lastError != nil {
		status.LastError = m.lastError.Error()
	}
	if m.proxy != nil {
		proxy := *m.proxy
		status.ProxyDetails = &proxy
	}
	if connected && m.account != nil {
		account := *m.account
		status.AccountDetails = &account
	}

	return status
}

// Shutdown releases the live transport and any pending login
func (m *ConnectionManager) Shutdown(ctx context.Context) error {
	m.loginMu.Lock()
	m.releaseChallenge(ctx)
	m.loginMu.Unlock()

	m.baseCancel()
	return m.Disconnect(ctx)
}

func (m *ConnectionManager) touch() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()
}

func (m *ConnectionManager) recordError(err error) {
	m.mu.Lock()
	m.lastError = err
	m.mu.Unlock()
}

// fail records err and falls back to Disconnected. A stale handle is kept so
// the next ActiveClient call retries.
func (m *ConnectionManager) fail(err error) {
	m.mu.Lock()
	m.lastError = err
	m.state = entities.StateDisconnected
	m.mu.Unlock()

	m.metrics.SetConnected(false)
}

func (m *ConnectionManager) release(ctx context.Context, t domain.Transport) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := t.Disconnect(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to release telegram client")
	}
}
