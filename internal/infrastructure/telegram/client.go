package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/cache"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
)

const (
	// maxFloodWait is the longest FLOOD_WAIT the client sleeps through before giving up
	maxFloodWait = time.Minute
	// maxFloodRetries bounds how often one request is repeated after FLOOD_WAIT
	maxFloodRetries = 3
)

// Client implements domain.Transport using gotd/td. A client with a session
// token must be authorized; a client without one is used for logging in.
type Client struct {
	apiID       int
	apiHash     string
	storage     *TokenStorage
	dial        dcs.DialFunc
	requireAuth bool

	// Connection state
	client        *telegram.Client
	api           *tg.Client
	connected     bool
	connecting    bool
	disconnecting bool
	mu            sync.RWMutex
	cancelFunc    context.CancelFunc
	runDone       chan struct{} // Signals when client.Run() completes

	peers       *peerCache
	usernames   *cache.UsernameCache
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// ClientConfig holds configuration for Client
type ClientConfig struct {
	APIID        int
	APIHash      string
	SessionToken string
	Proxy        *domain.ProxyConfig
	// RateLimit is the number of API requests per second
	RateLimit float64
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

// NewClient creates a new, not yet connected client
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.APIID == 0 {
		return nil, fmt.Errorf("APIID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("APIHash is required")
	}

	storage, err := NewTokenStorage(ctx, cfg.SessionToken)
	if err != nil {
		return nil, err
	}

	dial, err := proxyDialFunc(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		apiID:       cfg.APIID,
		apiHash:     cfg.APIHash,
		storage:     storage,
		dial:        dial,
		requireAuth: cfg.SessionToken != "",
		peers:       newPeerCache(),
		usernames:   cache.NewUsernameCache(usernameCacheSize, usernameCacheTTL, cfg.Logger),
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      cfg.Logger.With().Str("component", "mtproto_client").Logger(),
		metrics:     cfg.Metrics,
	}, nil
}

// Connect starts the client and waits until it is ready. ctx only bounds the
// wait: the client runs on its own context and stops on Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	if c.disconnecting {
		c.mu.Unlock()
		return fmt.Errorf("disconnect in progress, cannot connect")
	}
	if c.connecting {
		c.mu.Unlock()
		return fmt.Errorf("connect already in progress")
	}
	c.connecting = true

	c.client = telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: c.storage,
		Resolver:       dcs.Plain(dcs.PlainOptions{Dial: c.dial}),
		NoUpdates:      true,
	})

	clientCtx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	readyChan := make(chan struct{})
	errChan := make(chan error, 1)
	runDone := make(chan struct{})
	c.runDone = runDone
	client := c.client
	c.mu.Unlock()

	go func() {
		defer close(runDone)
		err := client.Run(clientCtx, func(ctx context.Context) error {
			if c.requireAuth {
				status, err := client.Auth().Status(ctx)
				if err != nil {
					if tgerr.IsCode(err, 401) {
						return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
					}
					return fmt.Errorf("failed to check auth status: %w", err)
				}
				if !status.Authorized {
					return domain.ErrUnauthorized
				}
			}

			c.mu.Lock()
			c.api = client.API()
			c.mu.Unlock()
			close(readyChan)

			<-ctx.Done()
			return ctx.Err()
		})

		// errChan is buffered, so the error reaches Connect before the lock is taken
		errChan <- err

		c.mu.Lock()
		if c.client == client {
			c.connected = false
		}
		c.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn().Err(err).Msg("telegram client stopped")
		}
	}()

	select {
	case <-readyChan:
		c.mu.Lock()
		c.connecting = false
		if c.client == client {
			c.connected = true
		}
		c.mu.Unlock()
		c.logger.Info().Bool("authorized", c.requireAuth).Msg("connected to Telegram")
		return nil
	case err := <-errChan:
		cancel()
		c.finishConnect()
		if err == nil {
			err = errors.New("client stopped before it was ready")
		}
		return fmt.Errorf("failed to connect: %w", err)
	case <-ctx.Done():
		cancel()
		c.finishConnect()
		return ctx.Err()
	}
}

func (c *Client) finishConnect() {
	c.mu.Lock()
	c.connecting = false
	c.mu.Unlock()
}

// Disconnect stops the client and waits for it to finish. Safe to call
// repeatedly and on a client that never connected.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.disconnecting {
		c.mu.Unlock()
		return nil
	}
	cancelFunc := c.cancelFunc
	runDone := c.runDone
	if cancelFunc == nil {
		c.connected = false
		c.mu.Unlock()
		return nil
	}
	c.disconnecting = true
	c.mu.Unlock()

	cancelFunc()
	if runDone != nil {
		select {
		case <-runDone:
		case <-ctx.Done():
			c.logger.Warn().Msg("disconnect timeout reached while waiting for client shutdown")
		}
	}

	c.mu.Lock()
	c.client = nil
	c.api = nil
	c.connected = false
	c.cancelFunc = nil
	c.runDone = nil
	c.disconnecting = false
	c.mu.Unlock()

	c.logger.Debug().Msg("disconnected from Telegram")
	return nil
}

// IsConnected reports whether the client is running
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) running() (*telegram.Client, *tg.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.api == nil {
		return nil, nil, domain.ErrNotConnected
	}
	return c.client, c.api, nil
}

// invoke runs one API request under the rate limiter, sleeping through short
// FLOOD_WAIT errors
func (c *Client) invoke(ctx context.Context, fn func(ctx context.Context, api *tg.Client) error) error {
	_, api, err := c.running()
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		err := fn(ctx, api)
		if err == nil {
			return nil
		}

		wait, ok := tgerr.AsFloodWait(err)
		if !ok || attempt >= maxFloodRetries || wait > maxFloodWait {
			return err
		}

		c.metrics.RecordFloodWait()
		c.logger.Warn().Dur("wait", wait).Int("attempt", attempt+1).Msg("flood wait, sleeping")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// SendCode requests a login code for phone and returns its hash
func (c *Client) SendCode(ctx context.Context, phone string) (string, error) {
	client, _, err := c.running()
	if err != nil {
		return "", err
	}

	sent, err := client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return "", err
	}

	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return "", fmt.Errorf("unexpected sent code response %T", sent)
	}
	return code.PhoneCodeHash, nil
}

// SignIn completes a code login, using password when the account has one
func (c *Client) SignIn(ctx context.Context, phone, code, codeHash, password string) error {
	client, _, err := c.running()
	if err != nil {
		return err
	}

	_, err = client.Auth().SignIn(ctx, phone, code, codeHash)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrPasswordAuthNeeded):
		if password == "" {
			return domain.ErrSecondFactorRequired
		}
		if _, err := client.Auth().Password(ctx, password); err != nil {
			return fmt.Errorf("password check failed: %w", err)
		}
		return nil
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EXPIRED", "PHONE_CODE_EMPTY"):
		return fmt.Errorf("%w: %v", domain.ErrInvalidCode, err)
	default:
		return err
	}
}

// ExportSession returns the session token of the client
func (c *Client) ExportSession(_ context.Context) (string, error) {
	return c.storage.Token()
}

// Self returns the authorized account
func (c *Client) Self(ctx context.Context) (*domain.Account, error) {
	client, _, err := c.running()
	if err != nil {
		return nil, err
	}

	user, err := client.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get self: %w", err)
	}

	return &domain.Account{ID: user.ID, Username: user.Username, Phone: user.Phone}, nil
}

// Ensure Client implements domain.Transport interface
var _ domain.Transport = (*Client)(nil)
