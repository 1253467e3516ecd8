package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	sessionhttp "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/delivery/http"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/usecase/business"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/http/server"
)

// autoConnectTimeout bounds the background connect started with the app
const autoConnectTimeout = 2 * time.Minute

// Module provides session domain components for fx DI
var Module = fx.Module("session",
	fx.Provide(
		business.NewConnectionManager,
		func(m *business.ConnectionManager) deps.ConnectionService { return m },
		func(m *business.ConnectionManager) domain.ClientProvider { return m },
		sessionhttp.NewHandler,
		sessionhttp.NewRouter,
	),
	fx.Invoke(registerLifecycle),
	fx.Invoke(registerRoutes),
)

// registerLifecycle loads the session on start, optionally connects in the
// background and releases everything on stop
func registerLifecycle(lc fx.Lifecycle, m *business.ConnectionManager, logger zerolog.Logger) {
	bgCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.Init(ctx); err != nil {
				cancel()
				close(done)
				return err
			}

			if !m.AutoConnect() {
				close(done)
				return nil
			}

			go func() {
				defer close(done)

				ctx, cancelConnect := context.WithTimeout(bgCtx, autoConnectTimeout)
				defer cancelConnect()

				if err := m.Connect(ctx); err != nil {
					logger.Warn().Err(err).Msg("Auto-connect failed, use POST /telegram/connect to retry")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return m.Shutdown(ctx)
		},
	})
}

// registerRoutes registers session HTTP routes on the server
func registerRoutes(srv *server.Server, router *sessionhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
