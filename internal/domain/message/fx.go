package message

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/crawler-service/config"
	messagehttp "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/delivery/http"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/repository/postgres"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/usecase/business"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/http/server"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// Module provides message domain components for fx DI
var Module = fx.Module("message",
	fx.Provide(
		postgres.NewRepository,
		business.NewUseCase,
		func(uc *business.UseCase) deps.MessageService { return uc },
		NewHandlerFx,
		messagehttp.NewRouter,
	),
	fx.Invoke(registerRoutes),
)

// NewHandlerFx creates the message handler with the configured pipeline timeouts
func NewHandlerFx(
	service deps.MessageService,
	mapper httputil.ErrorMapper,
	cfg *config.CrawlerConfig,
	logger zerolog.Logger,
) *messagehttp.Handler {
	return messagehttp.NewHandler(service, mapper, cfg.IngestTimeout, cfg.ForwardTimeout, logger)
}

// registerRoutes registers message HTTP routes on the server
func registerRoutes(srv *server.Server, router *messagehttp.Router) {
	router.RegisterRoutes(srv.Router)
}
