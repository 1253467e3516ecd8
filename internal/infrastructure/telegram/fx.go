package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/crawler-service/config"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
)

// Module provides the Telegram transport factory for fx DI
var Module = fx.Module("telegram",
	fx.Provide(NewFactoryFx),
)

// Factory opens gotd clients for the session connection manager
type Factory struct {
	rateLimit float64
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewFactory creates a transport factory
func NewFactory(rateLimit float64, logger zerolog.Logger, m *metrics.Metrics) *Factory {
	return &Factory{rateLimit: rateLimit, logger: logger, metrics: m}
}

// New implements domain.TransportFactory
func (f *Factory) New(opts domain.TransportOptions) (domain.Transport, error) {
	return NewClient(context.Background(), ClientConfig{
		APIID:        opts.APIID,
		APIHash:      opts.APIHash,
		SessionToken: opts.SessionToken,
		Proxy:        opts.Proxy,
		RateLimit:    f.rateLimit,
		Logger:       f.logger,
		Metrics:      f.metrics,
	})
}

// NewFactoryFx creates the transport factory for fx DI
func NewFactoryFx(cfg *config.TelegramConfig, logger zerolog.Logger, m *metrics.Metrics) domain.TransportFactory {
	return NewFactory(cfg.RateLimit, logger, m)
}
