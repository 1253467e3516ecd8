package app

import (
	"github.com/Conte777/NewsFlow/services/crawler-service/config"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure"
	"go.uber.org/fx"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		infrastructure.Module,
		// Domain modules
		session.Module, // Must be before message and dialog (provides domain.ClientProvider)
		message.Module,
		dialog.Module,
		health.Module,
	)
}
