package infrastructure

import (
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/credentials"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/database"
	httpfx "github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/http"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/kafka"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/logger"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/telegram"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
	"go.uber.org/fx"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module, // Must be before credentials (the store depends on *gorm.DB)
	credentials.Module,
	metrics.Module,
	telegram.Module,
	kafka.Module,
	httpfx.Module,
	fx.Provide(
		fx.Annotate(pkgerrors.NewMapper, fx.As(new(httputil.ErrorMapper))),
	),
)
