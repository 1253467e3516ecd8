package health

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	healthhttp "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health/delivery/http"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health/usecase/business"
	sessiondeps "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/http/server"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/kafka"
)

// Module provides health check components for fx DI
var Module = fx.Module("health",
	fx.Provide(
		func(s sessiondeps.ConnectionService) deps.ConnectionState { return s },
		func(db *gorm.DB) (deps.DatabasePinger, error) { return db.DB() },
		func(h kafka.HealthChecker) deps.ProducerHealth { return h },
		business.NewChecker,
		healthhttp.NewHealthHandler,
		healthhttp.NewRouter,
	),
	fx.Invoke(registerRoutes),
)

// registerRoutes registers health HTTP routes on the server
func registerRoutes(srv *server.Server, router *healthhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
