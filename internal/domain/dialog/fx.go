package dialog

import (
	"go.uber.org/fx"

	dialoghttp "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/delivery/http"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/repository/postgres"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/usecase/business"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/http/server"
)

// Module provides dialog domain components for fx DI
var Module = fx.Module("dialog",
	fx.Provide(
		postgres.NewRepository,
		business.NewUseCase,
		func(uc *business.UseCase) deps.DialogService { return uc },
		dialoghttp.NewHandler,
		dialoghttp.NewRouter,
	),
	fx.Invoke(registerRoutes),
)

// registerRoutes registers dialog HTTP routes on the server
func registerRoutes(srv *server.Server, router *dialoghttp.Router) {
	router.RegisterRoutes(srv.Router)
}
