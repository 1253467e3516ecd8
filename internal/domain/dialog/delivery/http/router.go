package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// Router registers dialog HTTP routes
type Router struct {
	handler *Handler
	logger  zerolog.Logger
}

// NewRouter creates a new dialog router
func NewRouter(handler *Handler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers dialog routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	group := httputil.NewMiddlewareGroup(rt.Group("/dialogs")).
		Use(httputil.RequestID(), httputil.AccessLog(r.logger))

	group.POST("/sync", r.handler.Sync)
	group.GET("/{dialog_id}/{telegram_type}", r.handler.Get)

	r.logger.Info().Msg("Dialog routes registered")
}
