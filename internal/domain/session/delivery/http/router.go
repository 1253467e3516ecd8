package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// Router registers session HTTP routes
type Router struct {
	handler *Handler
	logger  zerolog.Logger
}

// NewRouter creates a new session router
func NewRouter(handler *Handler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers session routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	group := httputil.NewMiddlewareGroup(rt.Group("/telegram")).
		Use(httputil.RequestID(), httputil.AccessLog(r.logger))

	group.POST("/get-code", r.handler.GetCode)
	group.POST("/login", r.handler.Login)
	group.POST("/connect", r.handler.Connect)
	group.GET("/status", r.handler.Status)
	group.POST("/disconnect", r.handler.Disconnect)

	r.logger.Info().Msg("Session routes registered")
}
