package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// Router registers message HTTP routes
type Router struct {
	handler *Handler
	logger  zerolog.Logger
}

// NewRouter creates a new message router
func NewRouter(handler *Handler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers message routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	group := httputil.NewMiddlewareGroup(rt.Group("/messages")).
		Use(httputil.RequestID(), httputil.AccessLog(r.logger))

	group.POST("/get_message", r.handler.GetMessages)
	group.POST("/forward_message", r.handler.ForwardMessages)
	group.GET("/dialog/{dialog_id}/message/{message_id}", r.handler.GetMessage)

	r.logger.Info().Msg("Message routes registered")
}
