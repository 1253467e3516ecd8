package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health/entities"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health/usecase/business"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	checker *business.Checker
	logger  zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(checker *business.Checker, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger,
	}
}

// Handle handles the health check request for fasthttp
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	report := h.checker.Check(ctx)

	logEvent := h.logger.Debug()
	if report.Status == entities.StatusUnhealthy {
		logEvent = h.logger.Warn()
	} else if report.Status == entities.StatusDegraded {
		logEvent = h.logger.Info()
	}
	logEvent.
		Str("status", string(report.Status)).
		Interface("components", report.Components).
		Msg("Health check completed")

	httputil.WriteHealthResponse(ctx, report, report.Status != entities.StatusUnhealthy)
}
