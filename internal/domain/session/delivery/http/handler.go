package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/dto"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// Handler handles Telegram session HTTP requests
type Handler struct {
	service deps.ConnectionService
	mapper  httputil.ErrorMapper
	logger  zerolog.Logger
}

// NewHandler creates a new session handler
func NewHandler(service deps.ConnectionService, mapper httputil.ErrorMapper, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "session").Logger(),
	}
}

// GetCode handles POST /telegram/get-code
func (h *Handler) GetCode(ctx *fasthttp.RequestCtx) {
	var req dto.SendCodeRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteErrorResponse(ctx, "invalid request body", fasthttp.StatusBadRequest)
		return
	}

	if err := h.service.SendCode(ctx, req.Phone); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.ActionResponse{Status: "success", Message: "login code sent"})
}

// Login handles POST /telegram/login
func (h *Handler) Login(ctx *fasthttp.RequestCtx) {
	var req dto.LoginRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteErrorResponse(ctx, "invalid request body", fasthttp.StatusBadRequest)
		return
	}

	if err := h.service.CompleteLogin(ctx, req.Code, req.Password); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.ActionResponse{Status: "success", Message: "logged in, session stored"})
}

// Connect handles POST /telegram/connect
func (h *Handler) Connect(ctx *fasthttp.RequestCtx) {
	if err := h.service.Connect(ctx); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.ActionResponse{Status: "success", Message: "telegram client connected"})
}

// Status handles GET /telegram/status
func (h *Handler) Status(ctx *fasthttp.RequestCtx) {
	httputil.WriteResponse(ctx, h.service.Status(ctx))
}

// Disconnect handles POST /telegram/disconnect
func (h *Handler) Disconnect(ctx *fasthttp.RequestCtx) {
	if err := h.service.Disconnect(ctx); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.ActionResponse{Status: "success", Message: "telegram client disconnected"})
}
