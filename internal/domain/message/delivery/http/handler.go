package http

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	messageerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// Handler handles message HTTP requests
type Handler struct {
	service        deps.MessageService
	mapper         httputil.ErrorMapper
	ingestTimeout  time.Duration
	forwardTimeout time.Duration
	logger         zerolog.Logger
}

// NewHandler creates a new message handler. Zero timeouts leave requests unbounded.
func NewHandler(
	service deps.MessageService,
	mapper httputil.ErrorMapper,
	ingestTimeout, forwardTimeout time.Duration,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		service:        service,
		mapper:         mapper,
		ingestTimeout:  ingestTimeout,
		forwardTimeout: forwardTimeout,
		logger:         logger.With().Str("handler", "message").Logger(),
	}
}

// GetMessages handles POST /messages/get_message
func (h *Handler) GetMessages(ctx *fasthttp.RequestCtx) {
	var req dto.GetMessageRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteErrorResponse(ctx, "invalid request body", fasthttp.StatusBadRequest)
		return
	}

	reqCtx, cancel := withTimeout(ctx, h.ingestTimeout)
	defer cancel()

	result, err := h.service.FetchByKeywords(reqCtx, req.ToFetchRequest())
	if err != nil {
		h.logger.Warn().Err(err).
			Str("request_id", httputil.GetRequestID(ctx)).
			Str("channel_id", string(req.ChannelID)).
			Msg("Keyword ingestion failed")
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	if result.Matched == 0 {
		httputil.WriteMappedError(ctx, h.mapper, messageerrors.ErrNoMatches)
		return
	}

	httputil.WriteResponse(ctx, result)
}

// ForwardMessages handles POST /messages/forward_message
func (h *Handler) ForwardMessages(ctx *fasthttp.RequestCtx) {
	var req dto.ForwardMessageRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteErrorResponse(ctx, "invalid request body", fasthttp.StatusBadRequest)
		return
	}

	reqCtx, cancel := withTimeout(ctx, h.forwardTimeout)
	defer cancel()

	result, err := h.service.Forward(reqCtx, req.ToForwardRequest())
	if err != nil {
		h.logger.Warn().Err(err).
			Str("request_id", httputil.GetRequestID(ctx)).
			Str("keyword", req.Keyword).
			Msg("Forward failed")
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, result)
}

// GetMessage handles GET /messages/dialog/{dialog_id}/message/{message_id}
func (h *Handler) GetMessage(ctx *fasthttp.RequestCtx) {
	dialogID, err := strconv.ParseInt(userValue(ctx, "dialog_id"), 10, 64)
	if err != nil {
		httputil.WriteErrorResponse(ctx, "dialog_id must be an integer", fasthttp.StatusBadRequest)
		return
	}
	messageID, err := strconv.Atoi(userValue(ctx, "message_id"))
	if err != nil {
		httputil.WriteErrorResponse(ctx, "message_id must be an integer", fasthttp.StatusBadRequest)
		return
	}

	msg, err := h.service.GetMessage(ctx, dialogID, messageID)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, msg)
}

func userValue(ctx *fasthttp.RequestCtx, key string) string {
	v, _ := ctx.UserValue(key).(string)
	return v
}

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
