package http

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/entities"
	dialogerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/httputil"
)

// Handler handles dialog HTTP requests
type Handler struct {
	service deps.DialogService
	mapper  httputil.ErrorMapper
	logger  zerolog.Logger
}

// NewHandler creates a new dialog handler
func NewHandler(service deps.DialogService, mapper httputil.ErrorMapper, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "dialog").Logger(),
	}
}

// syncResponse is the body of a successful sync
type syncResponse struct {
	Count   int                      `json:"count"`
	Dialogs []*entities.DialogRecord `json:"dialogs"`
}

// Sync handles POST /dialogs/sync
func (h *Handler) Sync(ctx *fasthttp.RequestCtx) {
	dialogs, err := h.service.SyncDialogs(ctx)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("request_id", httputil.GetRequestID(ctx)).
			Msg("Dialog sync failed")
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, syncResponse{Count: len(dialogs), Dialogs: dialogs})
}

// Get handles GET /dialogs/{dialog_id}/{telegram_type}
func (h *Handler) Get(ctx *fasthttp.RequestCtx) {
	raw, _ := ctx.UserValue("dialog_id").(string)
	dialogID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, dialogerrors.ErrInvalidDialogID)
		return
	}
	dialogType, _ := ctx.UserValue("telegram_type").(string)

	rec, err := h.service.GetDialog(ctx, dialogID, entities.Type(dialogType))
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, rec)
}
