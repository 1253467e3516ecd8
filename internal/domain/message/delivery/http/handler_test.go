package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
	messageerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

type mockService struct {
	fetchFunc   func(ctx context.Context, req dto.FetchRequest) (*dto.IngestResult, error)
	forwardFunc func(ctx context.Context, req dto.ForwardRequest) (*dto.ForwardResult, error)
	getFunc     func(dialogID int64, messageID int) (*dto.StoredMessage, error)
}

func (m *mockService) FetchByKeywords(ctx context.Context, req dto.FetchRequest) (*dto.IngestResult, error) {
	return m.fetchFunc(ctx, req)
}

func (m *mockService) Forward(ctx context.Context, req dto.ForwardRequest) (*dto.ForwardResult, error) {
	return m.forwardFunc(ctx, req)
}

func (m *mockService) GetMessage(ctx context.Context, dialogID int64, messageID int) (*dto.StoredMessage, error) {
	return m.getFunc(dialogID, messageID)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newHandler(svc *mockService) *Handler {
	return NewHandler(svc, pkgerrors.NewMapper(zerolog.Nop()), time.Minute, time.Minute, zerolog.Nop())
}

func serve(t *testing.T, ctx *fasthttp.RequestCtx, handler func(*fasthttp.RequestCtx)) (int, envelope) {
	t.Helper()

	handler(ctx)

	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return ctx.Response.StatusCode(), env
}

func post(body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBodyString(body)
	return ctx
}

func TestGetMessages_NumericChannelAndKeywords(t *testing.T) {
	var got dto.FetchRequest
	var hasDeadline bool
	h := newHandler(&mockService{fetchFunc: func(ctx context.Context, req dto.FetchRequest) (*dto.IngestResult, error) {
		got = req
		_, hasDeadline = ctx.Deadline()
		return &dto.IngestResult{Scanned: 10, Matched: 2, Created: 2}, nil
	}})

	status, env := serve(t, post(`{"channel_id":-1001234567890,"keywords":"go,rust","limit":50}`), h.GetMessages)

	assert.Equal(t, fasthttp.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "-1001234567890", got.ChannelRef)
	assert.Equal(t, []string{"go", "rust"}, got.Keywords)
	assert.Equal(t, 50, got.Limit)
	assert.True(t, hasDeadline)

	var result dto.IngestResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 2, result.Matched)
}

func TestGetMessages_NoMatchesIsNotFound(t *testing.T) {
	h := newHandler(&mockService{fetchFunc: func(context.Context, dto.FetchRequest) (*dto.IngestResult, error) {
		return &dto.IngestResult{Scanned: 40}, nil
	}})

	status, env := serve(t, post(`{"channel_id":"@golang","keywords":"nothing"}`), h.GetMessages)

	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, messageerrors.ErrNoMatches.Error(), env.Error)
}

func TestGetMessages_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", messageerrors.ErrNoKeywords, fasthttp.StatusBadRequest},
		{"connection", pkgerrors.NewConnectionError("telegram unavailable"), fasthttp.StatusServiceUnavailable},
		{"internal", pkgerrors.NewInternalError("db down"), fasthttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&mockService{fetchFunc: func(context.Context, dto.FetchRequest) (*dto.IngestResult, error) {
				return nil, tt.err
			}})

			status, env := serve(t, post(`{"channel_id":"@golang","keywords":"go"}`), h.GetMessages)

			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
		})
	}
}

func TestGetMessages_InvalidBody(t *testing.T) {
	h := newHandler(&mockService{})

	status, env := serve(t, post(`{"channel_id":`), h.GetMessages)

	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestForwardMessages_PassesSelection(t *testing.T) {
	var got dto.ForwardRequest
	h := newHandler(&mockService{forwardFunc: func(_ context.Context, req dto.ForwardRequest) (*dto.ForwardResult, error) {
		got = req
		return &dto.ForwardResult{Status: dto.ForwardDone, Forwarded: []int{3, 4}}, nil
	}})

	status, env := serve(t, post(`{"keyword":"release","from_chat_id":-1001,"to_chat_id":-1002,"min_duration":30}`), h.ForwardMessages)

	assert.Equal(t, fasthttp.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "release", got.Keyword)
	assert.Equal(t, int64(-1001), got.SourceChannelID)
	assert.Equal(t, int64(-1002), got.TargetChannelID)
	require.NotNil(t, got.MinDurationSeconds)
	assert.Equal(t, 30, *got.MinDurationSeconds)

	var result dto.ForwardResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, dto.ForwardDone, result.Status)
	assert.Equal(t, []int{3, 4}, result.Forwarded)
}

func TestForwardMessages_PartialFailure(t *testing.T) {
	h := newHandler(&mockService{forwardFunc: func(context.Context, dto.ForwardRequest) (*dto.ForwardResult, error) {
		return nil, pkgerrors.NewPartialFailureErrorf([]int{4}, "forwarded 1 of 2 batches")
	}})

	status, _ := serve(t, post(`{"keyword":"x","from_chat_id":1,"to_chat_id":2}`), h.ForwardMessages)

	assert.Equal(t, fasthttp.StatusBadGateway, status)
}

func TestGetMessage_PathParams(t *testing.T) {
	text := "hello"
	var gotDialog int64
	var gotMessage int
	h := newHandler(&mockService{getFunc: func(dialogID int64, messageID int) (*dto.StoredMessage, error) {
		gotDialog, gotMessage = dialogID, messageID
		return &dto.StoredMessage{MessageRecord: &entities.MessageRecord{
			DialogID:   1234,
			MessageID:  9,
			SenderType: entities.SenderChannel,
			Text:       &text,
		}}, nil
	}})

	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("dialog_id", "-1001234")
	ctx.SetUserValue("message_id", "9")
	status, env := serve(t, ctx, h.GetMessage)

	assert.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, int64(-1001234), gotDialog)
	assert.Equal(t, 9, gotMessage)
	assert.Contains(t, string(env.Data), `"text":"hello"`)
}

func TestGetMessage_BadParams(t *testing.T) {
	h := newHandler(&mockService{})

	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("dialog_id", "abc")
	ctx.SetUserValue("message_id", "9")
	status, _ := serve(t, ctx, h.GetMessage)

	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestGetMessage_NotFound(t *testing.T) {
	h := newHandler(&mockService{getFunc: func(int64, int) (*dto.StoredMessage, error) {
		return nil, messageerrors.ErrMessageNotFound
	}})

	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("dialog_id", "55")
	ctx.SetUserValue("message_id", "1")
	status, env := serve(t, ctx, h.GetMessage)

	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "message not found", env.Error)
}
