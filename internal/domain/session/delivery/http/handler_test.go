package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/entities"
	sessionerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

type mockService struct {
	sendCodeFunc func(phone string) error
	loginFunc    func(code, password string) error
	connectErr   error
	status       entities.Status
}

func (m *mockService) SendCode(ctx context.Context, phone string) error {
	if m.sendCodeFunc != nil {
		return m.sendCodeFunc(phone)
	}
	return nil
}

func (m *mockService) CompleteLogin(ctx context.Context, code, password string) error {
	if m.loginFunc != nil {
		return m.loginFunc(code, password)
	}
	return nil
}

func (m *mockService) Connect(ctx context.Context) error      { return m.connectErr }
func (m *mockService) Disconnect(ctx context.Context) error   { return nil }
func (m *mockService) State() entities.State                  { return m.status.State }
func (m *mockService) Status(context.Context) entities.Status { return m.status }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newHandler(svc *mockService) *Handler {
	return NewHandler(svc, pkgerrors.NewMapper(zerolog.Nop()), zerolog.Nop())
}

func doRequest(t *testing.T, handler func(*fasthttp.RequestCtx), body string) (int, envelope) {
	t.Helper()

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBodyString(body)
	handler(ctx)

	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return ctx.Response.StatusCode(), env
}

func TestGetCode_PassesPhone(t *testing.T) {
	var got string
	h := newHandler(&mockService{sendCodeFunc: func(phone string) error {
		got = phone
		return nil
	}})

	status, env := doRequest(t, h.GetCode, `{"phone":"+15550001111"}`)

	assert.Equal(t, fasthttp.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "+15550001111", got)
}

func TestGetCode_InvalidBody(t *testing.T) {
	h := newHandler(&mockService{})

	status, env := doRequest(t, h.GetCode, `{`)

	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "no pending login", err: sessionerrors.ErrSendCodeFirst, status: fasthttp.StatusBadRequest},
		{name: "second factor", err: sessionerrors.ErrSecondFactorRequired, status: fasthttp.StatusUnauthorized},
		{name: "store failure", err: pkgerrors.NewInternalError("boom"), status: fasthttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&mockService{loginFunc: func(string, string) error { return tt.err }})

			status, env := doRequest(t, h.Login, `{"code":"12345"}`)

			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
		})
	}
}

func TestConnect_Unavailable(t *testing.T) {
	h := newHandler(&mockService{connectErr: pkgerrors.NewConnectionError("failed to connect after 5 attempts")})

	status, env := doRequest(t, h.Connect, ``)

	assert.Equal(t, fasthttp.StatusServiceUnavailable, status)
	assert.Contains(t, env.Error, "5 attempts")
}

func TestStatus_ReturnsSnapshot(t *testing.T) {
	h := newHandler(&mockService{status: entities.Status{
		Connected:    true,
		State:        entities.StateConnected,
		SessionValid: true,
	}})

	status, env := doRequest(t, h.Status, ``)
	require.Equal(t, fasthttp.StatusOK, status)

	var snapshot entities.Status
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.True(t, snapshot.Connected)
	assert.Equal(t, entities.StateConnected, snapshot.State)
}
