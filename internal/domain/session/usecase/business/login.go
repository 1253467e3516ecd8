package business

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	sessionerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/utils"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

// loginChallenge is a login waiting for the code sent to phone
type loginChallenge struct {
	transport domain.Transport
	phone     string
	codeHash  string
	createdAt time.Time
}

// SendCode opens an unauthenticated transport and asks Telegram to send a
// login code to phone. A previous pending login is discarded.
func (m *ConnectionManager) SendCode(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return sessionerrors.ErrPhoneRequired
	}

	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	m.releaseChallenge(ctx)

	t, err := m.factory.New(domain.TransportOptions{
		APIID:   m.apiID,
		APIHash: m.apiHash,
		Proxy:   m.proxy,
	})
	if err != nil {
		m.metrics.RecordLogin("send_code_failed")
		return pkgerrors.NewAuthErrorf("failed to create login client: %w", err)
	}

	if err := t.Connect(ctx); err != nil {
		m.release(ctx, t)
		m.metrics.RecordLogin("send_code_failed")
		return pkgerrors.NewAuthErrorf("failed to connect login client: %w", err)
	}

	codeHash, err := t.SendCode(ctx, phone)
	if err != nil {
		m.release(ctx, t)
		m.metrics.RecordLogin("send_code_failed")
		return pkgerrors.NewAuthErrorf("failed to send login code: %w", err)
	}

	m.challenge = &loginChallenge{
		transport: t,
		phone:     phone,
		codeHash:  codeHash,
		createdAt: m.now(),
	}
	m.loginPending.Store(true)
	m.metrics.RecordLogin("code_sent")

	m.logger.Info().
		Str("phone", utils.MaskPhoneNumber(phone)).
		Msg("Login code sent")

	return nil
}

// CompleteLogin signs in with the code from SendCode and persists the new
// session token. The pending login is discarded whatever the outcome.
func (m *ConnectionManager) CompleteLogin(ctx context.Context, code, password string) error {
	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	ch := m.challenge
	if ch == nil {
		return sessionerrors.ErrSendCodeFirst
	}
	defer m.releaseChallenge(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		m.metrics.RecordLogin("failed")
		return sessionerrors.ErrCodeRequired
	}

	if err := ch.transport.SignIn(ctx, ch.phone, code, ch.codeHash, password); err != nil {
		switch {
		case errors.Is(err, domain.ErrSecondFactorRequired):
			m.metrics.RecordLogin("second_factor_required")
			return sessionerrors.ErrSecondFactorRequired
		case errors.Is(err, domain.ErrInvalidCode):
			m.metrics.RecordLogin("invalid_code")
			return pkgerrors.NewAuthErrorf("login code was rejected: %w", err)
		default:
			m.metrics.RecordLogin("failed")
			return pkgerrors.NewAuthErrorf("sign in failed: %w", err)
		}
	}

	token, err := ch.transport.ExportSession(ctx)
	if err != nil {
		m.metrics.RecordLogin("failed")
		return pkgerrors.NewInternalErrorf("failed to export session: %w", err)
	}

	if err := m.store.SaveSessionToken(ctx, token); err != nil {
		m.metrics.RecordLogin("failed")
		return pkgerrors.NewInternalErrorf("failed to persist session token: %w", err)
	}

	m.mu.Lock()
	m.sessionToken = token
	m.mu.Unlock()

	m.metrics.RecordLogin("success")
	m.logger.Info().
		Str("phone", utils.MaskPhoneNumber(ch.phone)).
		Str("session", utils.MaskSecret(token)).
		Dur("elapsed", m.now().Sub(ch.createdAt)).
		Msg("Login completed, session token stored")

	return nil
}

// releaseChallenge must be called with loginMu held
func (m *ConnectionManager) releaseChallenge(ctx context.Context) {
	if m.challenge == nil {
		return
	}

	m.release(ctx, m.challenge.transport)
	m.challenge = nil
	m.loginPending.Store(false)
}
