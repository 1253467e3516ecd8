package deps

import (
	"context"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/entities"
)

// CredentialStore persists the exported session token between restarts
type CredentialStore interface {
	SessionToken(ctx context.Context) (string, error)
	SaveSessionToken(ctx context.Context, token string) error
}

// ConnectionService is the session surface used by HTTP delivery
type ConnectionService interface {
	SendCode(ctx context.Context, phone string) error
	CompleteLogin(ctx context.Context, code, password string) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Status(ctx context.Context) entities.Status
	State() entities.State
}
