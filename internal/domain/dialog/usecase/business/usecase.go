package business

import (
	"context"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/entities"
	dialogerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
	"github.com/rs/zerolog"
)

// UseCase syncs the account's dialog list into storage
type UseCase struct {
	clients domain.ClientProvider
	repo    deps.DialogRepository
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewUseCase creates a new dialog use case
func NewUseCase(
	clients domain.ClientProvider,
	repo deps.DialogRepository,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		clients: clients,
		repo:    repo,
		logger:  logger.With().Str("component", "dialog_usecase").Logger(),
		metrics: m,
	}
}

// SyncDialogs lists the dialogs of the live account, upserts them and returns everything stored
func (u *UseCase) SyncDialogs(ctx context.Context) ([]*entities.DialogRecord, error) {
	start := time.Now()

	client, err := u.clients.ActiveClient(ctx)
	if err != nil {
		return nil, err
	}

	dialogs, err := client.Dialogs(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, pkgerrors.NewConnectionErrorf("failed to list dialogs: %w", err)
	}

	if err := u.repo.UpsertAll(ctx, dialogs); err != nil {
		return nil, pkgerrors.NewInternalErrorf("failed to store dialogs: %w", err)
	}

	stored, err := u.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.NewInternalErrorf("failed to list stored dialogs: %w", err)
	}

	u.metrics.UpdateDialogs(len(stored))

	u.logger.Info().
		Int("listed", len(dialogs)).
		Int("stored", len(stored)).
		Dur("duration", time.Since(start)).
		Msg("Dialogs synced")

	return stored, nil
}

// GetDialog returns one stored dialog
func (u *UseCase) GetDialog(ctx context.Context, dialogID int64, dialogType entities.Type) (*entities.DialogRecord, error) {
	if dialogID <= 0 {
		return nil, dialogerrors.ErrInvalidDialogID
	}
	if !dialogType.Valid() {
		return nil, dialogerrors.ErrInvalidType
	}

	rec, err := u.repo.Get(ctx, dialogID, dialogType)
	if err != nil {
		return nil, pkgerrors.NewInternalErrorf("failed to load dialog: %w", err)
	}
	if rec == nil {
		return nil, dialogerrors.ErrDialogNotFound
	}

	return rec, nil
}
