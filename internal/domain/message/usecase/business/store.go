package business

import (
	"context"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	messageerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

// GetMessage returns a stored message and its media. dialogID may be marked.
func (u *UseCase) GetMessage(ctx context.Context, dialogID int64, messageID int) (*dto.StoredMessage, error) {
	dialog := bareDialogID(dialogID)

	rec, err := u.repo.FindByKey(ctx, dialog, messageID)
	if err != nil {
		return nil, pkgerrors.NewInternalErrorf("failed to load message: %w", err)
	}
	if rec == nil {
		return nil, messageerrors.ErrMessageNotFound
	}

	media, err := u.repo.GetMedia(ctx, dialog, messageID)
	if err != nil {
		return nil, pkgerrors.NewInternalErrorf("failed to load media: %w", err)
	}

	return &dto.StoredMessage{MessageRecord: rec, Media: media}, nil
}
