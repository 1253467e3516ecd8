package errors

import (
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

var (
	ErrInvalidType     = pkgerrors.NewValidationError("telegram_type must be one of user, chat, channel")
	ErrInvalidDialogID = pkgerrors.NewValidationError("dialog_id must be a positive integer")
	ErrDialogNotFound  = pkgerrors.NewNotFoundError("dialog not found")
)
