package errors

import (
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

var (
	ErrNoKeywords      = pkgerrors.NewValidationError("at least one non-empty keyword is required")
	ErrEmptyKeyword    = pkgerrors.NewValidationError("keyword is required")
	ErrEmptyChannelRef = pkgerrors.NewValidationError("channel_id is required")
	ErrInvalidLimit    = pkgerrors.NewValidationError("limit must not be negative")
	ErrInvalidMinID    = pkgerrors.NewValidationError("min_id must not be negative")
	ErrInvalidDuration = pkgerrors.NewValidationError("min_duration must not be negative")
	ErrMissingChatIDs  = pkgerrors.NewValidationError("from_chat_id and to_chat_id are required")
	ErrNoMatches       = pkgerrors.NewNotFoundError("no messages matched the keywords")
	ErrMessageNotFound = pkgerrors.NewNotFoundError("message not found")
)
