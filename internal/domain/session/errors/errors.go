package errors

import (
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

var (
	ErrPhoneRequired = pkgerrors.NewValidationError("phone is required")
	ErrCodeRequired  = pkgerrors.NewValidationError("code is required")
	ErrSendCodeFirst = pkgerrors.NewValidationError("send code first")

	ErrSecondFactorRequired = pkgerrors.NewAuthError("second factor required")
	ErrSessionMissing       = pkgerrors.NewAuthError("session token is missing, log in first")
	ErrSessionImplausible   = pkgerrors.NewAuthError("session token is too short to be valid, log in again")

	ErrNotInitialized = pkgerrors.NewConnectionError("telegram client is not initialized")
	ErrDisconnected   = pkgerrors.NewConnectionError("client was disconnected while connecting")
)
