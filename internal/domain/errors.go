package domain

import "errors"

var (
	// ErrSecondFactorRequired is returned by SignIn when the account has a cloud password
	ErrSecondFactorRequired = errors.New("second factor required")

	// ErrUnauthorized is returned when the session token is missing, expired or revoked
	ErrUnauthorized = errors.New("session is not authorized")

	// ErrNotConnected is returned when operation requires connection
	ErrNotConnected = errors.New("not connected to Telegram")

	// ErrPeerNotFound is returned when a reference does not resolve to a conversation
	ErrPeerNotFound = errors.New("peer not found")

	// ErrInvalidCode is returned when the login code is wrong or expired
	ErrInvalidCode = errors.New("invalid or expired login code")
)
