// Package common defines shared constants and sentinel errors used across
// GophCoach server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Query argument errors.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidCursor   = errors.New("invalid cursor")
	ErrInvalidDate     = errors.New("invalid date")
)
