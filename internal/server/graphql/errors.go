package graphql

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophcoach/internal/common"
)

// Error codes reported in the "extensions.code" field of GraphQL errors.
const (
	CodeBadUserInput       = "BAD_USER_INPUT"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL"
)

// Error is what resolvers return to clients. Only Message and Code leave
// the server; the cause is logged.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// fail maps a service error to its client-facing form.
func (r *Resolver) fail(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrServiceUnavailable):
		r.logger.Warn(ctx, "completion failed", "op", op, "error", err, "request_id", RequestIDFrom(ctx))
		return &Error{Message: "coaching service unavailable", Code: CodeServiceUnavailable}
	case errors.Is(err, common.ErrorUnauthorized):
		return &Error{Message: "Please enter valid credentials", Code: CodeUnauthenticated}
	case errors.Is(err, common.ErrTokenExpired):
		return &Error{Message: "Signature has expired", Code: CodeUnauthenticated}
	case errors.Is(err, common.ErrInvalidToken):
		return &Error{Message: "Error decoding signature", Code: CodeUnauthenticated}
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return &Error{Message: "Refresh token is expired", Code: CodeUnauthenticated}
	case errors.Is(err, common.ErrInvalidCursor),
		errors.Is(err, common.ErrInvalidDate),
		errors.Is(err, common.ErrInvalidArgument):
		return &Error{Message: err.Error(), Code: CodeBadUserInput}
	default:
		r.logger.Error(ctx, "request failed", "op", op, "error", err, "request_id", RequestIDFrom(ctx))
		return &Error{Message: "internal error", Code: CodeInternal}
	}
}
