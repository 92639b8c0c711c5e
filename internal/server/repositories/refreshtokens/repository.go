// Package refreshtokens declares the repository contract for refresh tokens
// issued by tokenAuth and rotated by refreshToken.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token for userID expiring at expires.
	Create(ctx context.Context, userID int64, token string, expires time.Time) error

	// Find looks up a refresh token by its opaque value.
	// Returns common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired purges tokens of userID that expired before now.
	DeleteExpired(ctx context.Context, userID int64, now time.Time) error
}
