// Package users declares and implements user persistence.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
)

// Conflict errors returned by Create. Both match common.ErrorAlreadyExists.
var (
	ErrUsernameExists = fmt.Errorf("username %w", common.ErrorAlreadyExists)
	ErrEmailExists    = fmt.Errorf("email %w", common.ErrorAlreadyExists)
)

type Repository interface {
	// Create inserts user and fills ID and DateJoined. A storage-level
	// uniqueness conflict yields ErrUsernameExists or ErrEmailExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
