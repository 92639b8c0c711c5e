// Package tags declares and implements tag persistence.
package tags

import (
	"context"

	"github.com/dmitrijs2005/gophcoach/internal/server/models"
)

type Repository interface {
	// GetOrCreate returns the tag whose name matches case-insensitively,
	// creating it with the given casing when none exists. Concurrent callers
	// converge on one row through the unique index on lower(name).
	GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
}
