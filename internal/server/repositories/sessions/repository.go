// Package sessions declares and implements coaching-session persistence,
// including the owner-scoped listings and the filtered global listing.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/gophcoach/internal/server/models"
)

type Repository interface {
	// Create inserts the session row and fills ID, Date and CreatedAt.
	Create(ctx context.Context, session *models.CoachingSession) (*models.CoachingSession, error)
	// AttachTags links tags to a session; links that already exist are kept.
	AttachTags(ctx context.Context, sessionID int64, tagIDs []int64) error

	// ListByOwner returns ownerID's sessions newest first, restricted to
	// those carrying tagName (case-insensitive) when it is non-empty.
	ListByOwner(ctx context.Context, ownerID int64, tagName string) ([]*models.CoachingSession, error)
	// GetForOwner returns common.ErrorNotFound unless the session exists and
	// belongs to ownerID.
	GetForOwner(ctx context.Context, id int64, ownerID int64) (*models.CoachingSession, error)
	// List returns one keyset page of the filtered global listing.
	List(ctx context.Context, filter models.SessionFilter, page models.PageQuery) (*models.SessionPage, error)

	// LoadTags fills Tags on every given session in one query.
	LoadTags(ctx context.Context, sessions []*models.CoachingSession) error
}
