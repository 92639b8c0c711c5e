package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophcoach/internal/timex"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 100

	cursorPrefix = "cursor:"
)

// ListArgs are the raw arguments of the global session listing. Nil fields
// are not applied.
type ListArgs struct {
	Past    *bool
	Tag     *string
	Search  *string
	DateGte *string
	DateLte *string
	// MeOnly restricts the listing to the caller. Ignored for anonymous callers.
	MeOnly bool

	First  *int
	After  *string
	Last   *int
	Before *string
}

// SessionService answers read queries over coaching sessions. Every call
// takes the caller identity explicitly.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager) *SessionService {
	return &SessionService{db: db, repomanager: m, now: time.Now}
}

// ListMine returns the caller's sessions, newest first. Anonymous callers
// get an empty list.
func (s *SessionService) ListMine(ctx context.Context, id models.Identity) ([]*models.CoachingSession, error) {
	return s.listOwned(ctx, id, "")
}

// ListMineByTag is ListMine restricted to sessions tagged tagName
// (case-insensitive, surrounding blanks ignored). Blank tags are never
// stored, so a blank tagName matches nothing.
func (s *SessionService) ListMineByTag(ctx context.Context, id models.Identity, tagName string) ([]*models.CoachingSession, error) {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return []*models.CoachingSession{}, nil
	}
	return s.listOwned(ctx, id, tagName)
}

// listOwned lists the caller's sessions; an empty tagName applies no tag filter.
func (s *SessionService) listOwned(ctx context.Context, id models.Identity, tagName string) ([]*models.CoachingSession, error) {
	if !id.IsAuthenticated() {
		return []*models.CoachingSession{}, nil
	}

	repo := s.repomanager.Sessions(s.db)
	items, err := repo.ListByOwner(ctx, id.UserID, tagName)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	if err := repo.LoadTags(ctx, items); err != nil {
		return nil, fmt.Errorf("error loading tags: %w", err)
	}
	return items, nil
}

// Get returns the session only when it belongs to the caller. Missing and
// foreign sessions both yield common.ErrorNotFound.
func (s *SessionService) Get(ctx context.Context, id models.Identity, sessionID int64) (*models.CoachingSession, error) {
	if !id.IsAuthenticated() {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.GetForOwner(ctx, sessionID, id.UserID)
	if err != nil {
		return nil, err
	}
	if err := repo.LoadTags(ctx, []*models.CoachingSession{session}); err != nil {
		return nil, fmt.Errorf("error loading tags: %w", err)
	}
	return session, nil
}

// List is the global, filterable, keyset-paginated listing.
func (s *SessionService) List(ctx context.Context, id models.Identity, args ListArgs) (*models.SessionPage, error) {
	filter, err := s.buildFilter(id, args)
	if err != nil {
		return nil, err
	}
	page, err := buildPageQuery(args)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Sessions(s.db)
	result, err := repo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	if err := repo.LoadTags(ctx, result.Sessions); err != nil {
		return nil, fmt.Errorf("error loading tags: %w", err)
	}
	return result, nil
}

// Tags lists every tag, oldest first.
func (s *SessionService) Tags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.repomanager.Tags(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing tags: %w", err)
	}
	return tags, nil
}

func (s *SessionService) buildFilter(id models.Identity, args ListArgs) (models.SessionFilter, error) {
	f := models.SessionFilter{Past: args.Past, Now: s.now()}

	if args.Tag != nil {
		f.Tag = strings.TrimSpace(*args.Tag)
	}
	if args.Search != nil {
		f.Search = *args.Search
	}
	if args.DateGte != nil {
		t, err := timex.ParseBound(*args.DateGte, false)
		if err != nil {
			return f, fmt.Errorf("%w: dateGte: %v", common.ErrInvalidDate, err)
		}
		f.DateGte = &t
	}
	if args.DateLte != nil {
		t, err := timex.ParseBound(*args.DateLte, true)
		if err != nil {
			return f, fmt.Errorf("%w: dateLte: %v", common.ErrInvalidDate, err)
		}
		f.DateLte = &t
	}
	if args.MeOnly && id.IsAuthenticated() {
		owner := id.UserID
		f.OwnerID = &owner
	}
	return f, nil
}

func buildPageQuery(args ListArgs) (models.PageQuery, error) {
	q := models.PageQuery{Limit: DefaultPageSize}

	if args.First != nil && args.Last != nil {
		return q, fmt.Errorf("%w: first and last are mutually exclusive", common.ErrInvalidArgument)
	}

	size := args.First
	if args.Last != nil {
		size = args.Last
		q.Backward = true
	}
	if size != nil {
		if *size < 0 {
			return q, fmt.Errorf("%w: page size must not be negative", common.ErrInvalidArgument)
		}
		q.Limit = min(*size, MaxPageSize)
	}

	if args.After != nil {
		id, err := DecodeCursor(*args.After)
		if err != nil {
			return q, err
		}
		q.AfterID = id
	}
	if args.Before != nil {
		id, err := DecodeCursor(*args.Before)
		if err != nil {
			return q, err
		}
		q.BeforeID = id
	}
	return q, nil
}

// EncodeCursor returns the opaque connection cursor of a session id.
func EncodeCursor(id int64) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.FormatInt(id, 10)))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrInvalidCursor, err)
	}
	rest, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, common.ErrInvalidCursor
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrInvalidCursor
	}
	return id, nil
}
