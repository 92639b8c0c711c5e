package services

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/dbx"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/tags"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/users"
)

// -------- test fakes --------

// memStore backs every fake repository. Errors keyed by operation name are
// returned instead of touching the store.
type memStore struct {
	users    []*models.User
	tags     []models.Tag
	sessions []*models.CoachingSession
	links    map[int64][]int64
	refresh  map[string]*models.RefreshToken
	nextID   int64

	errs map[string]error

	lastFilter models.SessionFilter
	lastPage   models.PageQuery
	listPage   *models.SessionPage
}

func newMemStore() *memStore {
	return &memStore{
		links:   map[int64][]int64{},
		refresh: map[string]*models.RefreshToken{},
		errs:    map[string]error{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type fakeRepoManager struct {
	store *memStore
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return &fakeUsersRepo{f.store} }
func (f *fakeRepoManager) Tags(dbx.DBTX) tags.Repository                { return &fakeTagsRepo{f.store} }
func (f *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return &fakeSessionsRepo{f.store} }
func (f *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return &fakeRefreshRepo{f.store}
}

type fakeUsersRepo struct{ s *memStore }

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if err := f.s.errs["users.Create"]; err != nil {
		return nil, err
	}
	u.ID = f.s.id()
	u.DateJoined = time.Now()
	f.s.users = append(f.s.users, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if err := f.s.errs["users.GetByUsername"]; err != nil {
		return nil, err
	}
	for _, u := range f.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if err := f.s.errs["users.ExistsByUsername"]; err != nil {
		return false, err
	}
	return slices.ContainsFunc(f.s.users, func(u *models.User) bool { return u.Username == username }), nil
}

func (f *fakeUsersRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return slices.ContainsFunc(f.s.users, func(u *models.User) bool { return u.Email == email }), nil
}

type fakeTagsRepo struct{ s *memStore }

func (f *fakeTagsRepo) GetOrCreate(_ context.Context, name string) (*models.Tag, error) {
	if err := f.s.errs["tags.GetOrCreate"]; err != nil {
		return nil, err
	}
	for _, t := range f.s.tags {
		if strings.EqualFold(t.Name, name) {
			return &t, nil
		}
	}
	t := models.Tag{ID: f.s.id(), Name: name}
	f.s.tags = append(f.s.tags, t)
	return &t, nil
}

func (f *fakeTagsRepo) List(context.Context) ([]models.Tag, error) {
	if err := f.s.errs["tags.List"]; err != nil {
		return nil, err
	}
	return append([]models.Tag{}, f.s.tags...), nil
}

type fakeSessionsRepo struct{ s *memStore }

func (f *fakeSessionsRepo) Create(_ context.Context, cs *models.CoachingSession) (*models.CoachingSession, error) {
	if err := f.s.errs["sessions.Create"]; err != nil {
		return nil, err
	}
	cs.ID = f.s.id()
	cs.CreatedAt = time.Now()
	cs.Date = cs.CreatedAt
	stored := *cs
	stored.Tags = nil
	f.s.sessions = append(f.s.sessions, &stored)
	return cs, nil
}

func (f *fakeSessionsRepo) AttachTags(_ context.Context, sessionID int64, tagIDs []int64) error {
	for _, id := range tagIDs {
		if !slices.Contains(f.s.links[sessionID], id) {
			f.s.links[sessionID] = append(f.s.links[sessionID], id)
		}
	}
	return nil
}

func (f *fakeSessionsRepo) ListByOwner(_ context.Context, ownerID int64, tagName string) ([]*models.CoachingSession, error) {
	if err := f.s.errs["sessions.ListByOwner"]; err != nil {
		return nil, err
	}
	result := []*models.CoachingSession{}
	for i := len(f.s.sessions) - 1; i >= 0; i-- {
		cs := f.s.sessions[i]
		if cs.UserID == nil || *cs.UserID != ownerID {
			continue
		}
		if tagName != "" && !f.hasTag(cs.ID, tagName) {
			continue
		}
		cp := *cs
		result = append(result, &cp)
	}
	return result, nil
}

func (f *fakeSessionsRepo) GetForOwner(_ context.Context, id int64, ownerID int64) (*models.CoachingSession, error) {
	for _, cs := range f.s.sessions {
		if cs.ID == id && cs.UserID != nil && *cs.UserID == ownerID {
			cp := *cs
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessionsRepo) List(_ context.Context, filter models.SessionFilter, page models.PageQuery) (*models.SessionPage, error) {
	if err := f.s.errs["sessions.List"]; err != nil {
		return nil, err
	}
	f.s.lastFilter, f.s.lastPage = filter, page
	if f.s.listPage != nil {
		return f.s.listPage, nil
	}
	return &models.SessionPage{Sessions: []*models.CoachingSession{}}, nil
}

func (f *fakeSessionsRepo) LoadTags(_ context.Context, list []*models.CoachingSession) error {
	if err := f.s.errs["sessions.LoadTags"]; err != nil {
		return err
	}
	for _, cs := range list {
		cs.Tags = []models.Tag{}
		for _, id := range f.s.links[cs.ID] {
			for _, t := range f.s.tags {
				if t.ID == id {
					cs.Tags = append(cs.Tags, t)
				}
			}
		}
	}
	return nil
}

func (f *fakeSessionsRepo) hasTag(sessionID int64, name string) bool {
	for _, id := range f.s.links[sessionID] {
		for _, t := range f.s.tags {
			if t.ID == id && strings.EqualFold(t.Name, name) {
				return true
			}
		}
	}
	return false
}

type fakeRefreshRepo struct{ s *memStore }

func (f *fakeRefreshRepo) Create(_ context.Context, userID int64, token string, expires time.Time) error {
	if err := f.s.errs["refresh.Create"]; err != nil {
		return err
	}
	f.s.refresh[token] = &models.RefreshToken{ID: f.s.id(), UserID: userID, Token: token, Expires: expires, CreatedAt: time.Now()}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := f.s.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if err := f.s.errs["refresh.Delete"]; err != nil {
		return err
	}
	delete(f.s.refresh, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, userID int64, now time.Time) error {
	for k, rt := range f.s.refresh {
		if rt.UserID == userID && rt.Expires.Before(now) {
			delete(f.s.refresh, k)
		}
	}
	return nil
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func ptr[T any](v T) *T { return &v }

var (
	alice = models.Identity{UserID: 1, Username: "alice"}
	bob   = models.Identity{UserID: 2, Username: "bob"}
)
