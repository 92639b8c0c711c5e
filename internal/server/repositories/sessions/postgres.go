package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/dbx"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
)

const (
	sessionColumns = `s.id, s.user_id, s.title, s.prompt, s.response, s.date, s.created_at`

	tagPredicate = `EXISTS (
		SELECT 1 FROM coaching_session_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.session_id = s.id AND lower(t.name) = lower(%s))`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.CoachingSession) (*models.CoachingSession, error) {
	query := `
		INSERT INTO coaching_sessions (user_id, title, prompt, response)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date, created_at
	`
	var owner sql.NullInt64
	if session.UserID != nil {
		owner = sql.NullInt64{Int64: *session.UserID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, owner, session.Title, session.Prompt, session.Response).
		Scan(&session.ID, &session.Date, &session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) AttachTags(ctx context.Context, sessionID int64, tagIDs []int64) error {
	query := `
		INSERT INTO coaching_session_tags (session_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, tagID := range tagIDs {
		if _, err := r.db.ExecContext(ctx, query, sessionID, tagID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64, tagName string) ([]*models.CoachingSession, error) {
	w := &where{}
	// Ownership goes first and is never optional.
	w.add("s.user_id = %s", ownerID)
	if tagName != "" {
		w.add(tagPredicate, tagName)
	}

	query := `SELECT ` + sessionColumns + ` FROM coaching_sessions s` + w.sql() +
		` ORDER BY s.created_at DESC, s.id DESC`

	return r.query(ctx, query, w.args...)
}

func (r *PostgresRepository) GetForOwner(ctx context.Context, id int64, ownerID int64) (*models.CoachingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM coaching_sessions s WHERE s.id = $1 AND s.user_id = $2`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.SessionFilter, page models.PageQuery) (*models.SessionPage, error) {
	w := filterWhere(filter)

	var total int
	countQuery := `SELECT count(*) FROM coaching_sessions s` + w.sql()
	if err := r.db.QueryRowContext(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	pw := w.clone()
	if page.AfterID > 0 {
		pw.add("s.id < %s", page.AfterID)
	}
	if page.BeforeID > 0 {
		pw.add("s.id > %s", page.BeforeID)
	}

	order := "DESC"
	if page.Backward {
		order = "ASC"
	}
	pw.args = append(pw.args, page.Limit+1)
	pageQuery := fmt.Sprintf(`SELECT %s FROM coaching_sessions s%s ORDER BY s.id %s LIMIT $%d`,
		sessionColumns, pw.sql(), order, len(pw.args))

	items, err := r.query(ctx, pageQuery, pw.args...)
	if err != nil {
		return nil, err
	}

	result := &models.SessionPage{TotalCount: total}
	extra := len(items) > page.Limit
	if extra {
		items = items[:page.Limit]
	}

	if page.Backward {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		result.HasPreviousPage = extra
		result.HasNextPage = page.BeforeID > 0
	} else {
		result.HasNextPage = extra
		result.HasPreviousPage = page.AfterID > 0
	}
	result.Sessions = items

	return result, nil
}

func filterWhere(f models.SessionFilter) *where {
	w := &where{}
	if f.OwnerID != nil {
		w.add("s.user_id = %s", *f.OwnerID)
	}
	if f.Past != nil {
		if *f.Past {
			w.add("s.date < %s", f.Now)
		} else {
			w.add("s.date >= %s", f.Now)
		}
	}
	if f.Tag != "" {
		w.add(tagPredicate, f.Tag)
	}
	if f.Search != "" {
		w.add(`s.title ILIKE ('%%' || %s || '%%') ESCAPE '\'`, escapeLike(f.Search))
	}
	if f.DateGte != nil {
		w.add("s.date >= %s", *f.DateGte)
	}
	if f.DateLte != nil {
		w.add("s.date <= %s", *f.DateLte)
	}
	return w
}

func (r *PostgresRepository) LoadTags(ctx context.Context, sessions []*models.CoachingSession) error {
	if len(sessions) == 0 {
		return nil
	}

	byID := make(map[int64]*models.CoachingSession, len(sessions))
	ids := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		s.Tags = []models.Tag{}
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	query := `
		SELECT st.session_id, t.id, t.name
		FROM coaching_session_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.session_id = ANY($1)
		ORDER BY t.id
	`
	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID int64
		var tag models.Tag
		if err := rows.Scan(&sessionID, &tag.ID, &tag.Name); err != nil {
			return err
		}
		if s, ok := byID[sessionID]; ok {
			s.Tags = append(s.Tags, tag)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.CoachingSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.CoachingSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.CoachingSession, error) {
	var s models.CoachingSession
	var owner sql.NullInt64
	if err := row.Scan(&s.ID, &owner, &s.Title, &s.Prompt, &s.Response, &s.Date, &s.CreatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		id := owner.Int64
		s.UserID = &id
	}
	return &s, nil
}
