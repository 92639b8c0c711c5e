package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/dbx"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate inserts first and only reads when the insert hit the unique
// index. ON CONFLICT keeps the surrounding transaction usable, which a
// failed plain INSERT would not.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	insert := `
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT DO NOTHING
		RETURNING id, name
	`
	tag := &models.Tag{}
	err := r.db.QueryRowContext(ctx, insert, name).Scan(&tag.ID, &tag.Name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	selectExisting := `SELECT id, name FROM tags WHERE lower(name) = lower($1)`
	if err := r.db.QueryRowContext(ctx, selectExisting, name).Scan(&tag.ID, &tag.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The conflicting row was deleted between the two statements.
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tag, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
