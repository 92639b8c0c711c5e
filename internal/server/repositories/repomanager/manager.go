package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophcoach/internal/dbx"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/tags"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tags(db dbx.DBTX) tags.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
