// Package graphql exposes the coaching API as a GraphQL schema served over
// HTTP by gin.
package graphql

import (
	"context"
	_ "embed"

	"github.com/dmitrijs2005/gophcoach/internal/logging"
	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 10

// NewSchema parses the embedded SDL and binds it to r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{r.logger}),
	)
}

// panicLogger routes resolver panics recovered by the executor to our logger.
type panicLogger struct {
	logger logging.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.Error(ctx, "graphql resolver panic", "panic", value, "request_id", RequestIDFrom(ctx))
}
