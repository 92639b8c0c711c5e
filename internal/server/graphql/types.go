package graphql

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/server/auth"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/dmitrijs2005/gophcoach/internal/server/services"
	"github.com/graph-gophers/graphql-go"
)

func toID(id int64) graphql.ID {
	return graphql.ID(strconv.FormatInt(id, 10))
}

type sessionResolver struct {
	root *Resolver
	s    *models.CoachingSession
}

func (r *sessionResolver) ID() graphql.ID          { return toID(r.s.ID) }
func (r *sessionResolver) Title() string           { return r.s.Title }
func (r *sessionResolver) Prompt() string          { return r.s.Prompt }
func (r *sessionResolver) Response() string        { return r.s.Response }
func (r *sessionResolver) Date() graphql.Time      { return graphql.Time{Time: r.s.Date} }
func (r *sessionResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.s.CreatedAt} }

func (r *sessionResolver) User(ctx context.Context) (*userResolver, error) {
	if r.s.UserID == nil {
		return nil, nil
	}
	return r.root.lookupUser(ctx, "session.user", *r.s.UserID)
}

func (r *sessionResolver) Tags() []*tagResolver {
	result := make([]*tagResolver, len(r.s.Tags))
	for i, t := range r.s.Tags {
		result[i] = &tagResolver{t: t}
	}
	return result
}

type connectionResolver struct {
	root *Resolver
	page *models.SessionPage
}

func (r *connectionResolver) Edges() []*edgeResolver {
	result := make([]*edgeResolver, len(r.page.Sessions))
	for i, s := range r.page.Sessions {
		result[i] = &edgeResolver{node: &sessionResolver{root: r.root, s: s}}
	}
	return result
}

func (r *connectionResolver) PageInfo() *pageInfoResolver {
	return &pageInfoResolver{page: r.page}
}

func (r *connectionResolver) TotalCount() int32 {
	return int32(r.page.TotalCount)
}

type edgeResolver struct {
	node *sessionResolver
}

func (r *edgeResolver) Node() *sessionResolver { return r.node }
func (r *edgeResolver) Cursor() string         { return services.EncodeCursor(r.node.s.ID) }

type pageInfoResolver struct {
	page *models.SessionPage
}

func (r *pageInfoResolver) HasNextPage() bool     { return r.page.HasNextPage }
func (r *pageInfoResolver) HasPreviousPage() bool { return r.page.HasPreviousPage }

func (r *pageInfoResolver) StartCursor() *string {
	if len(r.page.Sessions) == 0 {
		return nil
	}
	c := services.EncodeCursor(r.page.Sessions[0].ID)
	return &c
}

func (r *pageInfoResolver) EndCursor() *string {
	if len(r.page.Sessions) == 0 {
		return nil
	}
	c := services.EncodeCursor(r.page.Sessions[len(r.page.Sessions)-1].ID)
	return &c
}

type tagResolver struct {
	t models.Tag
}

func (r *tagResolver) ID() graphql.ID { return toID(r.t.ID) }
func (r *tagResolver) Name() string   { return r.t.Name }

// userResolver never exposes the password hash.
type userResolver struct {
	u *models.User
}

func (r *userResolver) ID() graphql.ID           { return toID(r.u.ID) }
func (r *userResolver) Username() string         { return r.u.Username }
func (r *userResolver) Email() string            { return r.u.Email }
func (r *userResolver) FirstName() string        { return r.u.FirstName }
func (r *userResolver) LastName() string         { return r.u.LastName }
func (r *userResolver) IsStaff() bool            { return r.u.IsStaff }
func (r *userResolver) DateJoined() graphql.Time { return graphql.Time{Time: r.u.DateJoined} }

type payloadResolver struct {
	c *auth.Claims
}

func (r *payloadResolver) Username() string { return r.c.Username }

func (r *payloadResolver) Exp() float64 {
	if r.c.ExpiresAt == nil {
		return 0
	}
	return float64(r.c.ExpiresAt.Unix())
}

func (r *payloadResolver) OrigIat() float64 { return float64(r.c.OrigIat) }

// tokenResolver backs both ObtainJSONWebToken and Refresh.
type tokenResolver struct {
	pair *services.TokenPair
	now  time.Time
}

func (r *tokenResolver) Token() string             { return r.pair.AccessToken }
func (r *tokenResolver) Payload() *payloadResolver { return &payloadResolver{c: r.pair.Claims} }
func (r *tokenResolver) RefreshToken() string      { return r.pair.RefreshToken }
func (r *tokenResolver) RefreshExpiresIn() int32 {
	return int32(r.pair.RefreshExpires.Sub(r.now) / time.Second)
}

type verifyResolver struct {
	c *auth.Claims
}

func (r *verifyResolver) Payload() *payloadResolver { return &payloadResolver{c: r.c} }

// askResolver backs both AskCoach and AskOpenrouter.
type askResolver struct {
	res *services.AskResult
}

func (r *askResolver) Response() string      { return r.res.Response }
func (r *askResolver) SessionID() graphql.ID { return toID(r.res.SessionID) }

type registerResolver struct {
	res *services.RegisterResult
}

func (r *registerResolver) User() *userResolver {
	if r.res.User == nil {
		return nil
	}
	return &userResolver{u: r.res.User}
}

func (r *registerResolver) Success() bool { return r.res.Success() }

func (r *registerResolver) Errors() *[]string {
	if r.res.Success() {
		return nil
	}
	return &r.res.Errors
}
