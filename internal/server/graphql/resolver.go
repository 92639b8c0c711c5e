package graphql

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/logging"
	"github.com/dmitrijs2005/gophcoach/internal/server/auth"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/dmitrijs2005/gophcoach/internal/server/services"
	"github.com/graph-gophers/graphql-go"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	VerifyToken(token string) (*auth.Claims, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(token string) models.Identity
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type SessionService interface {
	ListMine(ctx context.Context, id models.Identity) ([]*models.CoachingSession, error)
	ListMineByTag(ctx context.Context, id models.Identity, tagName string) ([]*models.CoachingSession, error)
	Get(ctx context.Context, id models.Identity, sessionID int64) (*models.CoachingSession, error)
	List(ctx context.Context, id models.Identity, args services.ListArgs) (*models.SessionPage, error)
	Tags(ctx context.Context) ([]models.Tag, error)
}

type CoachingService interface {
	Ask(ctx context.Context, id models.Identity, prompt string, tagNames []string) (*services.AskResult, error)
}

// Resolver is the root of both the Query and the Mutation type. The caller
// identity is read from the request context and handed to services
// explicitly.
type Resolver struct {
	users    UserService
	sessions SessionService
	coaching CoachingService
	logger   logging.Logger
}

func NewResolver(us UserService, ss SessionService, cs CoachingService, l logging.Logger) *Resolver {
	return &Resolver{
		users:    us,
		sessions: ss,
		coaching: cs,
		logger:   l.With("module", "graphql"),
	}
}

type coachingSessionsArgs struct {
	Past    *bool
	Tag     *string
	Search  *string
	DateGte *string
	DateLte *string
	MeOnly  *bool
	First   *int32
	After   *string
	Last    *int32
	Before  *string
}

func (r *Resolver) CoachingSessions(ctx context.Context, args coachingSessionsArgs) (*connectionResolver, error) {
	la := services.ListArgs{
		Past:    args.Past,
		Tag:     args.Tag,
		Search:  args.Search,
		DateGte: args.DateGte,
		DateLte: args.DateLte,
		MeOnly:  args.MeOnly != nil && *args.MeOnly,
		After:   args.After,
		Before:  args.Before,
	}
	if args.First != nil {
		n := int(*args.First)
		la.First = &n
	}
	if args.Last != nil {
		n := int(*args.Last)
		la.Last = &n
	}

	page, err := r.sessions.List(ctx, IdentityFrom(ctx), la)
	if err != nil {
		return nil, r.fail(ctx, "coachingSessions", err)
	}
	return &connectionResolver{root: r, page: page}, nil
}

func (r *Resolver) MySessions(ctx context.Context) ([]*sessionResolver, error) {
	list, err := r.sessions.ListMine(ctx, IdentityFrom(ctx))
	if err != nil {
		return nil, r.fail(ctx, "mySessions", err)
	}
	return r.wrapSessions(list), nil
}

// Session resolves to null for ids that are malformed, missing or owned
// by someone else.
func (r *Resolver) Session(ctx context.Context, args struct{ ID graphql.ID }) (*sessionResolver, error) {
	id, err := strconv.ParseInt(string(args.ID), 10, 64)
	if err != nil {
		return nil, nil
	}
	s, err := r.sessions.Get(ctx, IdentityFrom(ctx), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, r.fail(ctx, "session", err)
	}
	return &sessionResolver{root: r, s: s}, nil
}

func (r *Resolver) SessionsByTag(ctx context.Context, args struct{ TagName string }) ([]*sessionResolver, error) {
	list, err := r.sessions.ListMineByTag(ctx, IdentityFrom(ctx), args.TagName)
	if err != nil {
		return nil, r.fail(ctx, "sessionsByTag", err)
	}
	return r.wrapSessions(list), nil
}

func (r *Resolver) Tags(ctx context.Context) ([]*tagResolver, error) {
	list, err := r.sessions.Tags(ctx)
	if err != nil {
		return nil, r.fail(ctx, "tags", err)
	}
	result := make([]*tagResolver, len(list))
	for i, t := range list {
		result[i] = &tagResolver{t: t}
	}
	return result, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID int32 }) (*userResolver, error) {
	return r.lookupUser(ctx, "user", int64(args.ID))
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	id := IdentityFrom(ctx)
	if !id.IsAuthenticated() {
		return nil, nil
	}
	return r.lookupUser(ctx, "me", id.UserID)
}

func (r *Resolver) lookupUser(ctx context.Context, op string, id int64) (*userResolver, error) {
	u, err := r.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, r.fail(ctx, op, err)
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) wrapSessions(list []*models.CoachingSession) []*sessionResolver {
	result := make([]*sessionResolver, len(list))
	for i, s := range list {
		result[i] = &sessionResolver{root: r, s: s}
	}
	return result
}
