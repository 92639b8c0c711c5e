package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/server/services"
)

func (r *Resolver) TokenAuth(ctx context.Context, args struct{ Username, Password string }) (*tokenResolver, error) {
	pair, err := r.users.Login(ctx, args.Username, args.Password)
	if err != nil {
		return nil, r.fail(ctx, "tokenAuth", err)
	}
	return &tokenResolver{pair: pair, now: time.Now()}, nil
}

func (r *Resolver) VerifyToken(ctx context.Context, args struct{ Token string }) (*verifyResolver, error) {
	claims, err := r.users.VerifyToken(args.Token)
	if err != nil {
		return nil, r.fail(ctx, "verifyToken", err)
	}
	return &verifyResolver{c: claims}, nil
}

func (r *Resolver) RefreshToken(ctx context.Context, args struct{ RefreshToken string }) (*tokenResolver, error) {
	pair, err := r.users.RefreshToken(ctx, args.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &Error{Message: "Invalid refresh token", Code: CodeUnauthenticated}
		}
		return nil, r.fail(ctx, "refreshToken", err)
	}
	return &tokenResolver{pair: pair, now: time.Now()}, nil
}

func (r *Resolver) AskCoach(ctx context.Context, args struct {
	Question string
	TagNames *[]*string
}) (*askResolver, error) {
	return r.ask(ctx, "askCoach", args.Question, args.TagNames)
}

func (r *Resolver) AskOpenrouter(ctx context.Context, args struct {
	Prompt   string
	TagNames *[]*string
}) (*askResolver, error) {
	return r.ask(ctx, "askOpenrouter", args.Prompt, args.TagNames)
}

func (r *Resolver) ask(ctx context.Context, op, prompt string, tagNames *[]*string) (*askResolver, error) {
	var names []string
	if tagNames != nil {
		for _, n := range *tagNames {
			if n != nil {
				names = append(names, *n)
			}
		}
	}

	res, err := r.coaching.Ask(ctx, IdentityFrom(ctx), prompt, names)
	if err != nil {
		return nil, r.fail(ctx, op, err)
	}
	r.logger.Info(ctx, "session created", "op", op, "session_id", res.SessionID, "request_id", RequestIDFrom(ctx))
	return &askResolver{res: res}, nil
}

type registerUserArgs struct {
	Username  string
	Password  string
	Email     string
	FirstName *string
	LastName  *string
}

func (r *Resolver) RegisterUser(ctx context.Context, args registerUserArgs) (*registerResolver, error) {
	in := services.RegisterInput{
		Username: args.Username,
		Password: args.Password,
		Email:    args.Email,
	}
	if args.FirstName != nil {
		in.FirstName = *args.FirstName
	}
	if args.LastName != nil {
		in.LastName = *args.LastName
	}

	res, err := r.users.Register(ctx, in)
	if err != nil {
		return nil, r.fail(ctx, "registerUser", err)
	}
	return &registerResolver{res: res}, nil
}
