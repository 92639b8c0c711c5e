// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/dbx"
	"github.com/dmitrijs2005/gophcoach/internal/server/auth"
	"github.com/dmitrijs2005/gophcoach/internal/server/config"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// Registration validation messages.
const (
	MsgUsernameExists = "Username already exists."
	MsgEmailExists    = "Email already exists."
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken    string
	Claims         *auth.Claims
	RefreshToken   string
	RefreshExpires time.Time
}

type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// RegisterResult holds either the created user or the validation messages
// that prevented its creation.
type RegisterResult struct {
	User   *models.User
	Errors []string
}

func (r *RegisterResult) Success() bool {
	return len(r.Errors) == 0
}

// UserService provides authentication-related operations:
// - Register: validate and create users
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	dummyHash                    func() []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	s := &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   bcrypt.DefaultCost,
	}
	// Compared against when the username is unknown so that both failure
	// paths cost one bcrypt comparison.
	s.dummyHash = sync.OnceValue(func() []byte {
		h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
		return h
	})
	return s
}

// Register checks username and email independently and reports every
// violation. A concurrent registration that slips past the checks is caught
// by the unique constraints and reported the same way.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	repo := s.repomanager.Users(s.db)

	result := &RegisterResult{}

	exists, err := repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if exists {
		result.Errors = append(result.Errors, MsgUsernameExists)
	}

	exists, err = repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		result.Errors = append(result.Errors, MsgEmailExists)
	}

	if !result.Success() {
		return result, nil
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	switch {
	case errors.Is(err, users.ErrUsernameExists):
		result.Errors = append(result.Errors, MsgUsernameExists)
		return result, nil
	case errors.Is(err, users.ErrEmailExists):
		result.Errors = append(result.Errors, MsgEmailExists)
		return result, nil
	case err != nil:
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	result.User = user
	return result, nil
}

// Login verifies username and password and, on success, returns a new
// TokenPair. Unknown users and wrong passwords both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).DeleteExpired(ctx, user.ID, time.Now()); err != nil {
			return common.ErrorInternal
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// VerifyToken returns the claims of a valid access token.
func (s *UserService) VerifyToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// Authenticate maps a bearer token to a caller identity. Missing, invalid
// and expired tokens all yield the anonymous identity.
func (s *UserService) Authenticate(token string) models.Identity {
	if token == "" {
		return models.Anonymous
	}
	claims, err := s.VerifyToken(token)
	if err != nil {
		return models.Anonymous
	}
	id, err := claims.Identity()
	if err != nil {
		return models.Anonymous
	}
	return id
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		_ = repo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// GetUser returns the user with the given id or common.ErrorNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	return hash, nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash []byte, password string) bool {
	return len(hash) > 0 && bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// --- helpers below ---

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

// generateTokenPair signs an access token and stores a new refresh token
// through tx.
func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, claims, err := auth.GenerateToken(user, s.jwtSecret, s.accessTokenValidityDuration, time.Time{})
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	expires := time.Now().Add(s.refreshTokenValidityDuration)
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, expires); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, Claims: claims, RefreshToken: refresh, RefreshExpires: expires}, nil
}
