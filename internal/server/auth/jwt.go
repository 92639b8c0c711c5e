// Package auth issues and verifies the HS256 access tokens handed out by
// the tokenAuth mutation.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user id in the standard subject claim plus the
// username and the original issue time, which survive token refreshes.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	OrigIat  int64  `json:"origIat"`
}

// Identity converts verified claims into a caller identity.
func (c *Claims) Identity() (models.Identity, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return models.Anonymous, common.ErrInvalidToken
	}
	return models.Identity{UserID: id, Username: c.Username}, nil
}

// GenerateToken signs a token for user valid for validityDuration from now.
// origIat is the issue time of the first token in a refresh chain; pass the
// zero time to start a new chain.
func GenerateToken(user *models.User, secretKey []byte, validityDuration time.Duration, origIat time.Time) (string, *Claims, error) {
	now := time.Now()
	if origIat.IsZero() {
		origIat = now
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Username: user.Username,
		OrigIat:  origIat.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

// ParseToken verifies signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired; any other problem wraps common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
