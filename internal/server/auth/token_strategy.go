package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the user id in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenStrategy issues signed JWTs. It keeps no server-side state.
type TokenStrategy struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenStrategy(secretKey []byte, ttl time.Duration) *TokenStrategy {
	return &TokenStrategy{secretKey: secretKey, ttl: ttl, now: time.Now}
}

func (s *TokenStrategy) Issue(_ context.Context, userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *TokenStrategy) Verify(_ context.Context, credential string) (string, error) {
	if credential == "" {
		return "", common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims,
		func(t *jwt.Token) (any, error) {
			return s.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}

// Revoke is a no-op: a signed token stays valid until it expires. Clients
// drop it by clearing the cookie.
func (s *TokenStrategy) Revoke(context.Context, string) error {
	return nil
}
