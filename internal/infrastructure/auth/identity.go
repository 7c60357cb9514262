// Package auth resolves bearer tokens into record ownership. Identity
// is an opaque nullable attribute: a missing or invalid token yields a
// nil ownership rather than an error, and nothing downstream gates on
// it.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dashfin/finmirror/internal/domain"
)

// Claims are the token claims carrying ownership.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier parses bearer tokens into ownership.
type TokenVerifier struct {
	secretKey []byte
}

// NewTokenVerifier creates a new TokenVerifier. An empty secret
// disables verification: every token resolves to nil ownership.
func NewTokenVerifier(secretKey string) *TokenVerifier {
	return &TokenVerifier{secretKey: []byte(secretKey)}
}

// Generate issues a signed token for the given ownership.
func (v *TokenVerifier) Generate(owner domain.Ownership, ttl time.Duration) (string, error) {
	claims := Claims{
		UID:   owner.UID,
		Email: owner.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secretKey)
}

// Verify resolves a token string into ownership. It returns nil for
// empty, expired, malformed or foreign-signed tokens.
func (v *TokenVerifier) Verify(tokenString string) *domain.Ownership {
	if tokenString == "" || len(v.secretKey) == 0 {
		return nil
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secretKey, nil
		},
	)
	if err != nil {
		return nil
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil
	}

	return &domain.Ownership{UID: claims.UID, Email: claims.Email}
}
