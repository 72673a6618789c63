package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/bazaarhq/checkout/pkg/errors"
	"github.com/bazaarhq/checkout/pkg/middleware"
)

// claims is the token payload issued by the identity service.
type claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Validator parses and verifies HS256 bearer tokens.
type Validator struct {
	secret []byte
}

// NewValidator creates a token validator with the shared signing secret.
func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// Validate checks the token's signature and expiry and extracts the caller
// identity. It satisfies middleware.TokenValidator.
func (v *Validator) Validate(tokenString string) (*middleware.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	if c.UserID == "" || c.Role == "" {
		return nil, apperrors.Unauthorized("token missing identity claims")
	}

	return &middleware.Claims{UserID: c.UserID, Role: c.Role}, nil
}

// IssueToken signs a token for the given identity. Used by tests and local
// tooling; production tokens come from the identity service.
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(secret))
}
