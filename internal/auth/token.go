// Package auth issues and verifies session tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"conduit/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "conduit-api"
	Audience = "conduit-client"
)

// ErrInvalidToken covers every rejected token; callers should not leak the cause.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer with the given secret and token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a token whose subject is the user ID.
func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := i.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"email":    user.Email,
		"iss":      Issuer,
		"aud":      Audience,
		"exp":      now.Add(i.ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates tokenString and returns the user ID it was issued for.
func (i *TokenIssuer) Parse(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}

// BearerToken extracts the token from an Authorization header value. Both
// "Bearer" and the legacy "Token" schemes are accepted.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	if parts[0] != "Bearer" && parts[0] != "Token" {
		return "", false
	}
	return parts[1], true
}

// generateJTI creates a unique token ID.
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
