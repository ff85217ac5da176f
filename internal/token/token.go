// Package token issues and verifies signed session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"petconnect/internal/model"
)

// TTL is the fixed session lifetime. Tokens are not refreshed.
const TTL = 7 * 24 * time.Hour

// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity snapshot embedded at issuance time. The plan fields
// are a snapshot: they can go stale relative to the credential store until the
// user logs in again. Verification deliberately does not hit the store.
type Claims struct {
	Name    string      `json:"name"`
	Email   *string     `json:"email,omitempty"`
	Phone   *string     `json:"phone,omitempty"`
	Plan    model.Plan  `json:"plan"`
	PlanEnd *time.Time  `json:"plan_end,omitempty"`
	Role    model.Role  `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// Sign issues an HS256 session token embedding a snapshot of the user.
func Sign(u *model.User, secret string, now time.Time) (string, error) {
	claims := &Claims{
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Plan:    u.Plan,
		PlanEnd: u.PlanEnd,
		Role:    u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry only and returns the embedded claims.
func Verify(raw, secret string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
