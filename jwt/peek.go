package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Peeked is what a token holder can learn without the verification key.
// None of it is trusted; it only drives client-side display.
type Peeked struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp is at or before now. A token
// without exp never expires client-side.
func (p Peeked) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Peek decodes token claims without verifying the signature. Opaque
// (non-JWT) tokens return an error.
func Peek(token string) (Peeked, error) {
	if token == "" {
		return Peeked{}, errors.New("empty token")
	}

	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Peeked{}, err
	}

	p := Peeked{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if p.Subject == "" {
		p.Subject = claims.UID
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
