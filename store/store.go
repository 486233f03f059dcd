package store

import (
	"context"
	"errors"
)

// Persisted key names. They match the keys the web client kept in local storage.
const (
	KeyAccessToken  = "authToken"
	KeyRefreshToken = "refreshToken"
)

// ErrUnavailable wraps backend failures (I/O, Redis connectivity, decoding).
var ErrUnavailable = errors.New("credential store unavailable")

// Credentials is the pair persisted under KeyAccessToken and KeyRefreshToken.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no access token is present.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// Store is a durable key-value home for one credential pair.
//
// Load returns zero Credentials and a nil error when nothing is stored.
// Save with an empty RefreshToken removes any stored refresh token.
// Clear is idempotent.
type Store interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}
