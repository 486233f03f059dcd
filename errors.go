package goFieldOps

import "errors"

var (
	// ErrUnauthenticated is returned when a 401 could not be recovered. Stored
	// credentials have already been cleared when a caller observes it.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrRefreshFailed marks a failed refresh call (transport, status or decoding).
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrNoRefreshToken marks a 401 that arrived while no refresh token was stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrSessionClosed is returned by every operation after Close.
	ErrSessionClosed = errors.New("session closed")
	// ErrInvalidCredentials is returned by SetCredentials for an empty access token.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable wraps credential store failures.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
