package rate

import "errors"

var (
	// ErrRateLimited means the caller exhausted its window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps counter store failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
