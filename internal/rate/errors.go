package rate

import "errors"

var (
	// ErrRateLimited indicates the counter for a key exceeded its budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps transport-level Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
