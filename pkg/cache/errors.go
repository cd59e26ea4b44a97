package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by helpers that need a value and found none.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCorruptEntry is returned when a stored entry cannot be parsed.
	ErrCorruptEntry = errors.New("corrupt cache entry")

	// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)
