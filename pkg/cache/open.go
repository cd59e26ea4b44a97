package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend   string
	Dir       string // file backend
	RedisAddr string // redis backend
	Password  string // redis backend
	Prefix    string // redis backend
}

// Open builds the byte cache named by opts.Backend. "none", "memory" and the
// empty string all return a [NullCache]: memory caching is always done by the
// image cache itself.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone, BackendMemory:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		return NewRedisCache(ctx, RedisConfig{Addr: opts.RedisAddr, Password: opts.Password, Prefix: opts.Prefix})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
