package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs the image cache when persistence is
// disabled (--no-cache, backend "none" or "memory"); decoded images are
// still kept in memory by the image cache itself.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
