package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/promocanvas/pkg/cache"
	"github.com/matzehuels/promocanvas/pkg/observability"
)

// ImageCache maps identifiers to resolved images for the process lifetime.
//
// Decoded images live in memory. When a backing [cache.Cache] is set, the
// encoded source bytes are stored there too, so a cold process can rebuild
// an entry without touching the catalog. Entries are never evicted from
// memory. ImageCache is safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*ResolvedImage

	store   cache.Cache
	keyer   cache.Keyer
	catalog string
	ttl     time.Duration
	logger  *log.Logger
}

// CacheOptions configures the backing store of an [ImageCache].
type CacheOptions struct {
	// Store holds encoded source bytes. Nil disables the backing store.
	Store cache.Cache

	// Keyer builds store keys. Nil uses [cache.DefaultKeyer].
	Keyer cache.Keyer

	// Catalog namespaces store keys, usually the catalog host.
	Catalog string

	// TTL for store entries; 0 means no expiration.
	TTL time.Duration

	Logger *log.Logger
}

// NewImageCache creates an empty cache.
func NewImageCache(opts CacheOptions) *ImageCache {
	if opts.Store == nil {
		opts.Store = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return &ImageCache{
		images:  make(map[string]*ResolvedImage),
		store:   opts.Store,
		keyer:   opts.Keyer,
		catalog: opts.Catalog,
		ttl:     opts.TTL,
		logger:  opts.Logger,
	}
}

// storedImage is the JSON envelope kept in the backing store.
type storedImage struct {
	ID        string `json:"id"`
	SourceURL string `json:"source_url"`
	Data      []byte `json:"data"`
}

// Get returns the cached image for id. A store hit is decoded and promoted
// into memory. Store failures are logged and reported as misses.
func (c *ImageCache) Get(ctx context.Context, id string) (*ResolvedImage, bool) {
	hooks := observability.Cache()

	c.mu.RLock()
	img, ok := c.images[id]
	c.mu.RUnlock()
	if ok {
		hooks.OnCacheHit(ctx, "memory")
		return img, true
	}
	hooks.OnCacheMiss(ctx, "memory")

	data, ok, err := c.store.Get(ctx, c.keyer.ImageKey(c.catalog, id))
	if err != nil {
		c.logger.Warn("image store read failed", "id", id, "error", err)
		return nil, false
	}
	if !ok {
		hooks.OnCacheMiss(ctx, "store")
		return nil, false
	}

	var entry storedImage
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("corrupt image store entry", "id", id, "error", err)
		return nil, false
	}
	decoded, err := decodeImage(entry.Data)
	if err != nil {
		c.logger.Warn("corrupt image store entry", "id", id, "error", err)
		return nil, false
	}
	hooks.OnCacheHit(ctx, "store")

	img = &ResolvedImage{ID: id, SourceURL: entry.SourceURL, Image: decoded}
	return c.remember(img), true
}

// Put stores img (and its encoded source bytes, when non-nil) under img.ID.
// If another goroutine stored the identifier first, the existing entry wins
// and is returned.
func (c *ImageCache) Put(ctx context.Context, img *ResolvedImage, data []byte) *ResolvedImage {
	img = c.remember(img)
	observability.Cache().OnCacheSet(ctx, "memory", 0)

	if data == nil {
		return img
	}
	payload, err := json.Marshal(storedImage{ID: img.ID, SourceURL: img.SourceURL, Data: data})
	if err != nil {
		return img
	}
	if err := c.store.Set(ctx, c.keyer.ImageKey(c.catalog, img.ID), payload, c.ttl); err != nil {
		c.logger.Warn("image store write failed", "id", img.ID, "error", err)
		return img
	}
	observability.Cache().OnCacheSet(ctx, "store", len(payload))
	return img
}

// Len reports the number of images held in memory.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func (c *ImageCache) remember(img *ResolvedImage) *ResolvedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.images[img.ID]; ok {
		return existing
	}
	c.images[img.ID] = img
	return img
}
