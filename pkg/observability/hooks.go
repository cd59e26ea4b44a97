// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about compositions, image cache lookups and
// outgoing HTTP calls.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCompositionHooks(&myHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Composition().OnFetchStart(ctx, id)
//	// ... acquire image ...
//	observability.Composition().OnFetchComplete(ctx, id, found, attempts, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Composition Hooks
// =============================================================================

// CompositionHooks receives events from the fetch -> layout -> render pipeline.
type CompositionHooks interface {
	// Fetch events, once per requested identifier
	OnFetchStart(ctx context.Context, id string)
	OnFetchComplete(ctx context.Context, id string, found bool, attempts int, duration time.Duration)

	// Render events, once per composition
	OnRenderComplete(ctx context.Context, placements int, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from image cache operations. layer is "memory"
// or "store" (the persistent byte cache).
type CacheHooks interface {
	OnCacheHit(ctx context.Context, layer string)
	OnCacheMiss(ctx context.Context, layer string)
	OnCacheSet(ctx context.Context, layer string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCompositionHooks is a no-op implementation of CompositionHooks.
type NoopCompositionHooks struct{}

func (NoopCompositionHooks) OnFetchStart(context.Context, string) {}
func (NoopCompositionHooks) OnFetchComplete(context.Context, string, bool, int, time.Duration) {
}
func (NoopCompositionHooks) OnRenderComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	compositionHooks CompositionHooks = NoopCompositionHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	httpHooks        HTTPHooks        = NoopHTTPHooks{}
	hooksMu          sync.RWMutex
)

// SetCompositionHooks registers custom composition hooks.
// This should be called once at application startup.
func SetCompositionHooks(h CompositionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		compositionHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Composition returns the registered composition hooks.
func Composition() CompositionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return compositionHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	compositionHooks = NoopCompositionHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
