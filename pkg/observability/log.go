package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// [CompositionHooks], [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	Logger *log.Logger
}

// RegisterLogHooks installs LogHooks for all three event families.
func RegisterLogHooks(logger *log.Logger) {
	h := LogHooks{Logger: logger}
	SetCompositionHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnFetchStart(_ context.Context, id string) {
	h.Logger.Debug("fetch start", "id", id)
}

func (h LogHooks) OnFetchComplete(_ context.Context, id string, found bool, attempts int, d time.Duration) {
	h.Logger.Debug("fetch complete", "id", id, "found", found, "attempts", attempts, "duration", d.Round(time.Millisecond))
}

func (h LogHooks) OnRenderComplete(_ context.Context, placements, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "placements", placements, "error", err)
		return
	}
	h.Logger.Debug("render complete", "placements", placements, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h LogHooks) OnCacheHit(_ context.Context, layer string) {
	h.Logger.Debug("image cache hit", "layer", layer)
}

func (h LogHooks) OnCacheMiss(_ context.Context, layer string) {
	h.Logger.Debug("image cache miss", "layer", layer)
}

func (h LogHooks) OnCacheSet(_ context.Context, layer string, size int) {
	h.Logger.Debug("image cache set", "layer", layer, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
