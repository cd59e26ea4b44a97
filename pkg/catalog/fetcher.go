package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/httputil"
	"github.com/matzehuels/promocanvas/pkg/integrations"
	"github.com/matzehuels/promocanvas/pkg/observability"
)

// Defaults applied by [Config.withDefaults].
const (
	DefaultDetailURL    = "https://www.amazon.es/dp/%s"
	DefaultAttempts     = 3
	MaxAttempts         = 5
	DefaultRetryDelay   = 1500 * time.Millisecond
	DefaultMinImageSize = 100
)

// Config controls how a [Fetcher] talks to the catalog.
type Config struct {
	// DetailURL is a template with one %s for the path-escaped identifier.
	DetailURL string

	// UserAgent overrides [integrations.BrowserUserAgent].
	UserAgent string

	// Attempts per identifier, clamped to [1, MaxAttempts].
	Attempts int

	// RetryDelay is the fixed wait between failed attempts. Zero means
	// DefaultRetryDelay; a negative value disables the wait. There is no
	// wait after the final attempt.
	RetryDelay time.Duration

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MinImageSize rejects images whose width and height are both smaller.
	MinImageSize int

	// Extractors replaces [DefaultExtractors] when non-empty.
	Extractors []Extractor

	// HTTPClient replaces the default client (tests).
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.DetailURL == "" {
		c.DetailURL = DefaultDetailURL
	}
	switch {
	case c.Attempts <= 0:
		c.Attempts = DefaultAttempts
	case c.Attempts > MaxAttempts:
		c.Attempts = MaxAttempts
	}
	switch {
	case c.RetryDelay == 0:
		c.RetryDelay = DefaultRetryDelay
	case c.RetryDelay < 0:
		c.RetryDelay = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = integrations.DefaultTimeout
	}
	if c.MinImageSize <= 0 {
		c.MinImageSize = DefaultMinImageSize
	}
	if len(c.Extractors) == 0 {
		c.Extractors = DefaultExtractors()
	}
	return c
}

// Host returns the catalog host of the detail URL template, used to
// namespace persistent cache keys.
func (c Config) Host() string {
	tmpl := c.DetailURL
	if tmpl == "" {
		tmpl = DefaultDetailURL
	}
	u, err := url.Parse(fmt.Sprintf(tmpl, "x"))
	if err != nil {
		return ""
	}
	return u.Host
}

// Fetcher resolves identifiers to images. It is safe for concurrent use;
// concurrent fetches of the same identifier share one acquisition.
type Fetcher struct {
	cfg    Config
	cache  *ImageCache
	client *integrations.Client
	logger *log.Logger
	group  singleflight.Group
}

// NewFetcher creates a fetcher. A nil cache gets a fresh memory-only
// [ImageCache]; a nil logger discards output.
func NewFetcher(cfg Config, cache *ImageCache, logger *log.Logger) *Fetcher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = discardLogger()
	}
	if cache == nil {
		cache = NewImageCache(CacheOptions{Catalog: cfg.Host(), Logger: logger})
	}
	client := integrations.NewClient(cfg.Timeout, integrations.BrowserHeaders(cfg.UserAgent))
	if cfg.HTTPClient != nil {
		client.WithHTTPClient(cfg.HTTPClient)
	}
	return &Fetcher{cfg: cfg, cache: cache, client: client, logger: logger}
}

// Cache returns the fetcher's image cache.
func (f *Fetcher) Cache() *ImageCache { return f.cache }

// Attempts returns the effective attempt budget.
func (f *Fetcher) Attempts() int { return f.cfg.Attempts }

// Fetch resolves id to an image. The bool is false when no qualifying image
// could be obtained within the attempt budget; no error is ever returned.
// A cache hit performs no network I/O.
func (f *Fetcher) Fetch(ctx context.Context, id string) (*ResolvedImage, bool) {
	if img, ok := f.cache.Get(ctx, id); ok {
		return img, true
	}

	v, _, _ := f.group.Do(id, func() (any, error) {
		// A concurrent call may have filled the cache while we waited.
		if img, ok := f.cache.Get(ctx, id); ok {
			return img, nil
		}
		return f.acquire(ctx, id), nil
	})
	img, _ := v.(*ResolvedImage)
	return img, img != nil
}

func (f *Fetcher) acquire(ctx context.Context, id string) *ResolvedImage {
	hooks := observability.Composition()
	hooks.OnFetchStart(ctx, id)
	start := time.Now()

	if err := errors.ValidateIdentifier(id); err != nil {
		f.logger.Warn("skipping invalid identifier", "id", id, "error", err)
		hooks.OnFetchComplete(ctx, id, false, 0, time.Since(start))
		return nil
	}

	var (
		img      *ResolvedImage
		data     []byte
		attempts int
	)
	policy := httputil.FixedPolicy(f.cfg.Attempts, f.cfg.RetryDelay)
	err := httputil.Retry(ctx, policy, func(attempt int) error {
		attempts = attempt
		var err error
		img, data, err = f.attempt(ctx, id)
		if err != nil {
			f.logger.Debug("fetch attempt failed", "id", id, "attempt", attempt, "error", err)
			if errors.IsFatal(err) {
				return err
			}
			return httputil.Retryable(err)
		}
		return nil
	})
	if err != nil {
		f.logger.Warn("no image resolved", "id", id, "attempts", attempts, "error", err)
		hooks.OnFetchComplete(ctx, id, false, attempts, time.Since(start))
		return nil
	}

	img = f.cache.Put(ctx, img, data)
	f.logger.Debug("image resolved", "id", id, "url", img.SourceURL,
		"width", img.Width(), "height", img.Height(), "attempts", attempts)
	hooks.OnFetchComplete(ctx, id, true, attempts, time.Since(start))
	return img
}

// attempt performs one detail page fetch and walks the candidates.
func (f *Fetcher) attempt(ctx context.Context, id string) (*ResolvedImage, []byte, error) {
	detailURL := fmt.Sprintf(f.cfg.DetailURL, url.PathEscape(id))
	page, err := f.client.GetBytes(ctx, detailURL, nil)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeAcquisition, err, "detail page %s", detailURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeAcquisition, err, "parse detail page")
	}
	base, _ := url.Parse(detailURL)

	candidates := Candidates(doc, f.cfg.Extractors, base)
	if len(candidates) == 0 {
		return nil, nil, errors.New(errors.ErrCodeNoCandidate, "no image candidate on %s", detailURL)
	}

	var lastErr error
	for _, candidate := range candidates {
		data, err := f.client.GetBytes(ctx, candidate, map[string]string{"Referer": detailURL})
		if err != nil {
			lastErr = errors.Wrap(errors.ErrCodeAcquisition, err, "image %s", candidate)
			continue
		}
		decoded, err := decodeImage(data)
		if err != nil {
			lastErr = err
			continue
		}
		if tooSmall(decoded, f.cfg.MinImageSize) {
			b := decoded.Bounds()
			lastErr = errors.New(errors.ErrCodeImageTooSmall, "image %s is %dx%d", candidate, b.Dx(), b.Dy())
			continue
		}
		return &ResolvedImage{ID: id, SourceURL: candidate, Image: decoded}, data, nil
	}
	return nil, nil, lastErr
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
