package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/promocanvas/internal/config"
	"github.com/matzehuels/promocanvas/pkg/cache"
	"github.com/matzehuels/promocanvas/pkg/catalog"
	"github.com/matzehuels/promocanvas/pkg/errors"
	gh "github.com/matzehuels/promocanvas/pkg/integrations/github"
	"github.com/matzehuels/promocanvas/pkg/ledger"
	ledgergh "github.com/matzehuels/promocanvas/pkg/ledger/github"
	"github.com/matzehuels/promocanvas/pkg/ledger/mongo"
	"github.com/matzehuels/promocanvas/pkg/pipeline"
)

// ledgerFile is the file name of the local ledger under the data directory.
const ledgerFile = "ledger.csv"

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the loaded configuration. The
// returned close function releases the byte cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, func(), error) {
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	fcfg := c.Config.FetcherConfig()
	images := catalog.NewImageCache(catalog.CacheOptions{
		Store:   store,
		Keyer:   keyer,
		Catalog: fcfg.Host(),
		TTL:     c.Config.Cache.TTL.Duration,
		Logger:  c.Logger,
	})
	fetcher := catalog.NewFetcher(fcfg, images, c.Logger)
	return pipeline.NewRunner(fetcher, c.Logger), func() { store.Close() }, nil
}

// openCache opens the configured byte cache. A cache that cannot be opened
// degrades to no persistent cache, since compositions still work without it.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	dir := cc.Dir
	if cc.Backend == cache.BackendFile && dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	store, err := cache.Open(ctx, cache.Options{
		Backend:   cc.Backend,
		Dir:       dir,
		RedisAddr: cc.RedisAddr,
	})
	if err != nil {
		c.Logger.Warn("image cache unavailable, continuing without it", "backend", cc.Backend, "error", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// defaultOptions returns pipeline options carrying the configured canvas.
func (c *CLI) defaultOptions() pipeline.Options {
	cv := c.Config.Canvas
	return pipeline.Options{
		Width:      cv.Width,
		Height:     cv.Height,
		Background: cv.Background,
		Quality:    cv.Quality,
	}
}

// =============================================================================
// Ledger Factory
// =============================================================================

// newLedger opens the configured ledger store. It returns a nil ledger when
// no backend is selected.
func (c *CLI) newLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	store, closeFn, err := c.openLedgerStore(ctx)
	if err != nil || store == nil {
		return nil, func() {}, err
	}
	return ledger.New(store, ledger.WithLogger(c.Logger)), closeFn, nil
}

// requireLedger is newLedger for commands that cannot run without one.
func (c *CLI) requireLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	l, closeFn, err := c.newLedger(ctx)
	if err != nil {
		return nil, nil, err
	}
	if l == nil {
		return nil, nil, errors.New(errors.ErrCodeConfiguration,
			"no usage ledger configured (set ledger.backend or %s)", config.EnvLedgerRepo)
	}
	return l, closeFn, nil
}

func (c *CLI) openLedgerStore(ctx context.Context) (ledger.Store, func(), error) {
	lc := c.Config.Ledger
	noop := func() {}

	switch lc.Backend {
	case "", config.LedgerNone:
		return nil, noop, nil

	case config.LedgerFile:
		path := lc.Path
		if path == "" {
			dir, err := dataDir()
			if err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeConfiguration, err, "resolve ledger path")
			}
			path = filepath.Join(dir, ledgerFile)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeConfiguration, err, "create ledger directory")
		}
		return ledger.NewFileStore(path), noop, nil

	case config.LedgerGitHub:
		repo, err := gh.ParseRepository(lc.Repo)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeConfiguration, err, "ledger repository")
		}
		client := gh.NewContentClient(lc.Token, lc.Branch)
		return ledgergh.New(client, repo, lc.File), noop, nil

	case config.LedgerMongo:
		store, err := mongo.Open(ctx, mongo.Config{
			URI:        lc.MongoURI,
			Database:   lc.Database,
			Collection: lc.Collection,
			Name:       lc.Name,
		})
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeConfiguration, err, "open mongo ledger")
		}
		return store, func() { store.Close(context.Background()) }, nil
	}

	return nil, nil, errors.New(errors.ErrCodeConfiguration, "unknown ledger backend %q", lc.Backend)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/promocanvas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/promocanvas/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
