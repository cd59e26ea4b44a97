// Package config loads promocanvas settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, command-line flags (applied by the CLI). A missing default
// config file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/promocanvas/pkg/cache"
	"github.com/matzehuels/promocanvas/pkg/catalog"
	perrors "github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/layout"
)

// AppName names the config, cache and data directories.
const AppName = "promocanvas"

// Ledger backends.
const (
	LedgerNone   = "none"
	LedgerFile   = "file"
	LedgerGitHub = "github"
	LedgerMongo  = "mongo"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvGitHubToken         = "PROMOCANVAS_GITHUB_TOKEN"
	EnvGitHubTokenFallback = "GITHUB_TOKEN"
	EnvLedgerRepo          = "PROMOCANVAS_LEDGER_REPO"
	EnvMongoURI            = "PROMOCANVAS_MONGO_URI"
	EnvRedisAddr           = "PROMOCANVAS_REDIS_ADDR"
)

// Duration is a time.Duration written as a string ("1.5s") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Cache   CacheConfig   `toml:"cache"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Server  ServerConfig  `toml:"server"`
}

// CatalogConfig controls image acquisition.
type CatalogConfig struct {
	DetailURL    string   `toml:"detail_url"`
	UserAgent    string   `toml:"user_agent"`
	Attempts     int      `toml:"attempts"`
	RetryDelay   Duration `toml:"retry_delay"`
	Timeout      Duration `toml:"timeout"`
	MinImageSize int      `toml:"min_image_size"`
}

// CanvasConfig sets the output defaults.
type CanvasConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
	Quality    int    `toml:"quality"`
}

// CacheConfig selects the persistent image byte cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // memory, file or redis
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// LedgerConfig selects the usage ledger store.
type LedgerConfig struct {
	Backend string `toml:"backend"` // none, file, github or mongo

	// file
	Path string `toml:"path"`

	// github
	Repo   string `toml:"repo"`
	Branch string `toml:"branch"`
	File   string `toml:"file"`
	Token  string `toml:"-"`

	// mongo
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	Name       string `toml:"name"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			DetailURL:    catalog.DefaultDetailURL,
			Attempts:     catalog.DefaultAttempts,
			RetryDelay:   Duration{catalog.DefaultRetryDelay},
			Timeout:      Duration{10 * time.Second},
			MinImageSize: catalog.DefaultMinImageSize,
		},
		Canvas: CanvasConfig{
			Width:      layout.DefaultWidth,
			Height:     layout.DefaultHeight,
			Background: "#ffffff",
			Quality:    90,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Ledger: LedgerConfig{
			Backend: LedgerNone,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the config file location following XDG
// (~/.config/promocanvas/config.toml).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config file at path over the defaults and applies the
// environment. An empty path means [DefaultPath], which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			cfg.ApplyEnv(os.Getenv)
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg.ApplyEnv(os.Getenv)
			return cfg, nil
		}
		return cfg, perrors.Wrap(perrors.ErrCodeConfiguration, err, "load config %s", path)
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// Parse decodes TOML data over the defaults without touching the
// environment.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeConfiguration, err, "parse config")
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables read via getenv.
// Setting a ledger repo or Mongo URI without a backend selects that backend.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvGitHubToken); v != "" {
		c.Ledger.Token = v
	} else if v := getenv(EnvGitHubTokenFallback); v != "" {
		c.Ledger.Token = v
	}
	if v := getenv(EnvLedgerRepo); v != "" {
		c.Ledger.Repo = v
		if c.Ledger.Backend == "" || c.Ledger.Backend == LedgerNone {
			c.Ledger.Backend = LedgerGitHub
		}
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Ledger.MongoURI = v
		if c.Ledger.Backend == "" || c.Ledger.Backend == LedgerNone {
			c.Ledger.Backend = LedgerMongo
		}
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = cache.BackendRedis
	}
}

// Validate reports missing credentials, unknown backends and bad values.
// Every failure carries [perrors.ErrCodeConfiguration].
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if err := perrors.ValidateDetailURL(c.Catalog.DetailURL); err != nil {
		add("%s", perrors.UserMessage(err))
	}
	if c.Catalog.Attempts < 1 || c.Catalog.Attempts > catalog.MaxAttempts {
		add("catalog.attempts must be between 1 and %d", catalog.MaxAttempts)
	}
	if _, err := layout.ParseColor(c.Canvas.Background); err != nil {
		add("canvas.background: %s", perrors.UserMessage(err))
	}
	canvas := layout.Canvas{Width: c.Canvas.Width, Height: c.Canvas.Height}
	if err := canvas.Validate(); err != nil {
		add("canvas: %s", perrors.UserMessage(err))
	}
	if c.Canvas.Quality < 1 || c.Canvas.Quality > 100 {
		add("canvas.quality must be between 1 and 100")
	}

	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendMemory, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			add("cache.redis_addr is required for the redis backend")
		}
	default:
		add("unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Ledger.Backend {
	case "", LedgerNone, LedgerFile:
	case LedgerGitHub:
		if err := perrors.ValidateRepoRef(c.Ledger.Repo); err != nil {
			add("ledger: %s", perrors.UserMessage(err))
		}
		if c.Ledger.Token == "" {
			add("ledger: GitHub token is required (set %s)", EnvGitHubToken)
		}
		if c.Ledger.File != "" {
			if err := perrors.ValidatePath(c.Ledger.File); err != nil {
				add("ledger.file: %s", perrors.UserMessage(err))
			}
		}
	case LedgerMongo:
		if c.Ledger.MongoURI == "" {
			add("ledger: mongo_uri is required (set %s)", EnvMongoURI)
		}
	default:
		add("unknown ledger backend %q", c.Ledger.Backend)
	}

	if len(problems) > 0 {
		return perrors.New(perrors.ErrCodeConfiguration, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// LedgerEnabled reports whether a ledger backend is selected.
func (c *Config) LedgerEnabled() bool {
	return c.Ledger.Backend != "" && c.Ledger.Backend != LedgerNone
}

// FetcherConfig converts the catalog section.
func (c *Config) FetcherConfig() catalog.Config {
	return catalog.Config{
		DetailURL:    c.Catalog.DetailURL,
		UserAgent:    c.Catalog.UserAgent,
		Attempts:     c.Catalog.Attempts,
		RetryDelay:   c.Catalog.RetryDelay.Duration,
		Timeout:      c.Catalog.Timeout.Duration,
		MinImageSize: c.Catalog.MinImageSize,
	}
}
