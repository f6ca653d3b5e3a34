// Package config loads the stacktile configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/stacktile/config.toml by
// default. Every key is optional; a missing file yields [Default].
//
//	[layout]
//	key = "tall-stack"
//	main_pane_count = 1
//	main_pane_ratio = 0.5
//	resize_step = 0.05
//
//	[screen]
//	width = 1920
//	height = 1080
//
//	[cache]
//	backend = "file"   # file, redis or none
//	scope = "staging"  # optional key prefix for a shared redis
//
//	[state]
//	backend = "file"   # memory, file, sqlite, redis or mongo
//
//	[server]
//	addr = ":8080"
//
//	[log]
//	level = "info"
package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktile/pkg/cache"
	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/geometry"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/state"
)

const appName = "stacktile"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the parsed configuration file.
type Config struct {
	Layout Layout `toml:"layout"`
	Screen Screen `toml:"screen"`
	Cache  Cache  `toml:"cache"`
	State  State  `toml:"state"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

// Layout holds the layout defaults used when a scene or workspace has none.
type Layout struct {
	Key           string  `toml:"key"`
	MainPaneCount int     `toml:"main_pane_count"`
	MainPaneRatio float64 `toml:"main_pane_ratio"`
	ResizeStep    float64 `toml:"resize_step"`
}

// Screen is the default screen for commands that do not read a scene.
type Screen struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type Cache struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	// Scope prefixes every cache key, so deployments sharing one Redis
	// database do not read each other's entries.
	Scope string `toml:"scope"`
}

type State struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	SQLitePath    string `toml:"sqlite_path"`
}

type Server struct {
	Addr string `toml:"addr"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Layout: Layout{
			Key:           layout.DefaultKey,
			MainPaneCount: layout.DefaultMainPaneCount,
			MainPaneRatio: layout.DefaultMainPaneRatio,
			ResizeStep:    layout.DefaultResizeStep,
		},
		Screen: Screen{Width: 1920, Height: 1080},
		Cache:  Cache{Backend: CacheFile},
		State:  State{Backend: string(state.BackendFile), MongoDatabase: state.DefaultMongoDatabase},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// DefaultPath returns ~/.config/stacktile/config.toml, honoring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path on top of [Default] and validates the result.
// A missing file is not an error. An empty path selects [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if !layout.IsKnown(c.Layout.Key) {
		return errors.New(errors.ErrCodeUnknownLayout, "unknown layout %q (known: %v)", c.Layout.Key, layout.Keys())
	}
	if err := c.Panes().Validate(); err != nil {
		return err
	}
	if err := errors.ValidateRatio(c.Layout.ResizeStep); err != nil {
		return errors.New(errors.ErrCodeInvalidRatio, "resize_step %v must be in [0, 1]", c.Layout.ResizeStep)
	}
	if err := errors.ValidateScreen(c.Screen.X, c.Screen.Y, c.Screen.Width, c.Screen.Height); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Scope != "" {
		if err := errors.ValidateWorkspaceKey(c.Cache.Scope); err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "cache.scope: %s", errors.UserMessage(err))
		}
	}

	switch state.Backend(c.State.Backend) {
	case state.BackendMemory, state.BackendFile, state.BackendSQLite:
	case state.BackendRedis:
		if c.State.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "state.redis_addr is required for the redis backend")
		}
	case state.BackendMongo:
		if c.State.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "state.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown state backend %q", c.State.Backend)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
	}
	return nil
}

// Panes returns the configured default pane configuration.
func (c Config) Panes() layout.PaneConfig {
	return layout.PaneConfig{
		MainPaneCount: c.Layout.MainPaneCount,
		MainPaneRatio: c.Layout.MainPaneRatio,
	}
}

// ScreenRect returns the configured default screen.
func (c Config) ScreenRect() geometry.Rect {
	return geometry.NewRect(c.Screen.X, c.Screen.Y, c.Screen.Width, c.Screen.Height)
}

// LogLevel returns the parsed log level, falling back to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// StateOptions maps the [state] section onto [state.Options].
func (c Config) StateOptions() state.Options {
	return state.Options{
		Backend:       state.Backend(c.State.Backend),
		Dir:           c.State.Dir,
		RedisAddr:     c.State.RedisAddr,
		MongoURI:      c.State.MongoURI,
		MongoDatabase: c.State.MongoDatabase,
		SQLitePath:    c.State.SQLitePath,
	}
}

// OpenState opens the configured workspace store.
func (c Config) OpenState(ctx context.Context) (state.Store, error) {
	return state.Open(ctx, c.StateOptions())
}

// OpenCache opens the configured cache. The file backend falls back to
// [DefaultCacheDir] when no directory is set.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisAddr)
	default:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := DefaultCacheDir()
			if err != nil {
				return nil, fmt.Errorf("cache dir: %w", err)
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// Keyer returns the cache keyer, scoped when cache.scope is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Scope)
}

// DefaultCacheDir returns ~/.cache/stacktile, honoring XDG_CACHE_HOME.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
