package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktile/pkg/cache"
	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/state"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Panes() != layout.DefaultPaneConfig() {
		t.Errorf("Panes() = %+v", cfg.Panes())
	}
	if cfg.Layout.Key != layout.TallStackKey {
		t.Errorf("Layout.Key = %q", cfg.Layout.Key)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
main_pane_count = 2
main_pane_ratio = 0.6

[screen]
x = 10
width = 1000
height = 800

[state]
backend = "memory"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Panes(); got != (layout.PaneConfig{MainPaneCount: 2, MainPaneRatio: 0.6}) {
		t.Errorf("Panes() = %+v", got)
	}
	if cfg.Layout.ResizeStep != layout.DefaultResizeStep {
		t.Errorf("ResizeStep = %v, want default", cfg.Layout.ResizeStep)
	}
	if r := cfg.ScreenRect(); r.X != 10 || r.Width != 1000 || r.Height != 800 {
		t.Errorf("ScreenRect() = %v", r)
	}
	if cfg.StateOptions().Backend != state.BackendMemory {
		t.Errorf("StateOptions().Backend = %q", cfg.StateOptions().Backend)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[layout\n", errors.ErrCodeInvalidInput},
		{"unknown key", "[layout]\nmain_count = 2\n", errors.ErrCodeInvalidInput},
		{"unknown layout", "[layout]\nkey = \"spiral\"\n", errors.ErrCodeUnknownLayout},
		{"bad ratio", "[layout]\nmain_pane_ratio = 1.5\n", errors.ErrCodeInvalidRatio},
		{"bad count", "[layout]\nmain_pane_count = 0\n", errors.ErrCodeInvalidPaneCount},
		{"bad step", "[layout]\nresize_step = 2.0\n", errors.ErrCodeInvalidRatio},
		{"bad screen", "[screen]\nwidth = 0\n", errors.ErrCodeInvalidScreen},
		{"cache backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"redis cache without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"state backend", "[state]\nbackend = \"etcd\"\n", errors.ErrCodeInvalidInput},
		{"mongo without uri", "[state]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidInput},
		{"log level", "[log]\nlevel = \"loud\"\n", errors.ErrCodeInvalidInput},
		{"cache scope", "[cache]\nscope = \"a b\"\n", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestKeyer(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.Keyer().(cache.DefaultKeyer); !ok {
		t.Errorf("Keyer() without scope = %T, want cache.DefaultKeyer", cfg.Keyer())
	}

	cfg.Cache.Scope = "staging"
	key := cfg.Keyer().ArrangementKey("abc", cache.ArrangementKeyOpts{})
	if want := "staging:arrangement:"; len(key) < len(want) || key[:len(want)] != want {
		t.Errorf("scoped ArrangementKey() = %q, want %s prefix", key, want)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/xdg/stacktile/config.toml" {
		t.Errorf("DefaultPath() = %q", got)
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Cache.Backend = CacheNone
	c, err := cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("OpenCache(none) = %T", c)
	}

	cfg.Cache.Backend = CacheFile
	cfg.Cache.Dir = t.TempDir()
	c, err = cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("OpenCache(file) = %T", c)
	}
	if fc.Dir() != cfg.Cache.Dir {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), cfg.Cache.Dir)
	}
}

func TestOpenCacheNoDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")

	cfg := Default()
	cfg.Cache.Backend = CacheFile
	c, err := cfg.OpenCache(context.Background())
	if err == nil {
		t.Fatalf("OpenCache() = %T, want error without a cache directory", c)
	}
	if c != nil {
		t.Errorf("OpenCache() returned %T alongside the error", c)
	}
}

func TestOpenState(t *testing.T) {
	cfg := Default()
	cfg.State.Backend = string(state.BackendFile)
	cfg.State.Dir = t.TempDir()

	store, err := cfg.OpenState(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, ok := store.(*state.FileStore); !ok {
		t.Errorf("OpenState() = %T", store)
	}
}

func TestOpenStateSQLite(t *testing.T) {
	path := writeConfig(t, "[state]\nbackend = \"sqlite\"\nsqlite_path = "+
		strconv.Quote(filepath.Join(t.TempDir(), "ws.db"))+"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	store, err := cfg.OpenState(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, ok := store.(*state.SQLiteStore); !ok {
		t.Errorf("OpenState() = %T", store)
	}
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, "[layout]\nmain_pane_count = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg Config, err error) {
			if err != nil {
				return
			}
			select {
			case got <- cfg:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-got:
			if cfg.Layout.MainPaneCount != 3 {
				t.Errorf("reloaded MainPaneCount = %d, want 3", cfg.Layout.MainPaneCount)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() = %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte("[layout]\nmain_pane_count = 3\n"), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
