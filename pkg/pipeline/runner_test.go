package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktile/pkg/cache"
	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/geometry"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/observability"
	"github.com/matzehuels/stacktile/pkg/scene"
	"github.com/matzehuels/stacktile/pkg/state"
)

// memCache is a map-backed cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testScene() scene.Scene {
	return scene.Scene{
		Screen:  geometry.NewRect(0, 0, 1000, 800),
		Windows: []string{"a", "b", "c"},
	}
}

func TestResolvePanes(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	rec := state.NewRecord("desk-1")
	rec.Panes = layout.PaneConfig{MainPaneCount: 2, MainPaneRatio: 0.7}
	if err := store.Set(ctx, rec); err != nil {
		t.Fatal(err)
	}

	explicit := layout.PaneConfig{MainPaneCount: 1, MainPaneRatio: 0.25}

	tests := []struct {
		name   string
		store  state.Store
		scene  scene.Scene
		want   layout.PaneConfig
		source string
	}{
		{"scene wins", store, scene.Scene{Workspace: "desk-1", Panes: &explicit}, explicit, SourceScene},
		{"workspace", store, scene.Scene{Workspace: "desk-1"}, rec.Panes, SourceWorkspace},
		{"unknown workspace", store, scene.Scene{Workspace: "desk-2"}, layout.DefaultPaneConfig(), SourceDefault},
		{"no store", nil, scene.Scene{Workspace: "desk-1"}, layout.DefaultPaneConfig(), SourceDefault},
		{"no workspace", store, scene.Scene{}, layout.DefaultPaneConfig(), SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, panes, source, err := ResolvePanes(ctx, tt.store, tt.scene)
			if err != nil {
				t.Fatal(err)
			}
			if key != layout.TallStackKey || panes != tt.want || source != tt.source {
				t.Errorf("ResolvePanes() = %s, %+v, %s", key, panes, source)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	a, err := Compute(testScene(), layout.TallStackKey, layout.PaneConfig{MainPaneCount: 1, MainPaneRatio: 0.6})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Assignments) != 3 || a.Assignments[0].Frame != geometry.NewRect(0, 0, 600, 800) {
		t.Errorf("Compute() = %+v", a)
	}

	if _, err := Compute(testScene(), "bsp", layout.DefaultPaneConfig()); !errors.Is(err, errors.ErrCodeUnknownLayout) {
		t.Errorf("Compute(bsp) = %v", err)
	}
	if _, err := Compute(testScene(), layout.TallStackKey, layout.PaneConfig{MainPaneCount: 1, MainPaneRatio: 3}); !errors.Is(err, errors.ErrCodeInvalidRatio) {
		t.Errorf("Compute(ratio 3) = %v", err)
	}
}

func TestRunnerArrangeCaches(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())

	first, hit, err := r.ArrangeWithCacheInfo(ctx, testScene(), Options{})
	if err != nil || hit {
		t.Fatalf("first Arrange: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.ArrangeWithCacheInfo(ctx, testScene(), Options{})
	if err != nil || !hit {
		t.Fatalf("second Arrange: hit=%v err=%v", hit, err)
	}
	if second.Assignments[2].Frame != first.Assignments[2].Frame {
		t.Error("cached arrangement differs")
	}

	// Refresh bypasses the read but still computes.
	if _, hit, _ := r.ArrangeWithCacheInfo(ctx, testScene(), Options{Refresh: true}); hit {
		t.Error("Refresh should not report a cache hit")
	}

	// A different pane configuration is a different entry.
	sc := testScene()
	sc.Panes = &layout.PaneConfig{MainPaneCount: 2, MainPaneRatio: 0.5}
	if _, hit, _ := r.ArrangeWithCacheInfo(ctx, sc, Options{}); hit {
		t.Error("different panes should miss")
	}
}

func TestRunnerArrangeUsesStore(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())
	r.Store = state.NewMemoryStore()

	if _, err := state.Mutate(ctx, r.Store, "desk-1", func(p layout.PanedLayout) error {
		p.IncreaseMainPaneCount()
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	sc := testScene()
	sc.Workspace = "desk-1"
	a, err := r.Arrange(ctx, sc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Main()) != 2 {
		t.Errorf("stored count not applied: %d main windows", len(a.Main()))
	}
}

func TestRunnerArrangeInvalidScene(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	sc := testScene()
	sc.Windows = []string{"a", "a"}

	if _, err := r.Arrange(context.Background(), sc, Options{}); !errors.Is(err, errors.ErrCodeInvalidWindow) {
		t.Errorf("Arrange() = %v, want INVALID_WINDOW", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())

	res, err := r.Execute(ctx, testScene(), Options{Formats: []string{"json", "svg", "dot"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.WindowCount != 3 || res.Stats.MainCount != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.ArrangementHash == "" {
		t.Error("ArrangementHash not set")
	}
	if !bytes.HasPrefix(res.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	if !strings.HasPrefix(string(res.Artifacts["dot"]), "digraph G {") {
		t.Error("dot artifact missing")
	}
	if _, err := scene.UnmarshalArrangement(res.Artifacts["json"]); err != nil {
		t.Errorf("json artifact: %v", err)
	}

	res, err = r.Execute(ctx, testScene(), Options{Formats: []string{"json", "svg", "dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.ArrangeHit || !res.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v", res.CacheInfo)
	}
}

func TestRunnerExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	if _, err := r.Execute(context.Background(), testScene(), Options{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute(gif) = %v", err)
	}
}

func TestRenderTreeView(t *testing.T) {
	a, err := Compute(testScene(), layout.TallStackKey, layout.DefaultPaneConfig())
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{"svg"}, View: ViewTree}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	out, err := Render(context.Background(), a, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Graphviz output carries its own generator comment.
	if !bytes.Contains(out["svg"], []byte("Generated by graphviz")) {
		t.Errorf("tree svg not produced by graphviz: %.200s", out["svg"])
	}
}

type countingHooks struct {
	observability.NoopLayoutHooks
	observability.NoopCacheHooks
	mu       sync.Mutex
	arranges int
	hits     map[string]int
}

func (h *countingHooks) OnArrangeComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.arranges++
}

func (h *countingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func TestRunnerEmitsHooks(t *testing.T) {
	h := &countingHooks{hits: map[string]int{}}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	r := NewRunner(newMemCache(), nil, quietLogger())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := r.Arrange(ctx, testScene(), Options{}); err != nil {
			t.Fatal(err)
		}
	}

	if h.arranges != 2 {
		t.Errorf("OnArrangeComplete calls = %d, want 2", h.arranges)
	}
	if h.hits[keyTypeArrangement] != 1 {
		t.Errorf("arrangement cache hits = %d, want 1", h.hits[keyTypeArrangement])
	}
}
