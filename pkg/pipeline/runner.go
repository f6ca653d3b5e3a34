package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktile/pkg/cache"
	"github.com/matzehuels/stacktile/pkg/observability"
	"github.com/matzehuels/stacktile/pkg/scene"
	"github.com/matzehuels/stacktile/pkg/state"
)

// Cache key types reported to observability hooks.
const (
	keyTypeArrangement = "arrangement"
	keyTypeArtifact    = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// CLI, API and TUI all use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, store and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Store supplies per-workspace pane configuration. May be nil.
	Store state.Store
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete arrange → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, sc scene.Scene, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Arrange
	arrangeStart := time.Now()
	a, arrangeHit, err := r.ArrangeWithCacheInfo(ctx, sc, opts)
	if err != nil {
		return nil, fmt.Errorf("arrange: %w", err)
	}
	result.Arrangement = a
	result.Stats.ArrangeTime = time.Since(arrangeStart)
	result.Stats.WindowCount = len(a.Assignments)
	result.Stats.MainCount = len(a.Main())
	result.CacheInfo.ArrangeHit = arrangeHit

	if data, err := scene.MarshalArrangement(a); err == nil {
		result.ArrangementHash = cache.Hash(data)
	}

	r.Logger.Info("arranged windows",
		"layout", a.Layout,
		"windows", result.Stats.WindowCount,
		"main", result.Stats.MainCount,
		"cached", arrangeHit,
		"duration", result.Stats.ArrangeTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, a, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"view", opts.View,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ArrangeWithCacheInfo validates the scene, resolves its pane configuration
// and computes the frames, with caching. It also returns whether the
// arrangement came from the cache.
func (r *Runner) ArrangeWithCacheInfo(ctx context.Context, sc scene.Scene, opts Options) (a scene.Arrangement, hit bool, err error) {
	if err := sc.Validate(); err != nil {
		return scene.Arrangement{}, false, err
	}

	key, panes, source, err := ResolvePanes(ctx, r.Store, sc)
	if err != nil {
		return scene.Arrangement{}, false, err
	}
	r.Logger.Debug("resolved panes",
		"workspace", sc.Workspace,
		"source", source,
		"count", panes.MainPaneCount,
		"ratio", panes.MainPaneRatio)

	hooks := observability.Layout()
	hooks.OnArrangeStart(ctx, key, len(sc.Windows))
	start := time.Now()
	defer func() {
		hooks.OnArrangeComplete(ctx, key, len(sc.Windows), time.Since(start), err)
	}()

	cacheKey := r.Keyer.ArrangementKey(sceneHash(sc), cache.ArrangementKeyOpts{
		Layout:        key,
		MainPaneCount: panes.MainPaneCount,
		MainPaneRatio: panes.MainPaneRatio,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			cached, err := scene.UnmarshalArrangement(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeArrangement)
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArrangement)

	a, err = Compute(sc, key, panes)
	if err != nil {
		return scene.Arrangement{}, false, err
	}

	// Cache the result
	if data, err := scene.MarshalArrangement(a); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArrangement); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeArrangement, len(data))
		}
	}

	return a, false, nil // Cache miss
}

// Arrange is a convenience wrapper that calls ArrangeWithCacheInfo and discards the cache hit info.
func (r *Runner) Arrange(ctx context.Context, sc scene.Scene, opts Options) (scene.Arrangement, error) {
	a, _, err := r.ArrangeWithCacheInfo(ctx, sc, opts)
	return a, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, a scene.Arrangement, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Layout()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	// Compute cache key from arrangement data
	data, err := scene.MarshalArrangement(a)
	if err != nil {
		return nil, false, fmt.Errorf("serialize arrangement for cache key: %w", err)
	}
	cacheKeyHash := cache.Hash(data)
	formats := dedupFormats(opts.Formats)

	// Try to get all formats from cache
	allCached := true
	artifacts = make(map[string][]byte)

	for _, format := range formats {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(formats) {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	// Render all formats
	rendered, err := Render(ctx, a, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, a scene.Arrangement, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, a, opts)
	return artifacts, err
}

// Close releases resources held by the runner (cache and store).
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// sceneHash hashes the parts of a scene that the frames depend on besides
// the pane configuration.
func sceneHash(sc scene.Scene) string {
	data, _ := json.Marshal(struct {
		Screen  any      `json:"screen"`
		Windows []string `json:"windows"`
	}{sc.Screen, sc.Windows})
	return cache.Hash(data)
}
