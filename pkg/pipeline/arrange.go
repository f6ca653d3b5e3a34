package pipeline

import (
	"context"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/scene"
	"github.com/matzehuels/stacktile/pkg/state"
)

// =============================================================================
// Pane Resolution
// =============================================================================

// Pane configuration sources reported by ResolvePanes.
const (
	SourceScene     = "scene"
	SourceWorkspace = "workspace"
	SourceDefault   = "default"
)

// ResolvePanes picks the layout key and pane configuration for a scene.
// store may be nil.
func ResolvePanes(ctx context.Context, store state.Store, sc scene.Scene) (key string, panes layout.PaneConfig, source string, err error) {
	key = sc.LayoutKey()
	if sc.Panes != nil {
		return key, *sc.Panes, SourceScene, nil
	}
	if sc.Workspace != "" && store != nil {
		rec, ok, err := store.Get(ctx, sc.Workspace)
		if err != nil {
			return "", layout.PaneConfig{}, "", errors.Wrap(errors.ErrCodeInternal, err, "load workspace %s", sc.Workspace)
		}
		if ok {
			if sc.Layout == "" {
				key = rec.Layout
			}
			return key, rec.Panes, SourceWorkspace, nil
		}
	}
	return key, layout.DefaultPaneConfig(), SourceDefault, nil
}

// =============================================================================
// Arrangement
// =============================================================================

// Compute runs the layout named by key over the scene's windows with the
// given pane configuration. It does no caching.
func Compute(sc scene.Scene, key string, panes layout.PaneConfig) (scene.Arrangement, error) {
	if err := panes.Validate(); err != nil {
		return scene.Arrangement{}, err
	}
	l, err := layout.New[string](key)
	if err != nil {
		return scene.Arrangement{}, err
	}
	if c, ok := l.(layout.Configurable); ok {
		c.SetConfig(panes)
	}

	set := layout.WindowSet[string]{Windows: sc.Windows}
	frames, ok := l.FrameAssignments(set, layout.StaticScreen(sc.Screen))
	if !ok {
		return scene.Arrangement{}, errors.New(errors.ErrCodeUnsupported, "layout %q does not apply to this screen", key)
	}
	return scene.NewArrangement(key, sc.Screen, panes, frames), nil
}
