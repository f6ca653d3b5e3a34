package layout

import (
	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/geometry"
)

// Default pane configuration values.
const (
	DefaultMainPaneCount = 1
	DefaultMainPaneRatio = 0.5

	// DefaultResizeStep is the ratio change applied by one expand or shrink.
	DefaultResizeStep = 0.05
)

// PaneConfig is a snapshot of a paned layout's configuration.
type PaneConfig struct {
	MainPaneCount int     `json:"main_pane_count" yaml:"main_pane_count" toml:"main_pane_count" bson:"main_pane_count"`
	MainPaneRatio float64 `json:"main_pane_ratio" yaml:"main_pane_ratio" toml:"main_pane_ratio" bson:"main_pane_ratio"`
}

// DefaultPaneConfig returns one main window at half the screen width.
func DefaultPaneConfig() PaneConfig {
	return PaneConfig{
		MainPaneCount: DefaultMainPaneCount,
		MainPaneRatio: DefaultMainPaneRatio,
	}
}

// Validate checks that the count is at least 1 and the ratio is in [0, 1].
func (c PaneConfig) Validate() error {
	if err := errors.ValidatePaneCount(c.MainPaneCount); err != nil {
		return err
	}
	return errors.ValidateRatio(c.MainPaneRatio)
}

// Snapshot reads the current configuration of a paned layout.
func Snapshot(p PanedLayout) PaneConfig {
	return PaneConfig{
		MainPaneCount: p.MainPaneCount(),
		MainPaneRatio: p.MainPaneRatio(),
	}
}

// RecommendMainPaneRatio sets the main pane ratio after checking that it is
// in [0, 1]. Out of range values leave the layout unchanged.
func RecommendMainPaneRatio(p PanedLayout, ratio float64) error {
	if err := errors.ValidateRatio(ratio); err != nil {
		return err
	}
	p.RecommendMainPaneRawRatio(ratio)
	return nil
}

// ExpandMainPane grows the main pane ratio by step, stopping at 1.
func ExpandMainPane(p PanedLayout, step float64) {
	p.RecommendMainPaneRawRatio(clampRatio(p.MainPaneRatio() + step))
}

// ShrinkMainPane shrinks the main pane ratio by step, stopping at 0.
func ShrinkMainPane(p PanedLayout, step float64) {
	p.RecommendMainPaneRawRatio(clampRatio(p.MainPaneRatio() - step))
}

// ApplyResize feeds an interactive resize of an assigned frame back into the
// layout's ratio. It reports false when the resize cannot be interpreted.
func ApplyResize[W comparable](p PanedLayout, a FrameAssignment[W], newFrame geometry.Rect) bool {
	delta, ok := a.ResizeRules.RatioDelta(a.Frame, newFrame)
	if !ok {
		return false
	}
	p.RecommendMainPaneRawRatio(clampRatio(p.MainPaneRatio() + delta))
	return true
}

func clampRatio(r float64) float64 {
	return max(0, min(1, r))
}
