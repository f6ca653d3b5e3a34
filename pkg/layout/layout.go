package layout

import (
	"math"

	"github.com/matzehuels/stacktile/pkg/geometry"
)

// Screen is the display a layout arranges windows on.
type Screen interface {
	// AdjustedFrame returns the usable area of the screen, already excluding
	// menu bars, docks and other reserved chrome.
	AdjustedFrame() geometry.Rect
}

// StaticScreen is a Screen with a fixed usable area.
type StaticScreen geometry.Rect

// AdjustedFrame returns the rectangle itself.
func (s StaticScreen) AdjustedFrame() geometry.Rect { return geometry.Rect(s) }

// WindowSet is the ordered list of windows on one screen. The order decides
// which windows are main windows and is never changed by a layout.
type WindowSet[W comparable] struct {
	Windows []W
}

// Len returns the number of windows in the set.
func (s WindowSet[W]) Len() int { return len(s.Windows) }

// Layout is one member of the family of tiling layouts.
type Layout[W comparable] interface {
	// Name is the human-readable layout name.
	Name() string
	// Key is the stable short identifier used in configuration.
	Key() string
	// Description is an optional longer description.
	Description() string
	// FrameAssignments computes one frame per window, in window order.
	// The boolean is false when the layout does not apply to the screen and
	// the caller should leave windows alone.
	FrameAssignments(set WindowSet[W], screen Screen) ([]FrameAssignment[W], bool)
}

// PanedLayout is implemented by layouts with a configurable main pane.
type PanedLayout interface {
	MainPaneCount() int
	MainPaneRatio() float64
	IncreaseMainPaneCount()
	DecreaseMainPaneCount()
	RecommendMainPaneRawRatio(ratio float64)
}

// Configurable is a paned layout whose whole configuration can be read and
// restored at once, as done when loading a workspace from storage.
type Configurable interface {
	PanedLayout
	Config() PaneConfig
	SetConfig(cfg PaneConfig)
}

// Dimension names a screen axis.
type Dimension int

const (
	Horizontal Dimension = iota
	Vertical
)

// String returns "horizontal" or "vertical".
func (d Dimension) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ResizeRules tells the caller how to turn an interactive resize of an
// assigned frame back into layout configuration.
type ResizeRules struct {
	// IsMain is true when the frame belongs to the main pane.
	IsMain bool
	// UnconstrainedDimension is the axis that encodes the pane ratio.
	UnconstrainedDimension Dimension
	// ScaleFactor is screen size / pane size along the unconstrained axis.
	// It is ±Inf or NaN when the pane has zero size.
	ScaleFactor float64
}

// RatioDelta converts a resize of the pane from oldFrame to newFrame into a
// change of the main pane ratio. Growing a secondary pane shrinks the main
// pane, so its delta is negated. The boolean is false when the delta is
// undefined: the old frame has no extent along the unconstrained axis or the
// scale factor is not a positive finite number.
func (r ResizeRules) RatioDelta(oldFrame, newFrame geometry.Rect) (float64, bool) {
	oldSize, newSize := r.extent(oldFrame), r.extent(newFrame)
	if oldSize <= 0 || r.ScaleFactor <= 0 || math.IsInf(r.ScaleFactor, 0) || math.IsNaN(r.ScaleFactor) {
		return 0, false
	}
	delta := (newSize - oldSize) / oldSize / r.ScaleFactor
	if !r.IsMain {
		delta = -delta
	}
	return delta, true
}

func (r ResizeRules) extent(frame geometry.Rect) float64 {
	if r.UnconstrainedDimension == Vertical {
		return frame.Height
	}
	return frame.Width
}

// FrameAssignment is the computed placement of one window.
type FrameAssignment[W comparable] struct {
	// Frame is the target rectangle for the window.
	Frame geometry.Rect
	// Window is the identity passed in by the caller.
	Window W
	// ScreenFrame is the screen area the frame was computed against.
	ScreenFrame geometry.Rect
	// ResizeRules describes how to reinterpret a resize of Frame.
	ResizeRules ResizeRules
}
