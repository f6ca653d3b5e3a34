package layout

import (
	"math"
	"sync"

	"github.com/matzehuels/stacktile/pkg/geometry"
)

// Tall Stack metadata.
const (
	TallStackName = "Tall Stack"
	TallStackKey  = "tall-stack"
)

// TallStack places the first MainPaneCount windows in one shared full-height
// frame on the left and tiles the rest vertically on the right.
//
// A TallStack is safe for concurrent use. Construct it with [NewTallStack];
// the zero value has a main pane count of 0.
type TallStack[W comparable] struct {
	mu  sync.RWMutex
	cfg PaneConfig
}

// NewTallStack returns a layout with the default pane configuration.
func NewTallStack[W comparable]() *TallStack[W] {
	return &TallStack[W]{cfg: DefaultPaneConfig()}
}

func (l *TallStack[W]) Name() string        { return TallStackName }
func (l *TallStack[W]) Key() string         { return TallStackKey }
func (l *TallStack[W]) Description() string { return "" }

// MainPaneCount returns the configured number of main windows.
func (l *TallStack[W]) MainPaneCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg.MainPaneCount
}

// MainPaneRatio returns the configured main column width fraction.
func (l *TallStack[W]) MainPaneRatio() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg.MainPaneRatio
}

// Config returns a snapshot of the pane configuration.
func (l *TallStack[W]) Config() PaneConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// SetConfig replaces the pane configuration, typically with one restored
// from storage. The ratio is stored as given; the count is floored at 1.
func (l *TallStack[W]) SetConfig(cfg PaneConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cfg.MainPaneCount = max(1, cfg.MainPaneCount)
	l.cfg = cfg
}

// IncreaseMainPaneCount adds one main window. There is no upper bound; a
// count above the window count makes every window a main window.
func (l *TallStack[W]) IncreaseMainPaneCount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.MainPaneCount++
}

// DecreaseMainPaneCount removes one main window, never going below 1.
func (l *TallStack[W]) DecreaseMainPaneCount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.MainPaneCount = max(1, l.cfg.MainPaneCount-1)
}

// RecommendMainPaneRawRatio stores ratio without any validation.
func (l *TallStack[W]) RecommendMainPaneRawRatio(ratio float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.MainPaneRatio = ratio
}

// FrameAssignments computes the frame of every window in set. It always
// returns true; an empty set yields an empty, non-nil slice.
func (l *TallStack[W]) FrameAssignments(set WindowSet[W], screen Screen) ([]FrameAssignment[W], bool) {
	windows := set.Windows
	if len(windows) == 0 {
		return []FrameAssignment[W]{}, true
	}

	cfg := l.Config()

	mainCount := min(len(windows), cfg.MainPaneCount)
	secondaryCount := len(windows) - mainCount
	hasSecondary := secondaryCount > 0

	screenFrame := screen.AdjustedFrame()

	mainHeight := screenFrame.Height
	var secondaryHeight float64
	if hasSecondary {
		secondaryHeight = math.Round(screenFrame.Height / float64(secondaryCount))
	}

	ratio := 1.0
	if hasSecondary {
		ratio = cfg.MainPaneRatio
	}
	mainWidth := math.Round(screenFrame.Width * ratio)
	secondaryWidth := screenFrame.Width - mainWidth

	assignments := make([]FrameAssignment[W], 0, len(windows))
	for i, w := range windows {
		isMain := i < mainCount

		var frame geometry.Rect
		var scale float64
		if isMain {
			scale = screenFrame.Width / mainWidth
			frame = geometry.Rect{
				X:      screenFrame.X,
				Y:      screenFrame.Y,
				Width:  mainWidth,
				Height: mainHeight,
			}
		} else {
			scale = screenFrame.Width / secondaryWidth
			frame = geometry.Rect{
				X:      screenFrame.X + mainWidth,
				Y:      screenFrame.Y + secondaryHeight*float64(i-mainCount),
				Width:  secondaryWidth,
				Height: secondaryHeight,
			}
		}

		assignments = append(assignments, FrameAssignment[W]{
			Frame:       frame,
			Window:      w,
			ScreenFrame: screenFrame,
			ResizeRules: ResizeRules{
				IsMain:                 isMain,
				UnconstrainedDimension: Horizontal,
				ScaleFactor:            scale,
			},
		})
	}
	return assignments, true
}

var (
	_ Layout[string] = (*TallStack[string])(nil)
	_ PanedLayout    = (*TallStack[string])(nil)
	_ Configurable   = (*TallStack[string])(nil)
)
