package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/geometry"
	"github.com/matzehuels/stacktile/pkg/layout"
)

// =============================================================================
// Arrangement - computed frames for one scene
// =============================================================================

// Arrangement is the serializable result of arranging a scene.
type Arrangement struct {
	Layout      string            `json:"layout" bson:"layout"`
	Screen      geometry.Rect     `json:"screen" bson:"screen"`
	Panes       layout.PaneConfig `json:"panes" bson:"panes"`
	Assignments []Assignment      `json:"assignments" bson:"assignments"`
}

// Assignment is the frame of one window.
type Assignment struct {
	Window        string        `json:"window" bson:"window"`
	Frame         geometry.Rect `json:"frame" bson:"frame"`
	IsMain        bool          `json:"is_main" bson:"is_main"`
	Unconstrained string        `json:"unconstrained" bson:"unconstrained"`
	// ScaleFactor is nil when the pane has zero width and the factor is
	// infinite or NaN.
	ScaleFactor *float64 `json:"scale_factor" bson:"scale_factor"`
}

// NewArrangement converts layout output into an Arrangement.
func NewArrangement(key string, screen geometry.Rect, panes layout.PaneConfig, frames []layout.FrameAssignment[string]) Arrangement {
	out := Arrangement{
		Layout:      key,
		Screen:      screen,
		Panes:       panes,
		Assignments: make([]Assignment, len(frames)),
	}
	for i, f := range frames {
		out.Assignments[i] = Assignment{
			Window:        f.Window,
			Frame:         f.Frame,
			IsMain:        f.ResizeRules.IsMain,
			Unconstrained: f.ResizeRules.UnconstrainedDimension.String(),
			ScaleFactor:   finite(f.ResizeRules.ScaleFactor),
		}
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Windows returns the window identifiers in assignment order.
func (a Arrangement) Windows() []string {
	ids := make([]string, len(a.Assignments))
	for i, as := range a.Assignments {
		ids[i] = as.Window
	}
	return ids
}

// Main returns the assignments of the main pane.
func (a Arrangement) Main() []Assignment {
	var out []Assignment
	for _, as := range a.Assignments {
		if as.IsMain {
			out = append(out, as)
		}
	}
	return out
}

// Secondary returns the assignments of the secondary column, top to bottom.
func (a Arrangement) Secondary() []Assignment {
	var out []Assignment
	for _, as := range a.Assignments {
		if !as.IsMain {
			out = append(out, as)
		}
	}
	return out
}

// Lookup returns the assignment of window.
func (a Arrangement) Lookup(window string) (Assignment, bool) {
	for _, as := range a.Assignments {
		if as.Window == window {
			return as, true
		}
	}
	return Assignment{}, false
}

// =============================================================================
// Arrangement Serialization API
// =============================================================================

// MarshalArrangement serializes an Arrangement to pretty-printed JSON bytes.
func MarshalArrangement(a Arrangement) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// UnmarshalArrangement deserializes JSON bytes into an Arrangement.
func UnmarshalArrangement(data []byte) (Arrangement, error) {
	var a Arrangement
	if err := json.Unmarshal(data, &a); err != nil {
		return Arrangement{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal arrangement")
	}
	if a.Layout == "" {
		return Arrangement{}, errors.New(errors.ErrCodeInvalidInput, "arrangement must name its layout")
	}
	for i, as := range a.Assignments {
		if as.Window == "" {
			return Arrangement{}, errors.New(errors.ErrCodeInvalidInput, "assignment %d has no window", i)
		}
	}
	return a, nil
}

// WriteArrangementFile writes an Arrangement to a JSON file.
func WriteArrangementFile(a Arrangement, path string) error {
	data, err := MarshalArrangement(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadArrangementFile reads an Arrangement from a JSON file.
func ReadArrangementFile(path string) (Arrangement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Arrangement{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalArrangement(data)
}
