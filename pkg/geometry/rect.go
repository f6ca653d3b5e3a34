// Package geometry provides the rectangle type shared by layouts, renderers
// and the serialization formats.
//
// All coordinates live in one screen coordinate space with the origin at the
// top-left corner and y growing downwards. Values are float64 so that layouts
// can report exact pixel values as well as the non-finite results of
// degenerate configurations.
package geometry

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x" yaml:"x" toml:"x" bson:"x"`
	Y      float64 `json:"y" yaml:"y" toml:"y" bson:"y"`
	Width  float64 `json:"width" yaml:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height" bson:"height"`
}

// NewRect is shorthand for a Rect literal.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// IsEmpty reports whether the rectangle covers no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Equal reports whether two rectangles have the same origin and size.
func (r Rect) Equal(o Rect) bool {
	return r.X == o.X && r.Y == o.Y && r.Width == o.Width && r.Height == o.Height
}

// IsFinite reports whether every component is a finite number.
func (r Rect) IsFinite() bool {
	return isFinite(r.X) && isFinite(r.Y) && isFinite(r.Width) && isFinite(r.Height)
}

// String formats the rectangle as (x,y,w,h).
func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", r.X, r.Y, r.Width, r.Height)
}

func isFinite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }
