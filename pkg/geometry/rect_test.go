package geometry

import (
	"math"
	"testing"
)

func TestRectEdges(t *testing.T) {
	tests := []struct {
		name       string
		rect       Rect
		maxX, maxY float64
	}{
		{name: "origin", rect: NewRect(0, 0, 1000, 800), maxX: 1000, maxY: 800},
		{name: "offset", rect: NewRect(500, 400, 500, 400), maxX: 1000, maxY: 800},
		{name: "zero size", rect: NewRect(10, 20, 0, 0), maxX: 10, maxY: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.MaxX(); got != tt.maxX {
				t.Errorf("MaxX() = %v, want %v", got, tt.maxX)
			}
			if got := tt.rect.MaxY(); got != tt.maxY {
				t.Errorf("MaxY() = %v, want %v", got, tt.maxY)
			}
		})
	}
}

func TestRectCenter(t *testing.T) {
	r := NewRect(100, 50, 200, 100)
	if got := r.CenterX(); got != 200 {
		t.Errorf("CenterX() = %v, want 200", got)
	}
	if got := r.CenterY(); got != 100 {
		t.Errorf("CenterY() = %v, want 100", got)
	}
}

func TestRectIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{name: "normal", rect: NewRect(0, 0, 10, 10), want: false},
		{name: "zero width", rect: NewRect(0, 0, 0, 10), want: true},
		{name: "negative height", rect: NewRect(0, 0, 10, -1), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectEqual(t *testing.T) {
	a := NewRect(0, 0, 500, 800)
	if !a.Equal(NewRect(0, 0, 500, 800)) {
		t.Error("identical rects should be equal")
	}
	if a.Equal(NewRect(0, 0, 500, 799)) {
		t.Error("rects with different heights should not be equal")
	}
}

func TestRectIsFinite(t *testing.T) {
	if !NewRect(1, 2, 3, 4).IsFinite() {
		t.Error("finite rect reported as non-finite")
	}
	if NewRect(0, 0, math.Inf(1), 4).IsFinite() {
		t.Error("rect with Inf width reported as finite")
	}
	if NewRect(math.NaN(), 0, 1, 1).IsFinite() {
		t.Error("rect with NaN origin reported as finite")
	}
}

func TestRectString(t *testing.T) {
	if got := NewRect(500, 400, 500, 400).String(); got != "(500,400,500,400)" {
		t.Errorf("String() = %q", got)
	}
}
