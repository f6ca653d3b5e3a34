package frames

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/stacktile/pkg/geometry"
	"github.com/matzehuels/stacktile/pkg/scene"
)

// Colors of the default theme.
const (
	colorScreen    = "#f8fafc"
	colorOutline   = "#334155"
	colorMain      = "#dbeafe"
	colorHatch     = "#93c5fd"
	colorSecondary = "#fef3c7"
	colorText      = "#0f172a"
	colorBadge     = "#1d4ed8"
)

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	labels   bool
	maxWidth float64
	title    string
}

// WithoutLabels omits window labels.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// WithMaxWidth scales the drawing down so it is at most w pixels wide. The
// view box keeps screen coordinates.
func WithMaxWidth(w float64) Option { return func(r *renderer) { r.maxWidth = w } }

// WithTitle adds an SVG <title>.
func WithTitle(t string) Option { return func(r *renderer) { r.title = t } }

// Pane is one drawn rectangle: a frame and the windows assigned to it.
type Pane struct {
	Frame   geometry.Rect
	Windows []string
	Main    bool
}

// Panes groups consecutive assignments that share a frame, in assignment
// order.
func Panes(a scene.Arrangement) []Pane {
	var panes []Pane
	for _, as := range a.Assignments {
		if n := len(panes); n > 0 && panes[n-1].Main == as.IsMain && panes[n-1].Frame.Equal(as.Frame) {
			panes[n-1].Windows = append(panes[n-1].Windows, as.Window)
			continue
		}
		panes = append(panes, Pane{Frame: as.Frame, Windows: []string{as.Window}, Main: as.IsMain})
	}
	return panes
}

// RenderSVG draws the arrangement.
func RenderSVG(a scene.Arrangement, opts ...Option) []byte {
	r := renderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	screen := a.Screen
	width, height := screen.Width, screen.Height
	if r.maxWidth > 0 && width > r.maxWidth {
		height = height * r.maxWidth / width
		width = r.maxWidth
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		screen.Width, screen.Height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect class="screen" x="0" y="0" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		screen.Width, screen.Height, colorScreen, colorOutline)

	for i, p := range Panes(a) {
		if p.Frame.IsEmpty() || !p.Frame.IsFinite() {
			continue
		}
		// Frames are drawn relative to the screen origin.
		f := p.Frame
		f.X -= screen.X
		f.Y -= screen.Y
		renderPane(&buf, i, f, p)
		if r.labels {
			renderLabel(&buf, f, p)
		}
		if len(p.Windows) > 1 {
			renderBadge(&buf, f, len(p.Windows))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <pattern id="main-hatch" width="12" height="12" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">` + "\n")
	fmt.Fprintf(buf, `      <rect width="12" height="12" fill="%s"/>`+"\n", colorMain)
	fmt.Fprintf(buf, `      <line x1="0" y1="0" x2="0" y2="12" stroke="%s" stroke-width="4"/>`+"\n", colorHatch)
	buf.WriteString("    </pattern>\n")
	buf.WriteString("  </defs>\n")
}

func renderPane(buf *bytes.Buffer, i int, f geometry.Rect, p Pane) {
	class, fill := "pane secondary", colorSecondary
	if p.Main {
		class, fill = "pane main", "url(#main-hatch)"
	}
	fmt.Fprintf(buf, `  <rect class="%s" id="pane-%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		class, i, f.X, f.Y, f.Width, f.Height, fill, colorOutline)
}

func renderLabel(buf *bytes.Buffer, f geometry.Rect, p Pane) {
	label := strings.Join(p.Windows, ", ")
	size := fontSizeFor(f.Width, f.Height, len([]rune(label)))
	label = truncateLabel(label, f.Width, size)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		f.CenterX(), f.CenterY(), size, colorText, escapeXML(label))
}

func renderBadge(buf *bytes.Buffer, f geometry.Rect, n int) {
	const radius = 18.0
	cx, cy := f.MaxX()-radius-8, f.Y+radius+8
	fmt.Fprintf(buf, `  <circle class="badge" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", cx, cy, radius, colorBadge)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="16" fill="white" text-anchor="middle" dominant-baseline="middle">%d</text>`+"\n",
		cx, cy, n)
}
