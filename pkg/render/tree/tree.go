// Package tree renders the pane structure of an arrangement with Graphviz.
//
// The diagram has the screen at the root, one node per pane (the main pane
// and the secondary column) and the windows as leaves:
//
//	screen ─┬─ main (60%) ──────┬─ editor
//	        │                   └─ notes
//	        └─ secondary (40%) ─── term
//
// [ToDOT] produces the DOT source; [RenderSVG] and [RenderPNG] lay it out
// with the embedded Graphviz library.
package tree

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stacktile/pkg/geometry"
	"github.com/matzehuels/stacktile/pkg/scene"
)

// Options configures tree rendering.
type Options struct {
	// Detailed adds frame geometry to window labels.
	// When false, only the window ID is shown.
	Detailed bool
}

// ToDOT converts an arrangement to Graphviz DOT format.
func ToDOT(a scene.Arrangement, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=box3d, fillcolor=\"#e2e8f0\"];\n",
		"screen", fmt.Sprintf("%s\n%s", a.Layout, fmtSize(a.Screen)))

	main, secondary := a.Main(), a.Secondary()
	ratio := a.Panes.MainPaneRatio
	if len(secondary) == 0 {
		ratio = 1
	}
	if len(main) > 0 {
		writePane(&buf, "main", fmt.Sprintf("main %s", fmtPercent(ratio)), "#dbeafe", main, opts)
	}
	if len(secondary) > 0 {
		writePane(&buf, "secondary", fmt.Sprintf("secondary %s", fmtPercent(1-ratio)), "#fef3c7", secondary, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writePane(buf *bytes.Buffer, id, label, color string, windows []scene.Assignment, opts Options) {
	fmt.Fprintf(buf, "  %q [label=%q, shape=folder, fillcolor=%q];\n", id, label, color)
	fmt.Fprintf(buf, "  %q -> %q;\n", "screen", id)
	for _, w := range windows {
		node := "w:" + w.Window
		fmt.Fprintf(buf, "  %q [label=%q];\n", node, fmtLabel(w, opts.Detailed))
		fmt.Fprintf(buf, "  %q -> %q;\n", id, node)
	}
}

func fmtLabel(a scene.Assignment, detailed bool) string {
	if !detailed {
		return a.Window
	}
	parts := []string{a.Window, a.Frame.String()}
	if a.ScaleFactor != nil {
		parts = append(parts, "scale "+strconv.FormatFloat(*a.ScaleFactor, 'g', 4, 64))
	}
	return strings.Join(parts, "\n")
}

func fmtSize(r geometry.Rect) string {
	return fmt.Sprintf("%gx%g", r.Width, r.Height)
}

func fmtPercent(r float64) string {
	return strconv.FormatFloat(math.Round(r*1000)/10, 'f', -1, 64) + "%"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := renderDOT(context.Background(), dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderDOT(context.Background(), dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg element with one
// sized in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
