// Package render turns arrangements into pictures.
//
// # Overview
//
// Two views are provided:
//
//   - [frames] draws the computed window frames to scale on the screen, the
//     way a user would see them
//   - [tree] draws the pane structure (screen, main pane, secondary column
//     and their windows) as a Graphviz diagram
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := frames.RenderSVG(arrangement)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// The tree view can rasterize directly through Graphviz:
//
//	dot := tree.ToDOT(arrangement, tree.Options{})
//	png, err := tree.RenderPNG(dot)
//
// [frames]: github.com/matzehuels/stacktile/pkg/render/frames
// [tree]: github.com/matzehuels/stacktile/pkg/render/tree
package render
