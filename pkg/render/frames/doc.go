// Package frames draws an arrangement to scale as SVG.
//
// Every distinct frame becomes one rectangle. Main windows share a single
// frame; it is drawn once with a hatched fill and a badge giving the number
// of stacked windows. Secondary rows are drawn top to bottom in window order.
//
//	svg := frames.RenderSVG(arrangement, frames.WithMaxWidth(800))
//
// Zero-width panes, produced by a main pane ratio of 0 or 1, are skipped.
package frames
