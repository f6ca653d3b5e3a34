// Package scene defines the documents exchanged with the layout engine.
//
// A [Scene] is a computation request: which layout to use, the usable screen
// area, the ordered window identifiers and optionally a pane configuration
// or the workspace whose stored configuration should be used. Scenes can be
// written as JSON, YAML or TOML:
//
//	layout = "tall-stack"
//	windows = ["editor", "term", "browser"]
//
//	[screen]
//	x = 0
//	y = 0
//	width = 1920
//	height = 1080
//
//	[panes]
//	main_pane_count = 1
//	main_pane_ratio = 0.6
//
// An [Arrangement] is the result: one [Assignment] per window, in window
// order, always serialized as JSON (or BSON when stored).
package scene
