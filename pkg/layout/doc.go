// Package layout computes window frames for tiling layouts.
//
// # Overview
//
// A layout is a pure function from an ordered window set and a screen to an
// ordered list of [FrameAssignment] values, one per window. Layouts never
// touch real windows: applying a frame is the caller's job. Window identities
// are carried through opaquely, so any comparable type (an OS handle, a
// string ID) can be used as the window type parameter.
//
// # Tall Stack
//
// [TallStack] splits the screen into a main column on the left and a
// secondary column on the right:
//
//	+-----------+-----------+
//	|           |  second   |
//	|   main    +-----------+
//	|  (stack)  |  third    |
//	|           +-----------+
//	|           |  fourth   |
//	+-----------+-----------+
//
// The first MainPaneCount windows are main windows. Main windows are not
// subdivided: every one of them receives the same full-height frame, so they
// sit on top of each other and the window manager lets the user cycle
// through them. The remaining windows share the secondary column in equal
// rows. When there are no secondary windows the main column takes the whole
// screen regardless of the ratio.
//
// The main column width is round(width * ratio) and the secondary column
// takes the exact remainder, so the two columns always cover the screen
// width with no gap. Secondary rows are each round(height / n) tall; when n
// does not divide the height the last row may stop short of, or overshoot,
// the bottom edge by less than n pixels.
//
// # Pane Configuration
//
// Pane count and ratio live on the layout instance and are changed through
// the [PanedLayout] mutators. The raw ratio mutator stores whatever it is
// given; [RecommendMainPaneRatio], [ExpandMainPane], [ShrinkMainPane] and
// [ApplyResize] are the validated entry points for user input.
//
// # Usage
//
//	tall := layout.NewTallStack[string]()
//	tall.IncreaseMainPaneCount()
//
//	screen := layout.StaticScreen(geometry.NewRect(0, 0, 1440, 900))
//	set := layout.WindowSet[string]{Windows: []string{"editor", "term", "browser"}}
//
//	assignments, _ := tall.FrameAssignments(set, screen)
//	for _, a := range assignments {
//	    apply(a.Window, a.Frame)
//	}
package layout
