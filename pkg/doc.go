// Package pkg provides the core libraries of stacktile, a tiling layout engine.
//
// # Overview
//
// Stacktile computes window frames for the tall stack layout: one or more
// main windows share a single full-height column on the left, and the
// remaining windows are tiled in equal rows in a column on the right. The
// pkg directory is organized into four areas:
//
//  1. [layout] and [geometry] - The layout algorithm and its rectangles
//  2. [scene] - Input scenes and computed arrangements
//  3. [pipeline] - Orchestration (validate → arrange → render) with caching
//  4. Infrastructure - [cache], [state], [config], [server], [observability]
//
// # Architecture
//
// The typical data flow through stacktile:
//
//	Scene file (JSON, YAML, TOML) or POST /v1/arrange
//	         ↓
//	    [scene] package (read + validate)
//	         ↓
//	    [state] package (stored pane configuration of the workspace)
//	         ↓
//	    [layout] package (frame assignments)
//	         ↓
//	    [render] package (frames SVG, Graphviz tree)
//	         ↓
//	    JSON/SVG/DOT/PNG/PDF output
//
// # Quick Start
//
// Arrange three windows on a 1000x800 screen:
//
//	import (
//	    "github.com/matzehuels/stacktile/pkg/geometry"
//	    "github.com/matzehuels/stacktile/pkg/layout"
//	)
//
//	l := layout.NewTallStack[string]()
//	set := layout.WindowSet[string]{Windows: []string{"editor", "term", "web"}}
//	frames, _ := l.FrameAssignments(set, layout.StaticScreen(geometry.NewRect(0, 0, 1000, 800)))
//	// editor (0,0 500x800), term (500,0 500x400), web (500,400 500x400)
//
// # Main Packages
//
// [layout] - The layout family contract, the pane configuration mutators and
// the tall stack algorithm. Layouts are looked up by key through the
// registry.
//
// [pipeline] - The runner used by the CLI and the HTTP server. Arrangements
// are cached by scene hash and artifacts by arrangement hash.
//
// [state] - Pane configuration per workspace with memory, file, SQLite,
// Redis and MongoDB backends.
//
// [server] - HTTP API for arranging scenes and adjusting workspaces.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/layout/...    # Specific package
//	go test -run Example        # Examples only
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/layout
// [geometry]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/geometry
// [scene]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/cache
// [state]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/state
// [config]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/observability
// [render]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/render
package pkg
