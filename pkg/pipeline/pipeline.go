// Package pipeline provides the arrange → render pipeline for stacktile.
//
// This package implements the complete pipeline used by the CLI, the HTTP
// API and the preview TUI. Centralizing it keeps caching, pane resolution
// and validation identical across entry points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Arrange: Resolve the pane configuration and compute one frame per window
//  2. Render: Generate output in various formats (JSON, SVG, PNG, PDF, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
// Both stages are cached by content hash.
//
// # Pane Resolution
//
// The pane configuration of a scene comes from, in order:
//
//  1. The scene's own Panes field
//  2. The record stored for the scene's Workspace, when the runner has a Store
//  3. The layout defaults
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Store = store
//	result, err := runner.Execute(ctx, sc, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	arrangement, err := runner.Arrange(ctx, sc, opts)
//	artifacts, err := runner.Render(ctx, arrangement, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktile/pkg/cache"
	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultPNGScale is the rasterization scale for PNG output.
	DefaultPNGScale = 2.0

	// DefaultView is the default rendering view.
	DefaultView = ViewFrames
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
)

// View constants select what SVG, PNG and PDF output shows.
const (
	// ViewFrames draws the frames to scale.
	ViewFrames = "frames"
	// ViewTree draws the pane structure with Graphviz.
	ViewTree = "tree"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
}

// ValidViews is the set of supported views.
var ValidViews = map[string]bool{
	ViewFrames: true,
	ViewTree:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the configuration of a pipeline run besides the scene.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Arrange options
	Refresh bool `json:"refresh,omitempty"` // Ignore cached arrangements

	// Render options
	Formats  []string `json:"formats,omitempty"`
	View     string   `json:"view,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`  // Frame geometry in tree labels
	MaxWidth float64  `json:"max_width,omitempty"` // Scale frames SVG down to this width
	Labels   *bool    `json:"labels,omitempty"`    // Window labels in frames SVG (default true)

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Arrangement is the computed frame assignment.
	Arrangement scene.Arrangement

	// ArrangementHash is the content hash of the arrangement JSON.
	ArrangementHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	WindowCount int
	MainCount   int
	ArrangeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ArrangeHit bool // Whether the arrangement came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateView checks that a view is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid view: %q (must be one of: frames, tree)", view)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.View == "" {
		o.View = DefaultView
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if o.MaxWidth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_width must not be negative")
	}
	return nil
}

// ShowLabels reports whether frames SVG output includes window labels.
func (o *Options) ShowLabels() bool {
	return o.Labels == nil || *o.Labels
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	view := o.View
	if format == FormatJSON || format == FormatDOT {
		// These formats do not depend on the view.
		view = ""
	}
	return cache.ArtifactKeyOpts{
		Format:   format,
		View:     view,
		Detailed: o.Detailed,
		MaxWidth: o.MaxWidth,
		Labels:   o.ShowLabels(),
	}
}

// dedupFormats returns formats without repeats, keeping the first occurrence.
func dedupFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
