package pipeline

import (
	"context"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/render"
	"github.com/matzehuels/stacktile/pkg/render/frames"
	"github.com/matzehuels/stacktile/pkg/render/tree"
	"github.com/matzehuels/stacktile/pkg/scene"
)

// Render generates output artifacts in the requested formats. opts must
// have passed ValidateForRender.
func Render(ctx context.Context, a scene.Arrangement, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// Both views are produced lazily and at most once.
	var svg []byte
	viewSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		if opts.View == ViewTree {
			svg, err = tree.RenderSVG(toDOT(a, opts))
		} else {
			svg = frames.RenderSVG(a, frameOptions(opts)...)
		}
		return svg, err
	}

	for _, format := range dedupFormats(opts.Formats) {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = scene.MarshalArrangement(a)
		case FormatDOT:
			data = []byte(toDOT(a, opts))
		case FormatSVG:
			data, err = viewSVG()
		case FormatPNG:
			if opts.View == ViewTree {
				data, err = tree.RenderPNG(toDOT(a, opts))
				break
			}
			if data, err = viewSVG(); err == nil {
				data, err = render.ToPNGContext(ctx, data, DefaultPNGScale)
			}
		case FormatPDF:
			if data, err = viewSVG(); err == nil {
				data, err = render.ToPDFContext(ctx, data)
			}
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func toDOT(a scene.Arrangement, opts Options) string {
	return tree.ToDOT(a, tree.Options{Detailed: opts.Detailed})
}

func frameOptions(opts Options) []frames.Option {
	var out []frames.Option
	if opts.MaxWidth > 0 {
		out = append(out, frames.WithMaxWidth(opts.MaxWidth))
	}
	if !opts.ShowLabels() {
		out = append(out, frames.WithoutLabels())
	}
	return out
}
