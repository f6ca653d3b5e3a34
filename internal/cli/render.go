package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/pipeline"
	"github.com/matzehuels/stacktile/pkg/scene"
)

// renderCommand creates the render command for drawing an arrangement.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		noLabels   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [arrangement.json]",
		Short: "Render an arrangement to SVG, PNG, PDF or DOT",
		Long: `Render an arrangement to SVG, PNG, PDF or DOT.

The render command takes an arrangement file (produced by 'arrange') and
draws it. The frames view draws every pane to scale; the tree view draws the
pane structure with Graphviz.

PNG and PDF output of the frames view requires rsvg-convert.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if noLabels {
				labels := false
				opts.Labels = &labels
			}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.View, "view", pipeline.DefaultView, "view: frames (default), tree")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show frame geometry in the tree view")
	cmd.Flags().Float64Var(&opts.MaxWidth, "max-width", 0, "scale the frames view down to this width")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "omit window labels in the frames view")
	registerRenderCompletion(cmd)

	return cmd
}

// runRender loads the arrangement and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	a, err := scene.ReadArrangementFile(input)
	if err != nil {
		return fmt.Errorf("load arrangement %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	prog := newProgress(opts.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s view...", opts.View))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, a, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	prog.done("rendered", "view", opts.View, "formats", opts.Formats, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(a, cacheHit)
	return nil
}

// writeArtifacts writes one file per format and returns the paths written.
// A single format goes to output verbatim when given ("-" writes to
// stdout); otherwise every format goes to <base>.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		path := basePath(output, input) + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}

		if err := writeOutput(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		if path != "-" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
