package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/pipeline"
	"github.com/matzehuels/stacktile/pkg/scene"
)

// arrangeOpts holds the flags of the arrange command. Pane flags override
// whatever the scene, workspace or configuration would select.
type arrangeOpts struct {
	output    string
	noCache   bool
	refresh   bool
	workspace string
	count     int
	ratio     float64

	countSet bool
	ratioSet bool
}

// arrangeCommand creates the arrange command for computing window frames.
func (c *CLI) arrangeCommand() *cobra.Command {
	var opts arrangeOpts

	cmd := &cobra.Command{
		Use:   "arrange [scene]",
		Short: "Compute window frames for a scene",
		Long: `Compute window frames for a scene.

The scene file (.json, .yaml or .toml) names the screen and the windows in
stacking order. The output is an arrangement file that can be rendered with
the 'render' command.

The pane configuration comes from, in order: the --count/--ratio flags, the
scene's panes, the stored configuration of the scene's workspace, and the
configuration file.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.countSet = cmd.Flags().Changed("count")
			opts.ratioSet = cmd.Flags().Changed("ratio")
			return c.runArrange(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <scene>.arrangement.json)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached arrangement exists")
	cmd.Flags().StringVarP(&opts.workspace, "workspace", "w", "", "use the pane configuration stored for this workspace")
	cmd.Flags().IntVar(&opts.count, "count", 0, "main pane count")
	cmd.Flags().Float64Var(&opts.ratio, "ratio", 0, "main pane ratio in [0, 1]")
	c.registerWorkspaceCompletion(cmd)

	return cmd
}

// runArrange loads the scene, computes the arrangement, and writes output.
func (c *CLI) runArrange(ctx context.Context, input string, opts arrangeOpts) error {
	sc, err := scene.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}
	if err := c.applySceneOverrides(&sc, opts); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Arranging %d windows...", len(sc.Windows)))
	spinner.Start()

	a, cacheHit, err := runner.ArrangeWithCacheInfo(ctx, sc, pipeline.Options{Refresh: opts.refresh, Logger: logger})
	if err != nil {
		spinner.StopWithError("Arrange failed")
		return fmt.Errorf("arrange: %w", err)
	}
	spinner.Stop()
	prog.done("arranged", "windows", len(a.Assignments), "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := opts.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".arrangement.json"
	}

	if err := scene.WriteArrangementFile(a, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Arrangement complete")
	printFile(outputPath)
	printStats(a, cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// applySceneOverrides applies the workspace and pane flags to sc. A scene
// without panes and without a workspace gets the configured defaults.
func (c *CLI) applySceneOverrides(sc *scene.Scene, opts arrangeOpts) error {
	if opts.workspace != "" {
		sc.Workspace = opts.workspace
	}
	if sc.Layout == "" && sc.Workspace == "" {
		sc.Layout = c.Config.Layout.Key
	}

	if sc.Panes == nil && sc.Workspace == "" && !opts.countSet && !opts.ratioSet {
		panes := c.Config.Panes()
		sc.Panes = &panes
	}
	if opts.countSet || opts.ratioSet {
		panes := c.Config.Panes()
		if sc.Panes != nil {
			panes = *sc.Panes
		}
		if opts.countSet {
			panes.MainPaneCount = opts.count
		}
		if opts.ratioSet {
			panes.MainPaneRatio = opts.ratio
		}
		sc.Panes = &panes
	}
	return sc.Validate()
}
