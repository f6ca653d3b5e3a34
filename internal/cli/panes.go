package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/state"
)

// panesCommand creates the panes command group. Every subcommand works on
// the pane configuration stored for --workspace.
func (c *CLI) panesCommand() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "panes",
		Short: "Show and adjust the pane configuration of a workspace",
		Long: `Show and adjust the pane configuration of a workspace.

The main pane count is the number of windows sharing the left column. The
main pane ratio is the fraction of the screen width that column takes once
there is at least one secondary window.`,
	}
	cmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", defaultWorkspace, "workspace key")
	c.registerWorkspaceCompletion(cmd)

	mutate := func(use, short string, fn func(layout.PanedLayout) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runPanesMutate(cmd.Context(), workspace, fn)
			},
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored pane configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPanesShow(cmd.Context(), workspace)
		},
	})
	cmd.AddCommand(mutate("increase", "Move one more window into the main pane", func(p layout.PanedLayout) error {
		p.IncreaseMainPaneCount()
		return nil
	}))
	cmd.AddCommand(mutate("decrease", "Move one window out of the main pane", func(p layout.PanedLayout) error {
		p.DecreaseMainPaneCount()
		return nil
	}))
	cmd.AddCommand(c.panesResizeCommand("expand", "Widen the main pane", &workspace, layout.ExpandMainPane))
	cmd.AddCommand(c.panesResizeCommand("shrink", "Narrow the main pane", &workspace, layout.ShrinkMainPane))
	cmd.AddCommand(&cobra.Command{
		Use:   "ratio [value]",
		Short: "Set the main pane ratio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("ratio %q is not a number", args[0])
			}
			return c.runPanesMutate(cmd.Context(), workspace, func(p layout.PanedLayout) error {
				return layout.RecommendMainPaneRatio(p, ratio)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the stored configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPanesReset(cmd.Context(), workspace)
		},
	})

	return cmd
}

// panesResizeCommand builds expand or shrink with a --step flag defaulting
// to the configured resize step.
func (c *CLI) panesResizeCommand(use, short string, workspace *string, resize func(layout.PanedLayout, float64)) *cobra.Command {
	var step float64
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("step") {
				step = c.Config.Layout.ResizeStep
			}
			return c.runPanesMutate(cmd.Context(), *workspace, func(p layout.PanedLayout) error {
				resize(p, step)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&step, "step", layout.DefaultResizeStep, "ratio change")
	return cmd
}

func (c *CLI) runPanesShow(ctx context.Context, workspace string) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open workspace store: %w", err)
	}
	defer store.Close()

	rec, stored, err := store.Get(ctx, workspace)
	if err != nil {
		return fmt.Errorf("load workspace %s: %w", workspace, err)
	}
	if !stored {
		rec = state.NewRecord(workspace)
		rec.Layout = c.Config.Layout.Key
		rec.Panes = c.Config.Panes()
	}
	printRecord(rec, stored)
	return nil
}

func (c *CLI) runPanesMutate(ctx context.Context, workspace string, fn func(layout.PanedLayout) error) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open workspace store: %w", err)
	}
	defer store.Close()

	if err := c.seedWorkspace(ctx, store, workspace); err != nil {
		return err
	}
	rec, err := state.Mutate(ctx, store, workspace, fn)
	if err != nil {
		return err
	}
	c.Logger.Debug("panes updated", "workspace", workspace, "count", rec.Panes.MainPaneCount, "ratio", rec.Panes.MainPaneRatio)
	printRecord(rec, true)
	return nil
}

// seedWorkspace stores the configured defaults for a workspace that has no
// record yet, so the first mutation starts from the configuration file.
func (c *CLI) seedWorkspace(ctx context.Context, store state.Store, workspace string) error {
	_, ok, err := store.Get(ctx, workspace)
	if err != nil || ok {
		return err
	}
	if c.Config.Panes() == layout.DefaultPaneConfig() && c.Config.Layout.Key == layout.DefaultKey {
		return nil
	}
	rec := state.NewRecord(workspace)
	rec.Layout = c.Config.Layout.Key
	rec.Panes = c.Config.Panes()
	return store.Set(ctx, rec)
}

func (c *CLI) runPanesReset(ctx context.Context, workspace string) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open workspace store: %w", err)
	}
	defer store.Close()

	if err := store.Delete(ctx, workspace); err != nil {
		return fmt.Errorf("reset workspace %s: %w", workspace, err)
	}
	printSuccess("Reset workspace %s", workspace)
	return nil
}

// printRecord prints a workspace record as key-value lines.
func printRecord(rec state.Record, stored bool) {
	fmt.Println(StyleTitle.Render("Workspace " + rec.Workspace))
	printKeyValue("Layout", rec.Layout)
	printKeyValue("Main panes", StyleNumber.Render(strconv.Itoa(rec.Panes.MainPaneCount)))
	printKeyValue("Main ratio", StyleNumber.Render(strconv.FormatFloat(rec.Panes.MainPaneRatio, 'f', 2, 64)))
	if stored {
		printKeyValue("Updated", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	} else {
		printKeyValue("Updated", StyleDim.Render("never (defaults)"))
	}
}
