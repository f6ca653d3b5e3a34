package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/geometry"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/pipeline"
	"github.com/matzehuels/stacktile/pkg/render/frames"
	"github.com/matzehuels/stacktile/pkg/scene"
	"github.com/matzehuels/stacktile/pkg/state"
)

// Preview styles
var (
	previewStatusStyle = lipgloss.NewStyle().Foreground(colorWhite)
	previewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	previewMinCols = 20
	previewMinRows = 6
	// previewChrome is the number of terminal lines used by title and help.
	previewChrome = 4
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		workspace string
		count     int
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Interactively preview the tall stack layout",
		Long: `Interactively preview the tall stack layout in the terminal.

Keys:
  a      add a window
  x      remove the last window
  + / -  more / fewer main windows
  h / l  shrink / expand the main pane
  q      quit

With --workspace the preview starts from the stored pane configuration, and
--save writes the final configuration back on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), workspace, count, save)
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "start from the configuration stored for this workspace")
	cmd.Flags().IntVarP(&count, "windows", "n", 3, "initial number of windows")
	cmd.Flags().BoolVar(&save, "save", false, "store the final configuration for --workspace")
	c.registerWorkspaceCompletion(cmd)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, workspace string, count int, save bool) error {
	if save && workspace == "" {
		return fmt.Errorf("--save requires --workspace")
	}

	rec := state.NewRecord(workspace)
	rec.Layout = c.Config.Layout.Key
	rec.Panes = c.Config.Panes()

	var store state.Store
	if workspace != "" {
		var err error
		if store, err = c.openStore(ctx); err != nil {
			return fmt.Errorf("open workspace store: %w", err)
		}
		defer store.Close()
		stored, ok, err := store.Get(ctx, workspace)
		if err != nil {
			return fmt.Errorf("load workspace %s: %w", workspace, err)
		}
		if ok {
			rec = stored
		}
	}

	m, err := newPreviewModel(rec, c.Config.ScreenRect(), count, c.Config.Layout.ResizeStep)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	if save {
		rec.Panes = final.(previewModel).panes.Config()
		rec.UpdatedAt = time.Now().UTC()
		if err := store.Set(ctx, rec); err != nil {
			return fmt.Errorf("store workspace %s: %w", workspace, err)
		}
		printSuccess("Saved workspace %s", workspace)
	}
	return nil
}

// =============================================================================
// Key bindings
// =============================================================================

type previewKeyMap struct {
	Add    key.Binding
	Remove key.Binding
	More   key.Binding
	Fewer  key.Binding
	Shrink key.Binding
	Expand key.Binding
	Quit   key.Binding
}

var previewKeys = previewKeyMap{
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Remove: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
	More:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "main count")),
	Fewer:  key.NewBinding(key.WithKeys("-", "_")),
	Shrink: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "resize")),
	Expand: key.NewBinding(key.WithKeys("l", "right")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap. Paired bindings share one entry.
func (k previewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Remove, k.More, k.Shrink, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k previewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// =============================================================================
// previewModel - live tall stack preview
// =============================================================================

type previewModel struct {
	key     string
	panes   layout.Configurable
	screen  geometry.Rect
	windows []string
	step    float64

	cols, rows int

	arrangement scene.Arrangement
	err         error
	help        help.Model
}

func newPreviewModel(rec state.Record, screen geometry.Rect, count int, step float64) (previewModel, error) {
	panes, err := state.Restore(rec)
	if err != nil {
		return previewModel{}, err
	}
	m := previewModel{
		key:    rec.Layout,
		panes:  panes,
		screen: screen,
		step:   step,
		cols:   80,
		rows:   24 - previewChrome,
		help:   help.New(),
	}
	for i := 0; i < count; i++ {
		m.windows = append(m.windows, newWindowID())
	}
	m.recompute()
	return m, nil
}

// newWindowID returns a short random window identifier.
func newWindowID() string {
	return uuid.NewString()[:8]
}

func (m *previewModel) recompute() {
	sc := scene.Scene{Layout: m.key, Screen: m.screen, Windows: m.windows}
	m.arrangement, m.err = pipeline.Compute(sc, m.key, m.panes.Config())
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, previewKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, previewKeys.Add):
			m.windows = append(m.windows, newWindowID())
		case key.Matches(msg, previewKeys.Remove):
			if len(m.windows) > 0 {
				m.windows = m.windows[:len(m.windows)-1]
			}
		case key.Matches(msg, previewKeys.More):
			m.panes.IncreaseMainPaneCount()
		case key.Matches(msg, previewKeys.Fewer):
			m.panes.DecreaseMainPaneCount()
		case key.Matches(msg, previewKeys.Shrink):
			layout.ShrinkMainPane(m.panes, m.step)
		case key.Matches(msg, previewKeys.Expand):
			layout.ExpandMainPane(m.panes, m.step)
		default:
			return m, nil
		}
		m.windows = append([]string(nil), m.windows...)
		m.recompute()
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, previewMinCols)
		m.rows = max(msg.Height-previewChrome, previewMinRows)
		m.help.Width = m.cols
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	cfg := m.panes.Config()
	b.WriteString(StyleTitle.Render("Tall Stack"))
	b.WriteString("  ")
	b.WriteString(previewStatusStyle.Render(fmt.Sprintf("%d windows · %d main · ratio %.2f",
		len(m.windows), cfg.MainPaneCount, cfg.MainPaneRatio)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(previewErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(drawArrangement(m.arrangement, m.cols, m.rows))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(previewKeys))
	return b.String()
}

// =============================================================================
// Drawing
// =============================================================================

const (
	cellEmpty = iota
	cellMain
	cellSecondary
)

// drawArrangement draws every pane of a as a box on a cols×rows character
// grid scaled from the screen.
func drawArrangement(a scene.Arrangement, cols, rows int) string {
	grid := make([][]rune, rows)
	kind := make([][]int, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", cols))
		kind[y] = make([]int, cols)
	}

	if a.Screen.Width <= 0 || a.Screen.Height <= 0 {
		return strings.Repeat("\n", rows)
	}
	sx := float64(cols) / a.Screen.Width
	sy := float64(rows) / a.Screen.Height

	for _, p := range frames.Panes(a) {
		if p.Frame.IsEmpty() || !p.Frame.IsFinite() {
			continue
		}
		x0 := clampCell(math.Round((p.Frame.X-a.Screen.X)*sx), cols)
		x1 := clampCell(math.Round((p.Frame.MaxX()-a.Screen.X)*sx)-1, cols)
		y0 := clampCell(math.Round((p.Frame.Y-a.Screen.Y)*sy), rows)
		y1 := clampCell(math.Round((p.Frame.MaxY()-a.Screen.Y)*sy)-1, rows)
		if x1 <= x0 || y1 <= y0 {
			continue
		}

		k := cellSecondary
		if p.Main {
			k = cellMain
		}
		drawBox(grid, kind, x0, y0, x1, y1, k)
		drawLabel(grid, x0, y0, x1, y1, strings.Join(p.Windows, " "))
	}

	var b strings.Builder
	for y := range grid {
		start := 0
		for x := 1; x <= cols; x++ {
			if x < cols && kind[y][x] == kind[y][start] {
				continue
			}
			run := string(grid[y][start:x])
			switch kind[y][start] {
			case cellMain:
				run = styleMainPane.Render(run)
			case cellSecondary:
				run = styleSecondaryPane.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		b.WriteString("\n")
	}
	return b.String()
}

func clampCell(v float64, n int) int {
	return int(math.Max(0, math.Min(v, float64(n-1))))
}

func drawBox(grid [][]rune, kind [][]int, x0, y0, x1, y1, k int) {
	for x := x0; x <= x1; x++ {
		grid[y0][x], grid[y1][x] = '─', '─'
		kind[y0][x], kind[y1][x] = k, k
	}
	for y := y0; y <= y1; y++ {
		grid[y][x0], grid[y][x1] = '│', '│'
		kind[y][x0], kind[y][x1] = k, k
	}
	grid[y0][x0], grid[y0][x1] = '┌', '┐'
	grid[y1][x0], grid[y1][x1] = '└', '┘'
}

// drawLabel writes label on the first inner row of the box, truncated to fit.
func drawLabel(grid [][]rune, x0, y0, x1, y1 int, label string) {
	if y1-y0 < 2 {
		return
	}
	width := x1 - x0 - 1
	if width <= 0 {
		return
	}
	runes := []rune(label)
	if len(runes) > width {
		if width == 1 {
			runes = []rune("…")
		} else {
			runes = append(runes[:width-1], '…')
		}
	}
	copy(grid[y0+1][x0+1:x1], runes)
}
