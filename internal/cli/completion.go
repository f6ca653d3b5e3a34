package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stacktile.

Workspace names complete from the configured workspace store, and the
render --format and --view flags complete their known values.

Bash:
  $ source <(stacktile completion bash)

Zsh:
  $ stacktile completion zsh > "${fpath[1]}/_stacktile"

Fish:
  $ stacktile completion fish > ~/.config/fish/completions/stacktile.fish

PowerShell:
  PS> stacktile completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}

	return cmd
}

// registerWorkspaceCompletion completes --workspace on cmd from the stored
// workspaces.
func (c *CLI) registerWorkspaceCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("workspace", c.completeWorkspaces)
}

// completeWorkspaces lists stored workspace keys starting with toComplete.
// Completion runs without the root pre-run hook, so the configuration is
// loaded here.
func (c *CLI) completeWorkspaces(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := c.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer store.Close()

	recs, err := store.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []string
	for _, rec := range recs {
		if strings.HasPrefix(rec.Workspace, toComplete) {
			keys = append(keys, rec.Workspace)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

var (
	renderFormats = []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatDOT, pipeline.FormatJSON}
	renderViews   = []string{pipeline.ViewFrames, pipeline.ViewTree}
)

// registerRenderCompletion completes the render --format and --view flags.
func registerRenderCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		// Complete the last item of a comma-separated list.
		done, _ := cutLast(toComplete, ",")
		var out []string
		for _, f := range renderFormats {
			out = append(out, done+f)
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	})
	_ = cmd.RegisterFlagCompletionFunc("view", cobra.FixedCompletions(renderViews, cobra.ShellCompDirectiveNoFileComp))
}

// cutLast splits s after the last sep, keeping sep on the left part.
func cutLast(s, sep string) (string, string) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return "", s
	}
	return s[:i+len(sep)], s[i+len(sep):]
}
