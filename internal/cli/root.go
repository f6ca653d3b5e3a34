package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent flags are:
//   - --verbose (-v): debug logging, overriding the configured level
//   - --config: path of the TOML configuration file
//
// The configuration is loaded before any subcommand runs; the logger is
// attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stacktile arranges windows in a tall stack",
		Long: `Stacktile is a tiling layout engine. The tall stack layout puts one or more
main windows in a column on the left and stacks the remaining windows in a
column on the right.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/stacktile/config.toml)")

	// Register all subcommands
	root.AddCommand(c.arrangeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.panesCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
