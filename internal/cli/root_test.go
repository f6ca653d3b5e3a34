package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// writeTestConfig writes a config file into a temp dir and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quote(s string) string { return strconv.Quote(s) }

// runCLI executes the root command of a fresh CLI with args.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	return runWith(New(io.Discard, LogInfo), args...)
}

func runWith(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"arrange", "render", "panes", "preview", "serve", "cache", "completion"}
	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil || cmd == root {
				t.Errorf("subcommand %q not registered", name)
			}
		})
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s missing", name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, `
[layout]
main_pane_count = 2
main_pane_ratio = 0.6

[log]
level = "warn"
`)

	c := New(io.Discard, LogInfo)
	c.configPath = path
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	panes := c.Config.Panes()
	if panes.MainPaneCount != 2 || panes.MainPaneRatio != 0.6 {
		t.Errorf("Panes() = %+v, want count 2 ratio 0.6", panes)
	}
	if got := c.Logger.GetLevel(); got != c.Config.LogLevel() {
		t.Errorf("logger level = %v, want %v", got, c.Config.LogLevel())
	}
}

func TestLoadConfigVerbose(t *testing.T) {
	path := writeTestConfig(t, "[log]\nlevel = \"error\"\n")

	c := New(io.Discard, LogInfo)
	c.configPath = path
	c.verbose = true
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("verbose logger level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[layout]\nflavor = \"wide\"\n"},
		{"bad ratio", "[layout]\nmain_pane_ratio = 1.5\n"},
		{"bad syntax", "[layout\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.content)
			if err := runCLI(t, "--config", path, "cache", "path"); err == nil {
				t.Error("expected error for invalid config")
			}
		})
	}
}
