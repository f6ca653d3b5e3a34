package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/state"
)

// panesEnv returns a config path with a file state backend and the store
// reading the same directory.
func panesEnv(t *testing.T, extra string) (string, *state.FileStore) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "workspaces")
	cfg := writeTestConfig(t, "[state]\nbackend = \"file\"\ndir = "+quote(dir)+"\n"+extra)
	store, err := state.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	return cfg, store
}

func getRecord(t *testing.T, store state.Store, workspace string) (state.Record, bool) {
	t.Helper()
	rec, ok, err := store.Get(context.Background(), workspace)
	if err != nil {
		t.Fatalf("Get(%s) error: %v", workspace, err)
	}
	return rec, ok
}

func TestPanesCommands(t *testing.T) {
	cfg, store := panesEnv(t, "")

	steps := []struct {
		args      []string
		wantCount int
		wantRatio float64
	}{
		{[]string{"increase"}, 2, 0.5},
		{[]string{"increase"}, 3, 0.5},
		{[]string{"decrease"}, 2, 0.5},
		{[]string{"expand"}, 2, 0.55},
		{[]string{"shrink", "--step", "0.25"}, 2, 0.3},
		{[]string{"ratio", "0.7"}, 2, 0.7},
	}

	for _, step := range steps {
		args := append([]string{"--config", cfg, "panes", "-w", "desk"}, step.args...)
		if err := runCLI(t, args...); err != nil {
			t.Fatalf("panes %v: %v", step.args, err)
		}
		rec, ok := getRecord(t, store, "desk")
		if !ok {
			t.Fatalf("panes %v: workspace not stored", step.args)
		}
		if rec.Panes.MainPaneCount != step.wantCount {
			t.Errorf("panes %v: count = %d, want %d", step.args, rec.Panes.MainPaneCount, step.wantCount)
		}
		if d := rec.Panes.MainPaneRatio - step.wantRatio; d > 1e-9 || d < -1e-9 {
			t.Errorf("panes %v: ratio = %v, want %v", step.args, rec.Panes.MainPaneRatio, step.wantRatio)
		}
	}

	if err := runCLI(t, "--config", cfg, "panes", "-w", "desk", "reset"); err != nil {
		t.Fatalf("panes reset: %v", err)
	}
	if _, ok := getRecord(t, store, "desk"); ok {
		t.Error("workspace still stored after reset")
	}
}

func TestPanesDefaultWorkspace(t *testing.T) {
	cfg, store := panesEnv(t, "")
	if err := runCLI(t, "--config", cfg, "panes", "increase"); err != nil {
		t.Fatal(err)
	}
	if _, ok := getRecord(t, store, defaultWorkspace); !ok {
		t.Errorf("increase without --workspace did not store %q", defaultWorkspace)
	}
}

func TestPanesSeedFromConfig(t *testing.T) {
	cfg, store := panesEnv(t, "\n[layout]\nmain_pane_count = 3\nmain_pane_ratio = 0.4\nresize_step = 0.1\n")

	if err := runCLI(t, "--config", cfg, "panes", "-w", "desk", "expand"); err != nil {
		t.Fatal(err)
	}
	rec, _ := getRecord(t, store, "desk")
	if rec.Panes.MainPaneCount != 3 {
		t.Errorf("count = %d, want configured 3", rec.Panes.MainPaneCount)
	}
	if d := rec.Panes.MainPaneRatio - 0.5; d > 1e-9 || d < -1e-9 {
		t.Errorf("ratio = %v, want 0.4 + configured step 0.1", rec.Panes.MainPaneRatio)
	}
}

func TestPanesErrors(t *testing.T) {
	cfg, store := panesEnv(t, "")

	tests := []struct {
		name     string
		args     []string
		wantCode errors.Code
	}{
		{"ratio above one", []string{"ratio", "1.5"}, errors.ErrCodeInvalidRatio},
		{"ratio negative", []string{"ratio", "--", "-0.1"}, errors.ErrCodeInvalidRatio},
		{"bad workspace", []string{"-w", "a/b", "increase"}, errors.ErrCodeInvalidWorkspace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "panes"}, tt.args...)
			err := runCLI(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := errors.GetCode(err); code != tt.wantCode {
				t.Errorf("code = %s, want %s (%v)", code, tt.wantCode, err)
			}
		})
	}

	if err := runCLI(t, "--config", cfg, "panes", "ratio", "wide"); err == nil {
		t.Error("expected error for non-numeric ratio")
	}
	if recs, err := store.List(context.Background()); err != nil || len(recs) > 1 {
		t.Errorf("failed commands stored records: %v, %v", recs, err)
	}
}

func TestPanesShow(t *testing.T) {
	cfg, _ := panesEnv(t, "")
	c := New(io.Discard, LogInfo)
	if err := runWith(c, "--config", cfg, "panes", "show", "-w", "fresh"); err != nil {
		t.Fatalf("panes show: %v", err)
	}
}
