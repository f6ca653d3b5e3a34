// Package state persists the pane configuration of each workspace.
//
// A workspace is whatever the caller uses to group windows, typically one
// screen or virtual desktop. Each workspace has a [Record] holding its layout
// key and [layout.PaneConfig]. Five backends implement [Store]:
//   - memory: in-process map for tests and the preview TUI
//   - file: one JSON file per workspace for the CLI
//   - sqlite: one database file shared by CLI processes
//   - redis: shared storage for multi-instance servers
//   - mongo: document storage when Redis is not available
//
// # Usage
//
//	store, err := state.Open(ctx, state.Options{Backend: state.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec, err := state.Mutate(ctx, store, "desk-1", func(p layout.PanedLayout) error {
//	    p.IncreaseMainPaneCount()
//	    return nil
//	})
package state

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
)

// Record is the stored configuration of one workspace.
type Record struct {
	Workspace string            `json:"workspace" bson:"_id"`
	Layout    string            `json:"layout" bson:"layout"`
	Panes     layout.PaneConfig `json:"panes" bson:"panes"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// NewRecord returns the default record for a workspace.
func NewRecord(workspace string) Record {
	return Record{
		Workspace: workspace,
		Layout:    layout.DefaultKey,
		Panes:     layout.DefaultPaneConfig(),
	}
}

// Validate checks the workspace key, layout key and pane configuration.
func (r Record) Validate() error {
	if err := errors.ValidateWorkspaceKey(r.Workspace); err != nil {
		return err
	}
	if !layout.IsKnown(r.Layout) {
		return errors.New(errors.ErrCodeUnknownLayout, "unknown layout %q", r.Layout)
	}
	return r.Panes.Validate()
}

// Store is the interface for workspace storage backends.
type Store interface {
	// Get retrieves the record of a workspace. The boolean is false when
	// nothing is stored for it.
	Get(ctx context.Context, workspace string) (Record, bool, error)

	// Set stores a record, replacing any previous one.
	Set(ctx context.Context, rec Record) error

	// Delete removes a workspace. Deleting a missing workspace is not an error.
	Delete(ctx context.Context, workspace string) error

	// List returns every stored record ordered by workspace key.
	List(ctx context.Context) ([]Record, error)

	// Close releases backend resources.
	Close() error
}

func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		return cmp.Compare(a.Workspace, b.Workspace)
	})
}

// prepare validates rec and stamps the update time.
func prepare(rec Record) (Record, error) {
	if rec.Layout == "" {
		rec.Layout = layout.DefaultKey
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	return rec, nil
}
