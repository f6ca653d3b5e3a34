package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
)

// mutateMu serializes read-modify-write cycles within one process. Stores
// shared between processes give last-writer-wins semantics.
var mutateMu sync.Mutex

// Load returns the record of workspace, or the default record when nothing
// is stored.
func Load(ctx context.Context, store Store, workspace string) (Record, error) {
	rec, ok, err := store.Get(ctx, workspace)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return NewRecord(workspace), nil
	}
	return rec, nil
}

// Restore builds the layout named by rec with the stored pane configuration
// applied.
func Restore(rec Record) (layout.Configurable, error) {
	l, err := layout.New[string](rec.Layout)
	if err != nil {
		return nil, err
	}
	c, ok := l.(layout.Configurable)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "layout %q has no pane configuration", rec.Layout)
	}
	c.SetConfig(rec.Panes)
	return c, nil
}

// Mutate loads the workspace, applies fn to a layout restored from it and
// stores the resulting configuration. If fn returns an error nothing is
// stored. The stored record is returned.
func Mutate(ctx context.Context, store Store, workspace string, fn func(layout.PanedLayout) error) (Record, error) {
	if err := errors.ValidateWorkspaceKey(workspace); err != nil {
		return Record{}, err
	}

	mutateMu.Lock()
	defer mutateMu.Unlock()

	rec, err := Load(ctx, store, workspace)
	if err != nil {
		return Record{}, fmt.Errorf("load workspace %s: %w", workspace, err)
	}
	l, err := Restore(rec)
	if err != nil {
		return Record{}, err
	}
	if err := fn(l); err != nil {
		return Record{}, err
	}

	rec.Panes = l.Config()
	rec.UpdatedAt = time.Now().UTC()
	if err := store.Set(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("store workspace %s: %w", workspace, err)
	}
	return rec, nil
}
