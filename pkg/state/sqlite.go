package state

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS workspaces (
	workspace       TEXT PRIMARY KEY,
	layout          TEXT NOT NULL,
	main_pane_count INTEGER NOT NULL,
	main_pane_ratio REAL NOT NULL,
	updated_at      TEXT NOT NULL
)`

// SQLiteStore keeps all workspaces in one SQLite database file. Several
// CLI processes can share it; writes are serialized by SQLite's lock.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath returns ~/.config/stacktile/workspaces.db, honoring
// XDG_CONFIG_HOME.
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(dir), "workspaces.db"), nil
}

// NewSQLiteStore opens (and creates if needed) the database at path. An
// empty path selects [DefaultSQLitePath].
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		p, err := DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create workspaces table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, workspace string) (Record, bool, error) {
	if err := errors.ValidateWorkspaceKey(workspace); err != nil {
		return Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT workspace, layout, main_pane_count, main_pane_ratio, updated_at
		 FROM workspaces WHERE workspace = ?`, workspace)
	rec, err := scanRecord(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read workspace %s: %w", workspace, err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, rec Record) error {
	rec, err := prepare(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workspaces(workspace, layout, main_pane_count, main_pane_ratio, updated_at)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(workspace) DO UPDATE SET
		   layout = excluded.layout,
		   main_pane_count = excluded.main_pane_count,
		   main_pane_ratio = excluded.main_pane_ratio,
		   updated_at = excluded.updated_at`,
		rec.Workspace, rec.Layout, rec.Panes.MainPaneCount, rec.Panes.MainPaneRatio,
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write workspace %s: %w", rec.Workspace, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, workspace string) error {
	if err := errors.ValidateWorkspaceKey(workspace); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE workspace = ?`, workspace); err != nil {
		return fmt.Errorf("delete workspace %s: %w", workspace, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT workspace, layout, main_pane_count, main_pane_ratio, updated_at
		 FROM workspaces ORDER BY workspace`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list workspaces: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		panes   layout.PaneConfig
		updated string
	)
	if err := row.Scan(&rec.Workspace, &rec.Layout, &panes.MainPaneCount, &panes.MainPaneRatio, &updated); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return Record{}, fmt.Errorf("parse updated_at of %s: %w", rec.Workspace, err)
	}
	rec.Panes = panes
	rec.UpdatedAt = t
	return rec, nil
}

var _ Store = (*SQLiteStore)(nil)
