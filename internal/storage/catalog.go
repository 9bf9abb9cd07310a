/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"decalsheet/internal/icons"
	dlog "decalsheet/internal/log"
	"decalsheet/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	CatalogFileName = "catalog.sqlite"

	// catalogSchema is bumped together with a new step in runMigrations.
	catalogSchema = 2
)

// CatalogPath returns the catalog database path for an icon directory.
func CatalogPath(iconDir string) string {
	return filepath.Join(iconDir, StateDirName, CatalogFileName)
}

// Catalog is a disposable SQLite index of an icon library. It is rebuilt from
// the directory listing with Sync and answers name and tag searches.
type Catalog struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenCatalog opens (or creates) the catalog of iconDir in WAL mode and
// brings its schema up to date.
func OpenCatalog(iconDir string) (*Catalog, error) {
	l := dlog.WithOperation(dlog.WithComponent("storage"), "catalog_open").With(
		slog.String("dir", iconDir),
	)
	if strings.TrimSpace(iconDir) == "" {
		return nil, errors.New("icon dir is required")
	}
	if err := os.MkdirAll(filepath.Join(iconDir, StateDirName), 0o755); err != nil {
		l.Error("create state dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create %s dir: %w", StateDirName, err)
	}

	path := CatalogPath(iconDir)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	for _, step := range []func(context.Context, *sql.DB) error{ensureVersion, ensureCatalogSchema, runMigrations} {
		if err := step(ctx, db); err != nil {
			_ = db.Close()
			l.Error("prepare catalog failed", slog.Any("err", err))
			return nil, err
		}
	}
	l.Debug("catalog ready", slog.String("path", path))
	return &Catalog{db: db, path: path, logger: dlog.WithComponent("storage.catalog")}, nil
}

// Path returns the database file location.
func (c *Catalog) Path() string { return c.path }

func (c *Catalog) Close() error { return c.db.Close() }

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
		id         INTEGER PRIMARY KEY CHECK(id=1),
		schema     INTEGER NOT NULL,
		app        TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh database starts at schema 1 and is migrated forward.
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureCatalogSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS icons (
			path       TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			name_lower TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS icon_tags (
			path TEXT    NOT NULL,
			pos  INTEGER NOT NULL,
			tag  TEXT    NOT NULL,
			PRIMARY KEY(path, pos),
			FOREIGN KEY(path) REFERENCES icons(path) ON DELETE CASCADE
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < catalogSchema {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_icon_tags_tag ON icon_tags(tag);`,
				`CREATE INDEX IF NOT EXISTS idx_icons_name ON icons(name_lower);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// Sync replaces the catalog contents with entries.
func (c *Catalog) Sync(ctx context.Context, entries []icons.Entry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, q := range []string{"DELETE FROM icon_tags;", "DELETE FROM icons;"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear catalog: %w", err)
		}
	}
	insIcon, err := tx.PrepareContext(ctx, "INSERT INTO icons(path, name, name_lower) VALUES(?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insIcon.Close()
	insTag, err := tx.PrepareContext(ctx, "INSERT INTO icon_tags(path, pos, tag) VALUES(?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insTag.Close()
	for _, e := range entries {
		if _, err := insIcon.ExecContext(ctx, e.Path, e.Name, strings.ToLower(e.Name)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert icon %s: %w", e.Path, err)
		}
		for i, t := range e.Tags {
			if _, err := insTag.ExecContext(ctx, e.Path, i, t); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert tag %s: %w", e.Path, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.logger.Debug("catalog synced", slog.Int("icons", len(entries)))
	return nil
}

// Search returns icons whose name contains query (case-insensitive) and that
// carry tag. Empty arguments do not filter. icons.UnknownTag selects untagged
// icons. Results are in library order.
func (c *Catalog) Search(ctx context.Context, query, tag string) ([]icons.Entry, error) {
	q := `SELECT i.path, i.name, t.tag FROM icons i
		LEFT JOIN icon_tags t ON t.path = i.path
		WHERE i.name_lower LIKE ? ESCAPE '\'`
	args := []any{"%" + escapeLike(strings.ToLower(query)) + "%"}
	switch tag {
	case "":
	case icons.UnknownTag:
		q += ` AND NOT EXISTS (SELECT 1 FROM icon_tags x WHERE x.path = i.path)`
	default:
		q += ` AND EXISTS (SELECT 1 FROM icon_tags x WHERE x.path = i.path AND x.tag = ?)`
		args = append(args, tag)
	}
	q += ` ORDER BY i.path, t.pos`

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	defer rows.Close()
	var out []icons.Entry
	for rows.Next() {
		var path, name string
		var t sql.NullString
		if err := rows.Scan(&path, &name, &t); err != nil {
			return nil, fmt.Errorf("scan icon: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].Path != path {
			out = append(out, icons.Entry{Name: name, Path: path})
		}
		if t.Valid {
			out[len(out)-1].Tags = append(out[len(out)-1].Tags, t.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate icons: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return icons.Less(out[i], out[j]) })
	return out, nil
}

// Tags returns the distinct tags of the catalog, sorted.
func (c *Catalog) Tags(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT tag FROM icon_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the number of cataloged icons.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM icons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count icons: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
