package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migration struct {
	version int
	name    string
}

// migrate applies every NNN_*.sql file under dir that schema_migrations does
// not list yet, in version order. Each file runs in its own transaction
// together with its bookkeeping row.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	pending, err := listMigrations(fsys, dir)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := applyMigration(ctx, db, fsys, dir, m); err != nil {
			return err
		}
	}
	return nil
}

func listMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var ret []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if v := migrationVersion(entry.Name()); v > 0 {
			ret = append(ret, migration{version: v, name: entry.Name()})
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].version < ret[j].version })
	return ret, nil
}

func applyMigration(ctx context.Context, db *sql.DB, fsys fs.FS, dir string, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	var applied int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.version).Scan(&applied); err != nil {
		return fmt.Errorf("check migration %s: %w", m.name, err)
	}
	if applied > 0 {
		return nil
	}

	// fs.FS paths always use forward slashes
	content, err := fs.ReadFile(fsys, path.Join(dir, m.name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", m.name, err)
	}
	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		m.version, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("record migration %s: %w", m.name, err)
	}
	return tx.Commit()
}

// migrationVersion parses the leading number of a file name such as
// "001_init.sql". Names without one yield 0.
func migrationVersion(name string) int {
	prefix, _, _ := strings.Cut(name, "_")
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return n
}
