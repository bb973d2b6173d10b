// Package migrate applies the PostgreSQL schema files under migrations/.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dropAllFile = "000_drop_all.sql"

// FindDir は migrations ディレクトリを探す（リポジトリ直下 or 一つ上）
func FindDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// CollectUpFiles は .up.sql ファイル名をソート済みで返す
func CollectUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Status is one migration and whether it has been applied.
type Status struct {
	Name    string
	Applied bool
}

type Migrator struct {
	pool *pgxpool.Pool
	dir  string
}

func New(pool *pgxpool.Pool, dir string) *Migrator {
	return &Migrator{pool: pool, dir: dir}
}

func (m *Migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *Migrator) applied(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists)
	return exists, err
}

// Up applies every pending migration in name order and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	upFiles, err := CollectUpFiles(m.dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")
		done, err := m.applied(ctx, name)
		if err != nil {
			return count, fmt.Errorf("check %s: %w", name, err)
		}
		if done {
			continue
		}

		sql, err := os.ReadFile(filepath.Join(m.dir, filename))
		if err != nil {
			return count, fmt.Errorf("read %s: %w", name, err)
		}
		tx, err := m.pool.Begin(ctx)
		if err != nil {
			return count, err
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return count, fmt.Errorf("commit %s: %w", name, err)
		}
		count++
		slog.Info("migration completed", "migration", name)
	}
	return count, nil
}

// DropAll runs 000_drop_all.sql.
func (m *Migrator) DropAll(ctx context.Context) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, dropAllFile))
	if err != nil {
		return fmt.Errorf("read %s: %w", dropAllFile, err)
	}
	if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	slog.Info("all tables dropped")
	return nil
}

// Status lists every migration file with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return nil, err
	}
	upFiles, err := CollectUpFiles(m.dir)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(upFiles))
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")
		done, err := m.applied(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, Status{Name: name, Applied: done})
	}
	return out, nil
}
