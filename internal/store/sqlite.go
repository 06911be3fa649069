package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_runs (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		total INTEGER NOT NULL,
		processed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		missing_data INTEGER NOT NULL,
		country_not_found INTEGER NOT NULL,
		regional_requests INTEGER NOT NULL,
		regional_success INTEGER NOT NULL,
		regional_failed INTEGER NOT NULL,
		regional_countries_processed INTEGER NOT NULL,
		anomalies INTEGER NOT NULL,
		invalid_pages INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_offers (
		run_id TEXT NOT NULL REFERENCES catalog_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		product_name TEXT NOT NULL,
		product_card_image TEXT NOT NULL,
		variant_name TEXT NOT NULL,
		variant_description TEXT NOT NULL,
		meta_title TEXT NOT NULL,
		meta_description TEXT NOT NULL,
		name_in_category_page TEXT NOT NULL,
		slug TEXT NOT NULL,
		countries TEXT NOT NULL,
		base_category TEXT NOT NULL,
		brand TEXT NOT NULL,
		product_type TEXT NOT NULL,
		offer_id TEXT NOT NULL,
		product_kind TEXT NOT NULL,
		name_in_about_section TEXT NOT NULL,
		countries_name TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS catalog_offers_offer_id_idx ON catalog_offers (offer_id)`,
}

// SQLite is a Sink backed by a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create catalog schema: %w", err)
		}
	}

	logging.FromContext(ctx).Info("catalog database opened", "sink", "sqlite", "path", path)
	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := run.ID.String()
	vals := runValues(run, id)
	vals[3] = run.StartedAt.UTC().Format(time.RFC3339)
	vals[4] = run.FinishedAt.UTC().Format(time.RFC3339)

	if _, err := tx.ExecContext(ctx, insertRunSQL(sqlitePlaceholder), vals...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	ph := strings.TrimSuffix(strings.Repeat("?,", len(offerColumns)), ",")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO catalog_offers (`+strings.Join(offerColumns, ", ")+`) VALUES (`+ph+`)`)
	if err != nil {
		return fmt.Errorf("prepare offer insert: %w", err)
	}
	defer stmt.Close()

	rows := offerRows(run, id)
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert offer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logging.WithFields(ctx, "sink", "sqlite", "run", id).Info("run saved", "offers", len(rows))
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
