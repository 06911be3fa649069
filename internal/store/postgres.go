package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_runs (
		id uuid PRIMARY KEY,
		tool text NOT NULL,
		source text NOT NULL,
		started_at timestamptz NOT NULL,
		finished_at timestamptz NOT NULL,
		total integer NOT NULL,
		processed integer NOT NULL,
		skipped integer NOT NULL,
		missing_data integer NOT NULL,
		country_not_found integer NOT NULL,
		regional_requests integer NOT NULL,
		regional_success integer NOT NULL,
		regional_failed integer NOT NULL,
		regional_countries_processed integer NOT NULL,
		anomalies integer NOT NULL,
		invalid_pages integer NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_offers (
		run_id uuid NOT NULL REFERENCES catalog_runs(id) ON DELETE CASCADE,
		position integer NOT NULL,
		product_name text NOT NULL,
		product_card_image text NOT NULL,
		variant_name text NOT NULL,
		variant_description text NOT NULL,
		meta_title text NOT NULL,
		meta_description text NOT NULL,
		name_in_category_page text NOT NULL,
		slug text NOT NULL,
		countries text NOT NULL,
		base_category text NOT NULL,
		brand text NOT NULL,
		product_type text NOT NULL,
		offer_id text NOT NULL,
		product_kind text NOT NULL,
		name_in_about_section text NOT NULL,
		countries_name text NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS catalog_offers_offer_id_idx ON catalog_offers (offer_id)`,
}

// Postgres is a Sink backed by a pgx connection pool. Records are loaded
// with COPY inside the run's transaction.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and creates the catalog tables if needed.
func OpenPostgres(ctx context.Context, databaseURL string, maxConns, minConns int) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	poolConfig.MinConns = int32(minConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create catalog schema: %w", err)
		}
	}

	logging.FromContext(ctx).Info("catalog database connected", "sink", "postgres")
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) SaveRun(ctx context.Context, run Run) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertRunSQL(postgresPlaceholder), runValues(run, run.ID)...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"catalog_offers"},
		offerColumns,
		pgx.CopyFromRows(offerRows(run, run.ID)),
	)
	if err != nil {
		return fmt.Errorf("copy offers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logging.WithFields(ctx, "sink", "postgres", "run", run.ID.String()).Info("run saved", "offers", n)
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func postgresPlaceholder(i int) string { return fmt.Sprintf("$%d", i) }

func sqlitePlaceholder(int) string { return "?" }

// insertRunSQL builds the catalog_runs insert with the dialect's placeholders.
func insertRunSQL(placeholder func(int) string) string {
	ph := make([]string, len(runColumns))
	for i := range runColumns {
		ph[i] = placeholder(i + 1)
	}
	return `INSERT INTO catalog_runs (` + strings.Join(runColumns, ", ") + `) VALUES (` + strings.Join(ph, ", ") + `)`
}
