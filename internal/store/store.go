// Package store persists conversion runs to optional catalog databases.
//
// Each run is saved with a generated id, its statistics and every record it
// emitted, so successive exports can be compared. Sinks are configured by
// environment and are off when unset.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/config"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
)

// Run is one finished conversion.
type Run struct {
	ID         uuid.UUID
	Tool       string
	Source     core.Source
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      *core.RunStatistics
	Records    []core.CanonicalRecord
}

// NewRun starts a run record with a fresh id.
func NewRun(tool string, src core.Source, started time.Time) Run {
	return Run{
		ID:        uuid.New(),
		Tool:      tool,
		Source:    src,
		StartedAt: started,
	}
}

// Sink saves runs.
type Sink interface {
	SaveRun(ctx context.Context, run Run) error
	Close() error
}

// Multi saves to every sink it holds.
type Multi []Sink

func (m Multi) SaveRun(ctx context.Context, run Run) error {
	var errs []error
	for _, s := range m {
		if err := s.SaveRun(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open connects every sink configured in cfg. The result is empty when none is.
func Open(ctx context.Context, cfg config.StoreConfig) (Multi, error) {
	var sinks Multi

	if cfg.DatabaseURL != "" {
		pg, err := OpenPostgres(ctx, cfg.DatabaseURL, cfg.MaxConns, cfg.MinConns)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pg)
	}

	if cfg.SQLitePath != "" {
		lite, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, lite)
	}
	return sinks, nil
}

// ---- Shared row layout ----

var runColumns = []string{
	"id", "tool", "source", "started_at", "finished_at",
	"total", "processed", "skipped", "missing_data", "country_not_found",
	"regional_requests", "regional_success", "regional_failed",
	"regional_countries_processed", "anomalies", "invalid_pages",
}

var offerColumns = []string{
	"run_id", "position",
	"product_name", "product_card_image", "variant_name", "variant_description",
	"meta_title", "meta_description", "name_in_category_page", "slug",
	"countries", "base_category", "brand", "product_type",
	"offer_id", "product_kind", "name_in_about_section", "countries_name",
}

// runValues returns run in runColumns order, with the id as produced by id.
func runValues(run Run, id any) []any {
	s := run.Stats
	if s == nil {
		s = core.NewRunStatistics()
	}
	return []any{
		id, run.Tool, run.Source.String(), run.StartedAt, run.FinishedAt,
		s.Total, s.Processed, s.Skipped, s.MissingData, s.CountryNotFound,
		s.RegionalRequests, s.RegionalSuccess, s.RegionalFailed,
		s.RegionalCountriesProcessed, s.Anomalies, s.InvalidPages,
	}
}

// offerRows returns every record in offerColumns order. All sixteen record
// fields are stored regardless of source.
func offerRows(run Run, id any) [][]any {
	rows := make([][]any, 0, len(run.Records))
	for i, r := range run.Records {
		row := make([]any, 0, len(offerColumns))
		row = append(row, id, i+1)
		for _, v := range r.Values(core.SourceJSON) {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}
