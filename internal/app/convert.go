package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/output"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/store"
)

// WriteFunc writes the converted records to path.
type WriteFunc func(path string, records []core.CanonicalRecord, src core.Source) error

// Job is one conversion: offers already read from the input, where to
// write the result, and how.
type Job struct {
	Source core.Source
	Offers []core.RawOffer
	Stats  *core.RunStatistics

	// Roaming is used for regional CSV rows; nil disables lookups
	Roaming core.RoamingLookup

	OutputDir  string
	OutputFile string
	Write      WriteFunc

	// Sink receives the finished run; nil skips persistence
	Sink store.Sink
}

// Result summarizes a finished conversion.
type Result struct {
	Records int
	Output  string
	Reports []string
}

// Convert runs the normalization pipeline over job.Offers and writes the
// output file, the report files and, when configured, the catalog run.
func (e *Env) Convert(ctx context.Context, job Job) (Result, error) {
	var res Result
	logger := logging.FromContext(ctx)

	if len(job.Offers) == 0 {
		return res, fmt.Errorf("%w: nothing to convert", core.ErrNoInput)
	}

	reg, err := core.LoadRegistryFile(e.Config.Paths.CountriesFile)
	if err != nil {
		return res, fmt.Errorf("load countries: %w", err)
	}
	logger.Info("country registry loaded", "countries", reg.Len())

	pipeline := core.NewPipeline(core.Options{
		Merchant: e.Config.Merchant.Name,
		Registry: reg,
		Roaming:  job.Roaming,
	})

	records, err := pipeline.Run(ctx, job.Stats, job.Offers)
	if err != nil {
		return res, err
	}
	res.Records = len(records)

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}

	res.Output = filepath.Join(job.OutputDir, job.OutputFile)
	if err := job.Write(res.Output, records, job.Source); err != nil {
		return res, err
	}
	logger.Info("output written", "path", res.Output, "records", len(records))

	res.Reports, err = output.WriteReports(job.OutputDir, job.Stats, reg)
	if err != nil {
		return res, err
	}
	for _, path := range res.Reports {
		logger.Info("report written", "path", path)
	}

	if job.Sink != nil {
		run := store.NewRun(e.Tool, job.Source, e.Started)
		run.FinishedAt = time.Now()
		run.Stats = job.Stats
		run.Records = records
		if err := job.Sink.SaveRun(ctx, run); err != nil {
			return res, fmt.Errorf("save catalog run: %w", err)
		}
	}

	logger.Info("conversion complete", "stats", job.Stats, "elapsed", e.Elapsed())
	return res, nil
}

// OpenSink connects the configured catalog sinks. It returns nil when none
// is configured.
func (e *Env) OpenSink(ctx context.Context) (store.Sink, error) {
	sinks, err := store.Open(ctx, e.Config.Store)
	if err != nil {
		return nil, err
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}
