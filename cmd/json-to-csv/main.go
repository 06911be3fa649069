// Command json-to-csv converts the saved offers<N>.json pages into a flat
// Offers.csv plus the report files.
package main

import (
	"context"
	"fmt"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/app"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/ingest"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/output"
)

func main() {
	app.Main("json-to-csv", run, "MERCHANT_NAME")
}

func run(ctx context.Context, env *app.Env) error {
	cfg := env.Config
	logger := logging.FromContext(ctx)
	stats := core.NewRunStatistics()

	logger.Info("reading offer pages", "dir", cfg.Paths.DataJSONDir, "merchant", cfg.Merchant.Name)
	offers, err := ingest.ReadPages(ctx, cfg.Paths.DataJSONDir, stats)
	if err != nil {
		return fmt.Errorf("read offer pages: %w", err)
	}
	logger.Info("offers read", "offers", len(offers), "invalid_pages", stats.InvalidPages)

	sink, err := env.OpenSink(ctx)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	if sink != nil {
		defer sink.Close()
	}

	_, err = env.Convert(ctx, app.Job{
		Source:     core.SourceJSON,
		Offers:     offers,
		Stats:      stats,
		OutputDir:  cfg.Paths.OutputJSONDir,
		OutputFile: "Offers.csv",
		Write:      output.WriteCSV,
		Sink:       sink,
	})
	if err != nil {
		return fmt.Errorf("convert offers: %w", err)
	}
	return nil
}
