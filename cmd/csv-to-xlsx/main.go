// Command csv-to-xlsx converts the Products.csv export into a styled
// Offers.xlsx plus the report files, looking up roaming countries of
// regional eSIM rows through the Zendit API.
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/app"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/ingest"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/output"
)

func main() {
	app.Main("csv-to-xlsx", run, "MERCHANT_NAME")
}

func run(ctx context.Context, env *app.Env) error {
	cfg := env.Config
	logger := logging.FromContext(ctx)

	input := filepath.Join(cfg.Paths.DataCSVDir, "Products.csv")
	logger.Info("reading products", "path", input, "merchant", cfg.Merchant.Name)

	offers, err := ingest.ReadProductsFile(input)
	if err != nil {
		return fmt.Errorf("read products: %w", err)
	}
	logger.Info("products read", "records", len(offers))

	roaming, closeRoaming := env.Roaming(ctx)
	defer closeRoaming()

	sink, err := env.OpenSink(ctx)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	if sink != nil {
		defer sink.Close()
	}

	_, err = env.Convert(ctx, app.Job{
		Source:     core.SourceCSV,
		Offers:     offers,
		Stats:      core.NewRunStatistics(),
		Roaming:    roaming,
		OutputDir:  cfg.Paths.OutputCSVDir,
		OutputFile: "Offers.xlsx",
		Write:      output.WriteXLSX,
		Sink:       sink,
	})
	if err != nil {
		return fmt.Errorf("convert products: %w", err)
	}
	return nil
}
