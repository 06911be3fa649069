// Command download-logos fetches the brand logos named in
// required-images.txt from the Brandfetch CDN into the images directory.
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/app"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logos"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/output"
)

func main() {
	app.Main("download-logos", run, "BRANDFETCH_CLIENT_ID")
}

func run(ctx context.Context, env *app.Env) error {
	cfg := env.Config
	logger := logging.FromContext(ctx)

	list := filepath.Join(cfg.Paths.OutputCSVDir, output.RequiredImagesFile)
	brands, err := logos.ReadRequiredFile(list)
	if err != nil {
		return fmt.Errorf("read required images: %w", err)
	}
	logger.Info("brands to download", "count", len(brands), "list", list)

	bf := cfg.Brandfetch
	d := logos.NewDownloader(logos.Config{
		CDNURL:     bf.CDNURL,
		ClientID:   bf.ClientID,
		Width:      bf.Width,
		Height:     bf.Height,
		BatchSize:  bf.BatchSize,
		BatchPause: bf.BatchPause,
		Timeout:    bf.Timeout,
		Dir:        cfg.Paths.ImagesDir,
	})

	sum, err := d.Run(ctx, brands)
	logger.Info("download complete", "summary", sum, "elapsed", env.Elapsed())
	if err != nil {
		return fmt.Errorf("download logos: %w", err)
	}
	return nil
}
