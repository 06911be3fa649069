// Command fetch-offers pages the Zendit console offers query and saves each
// page as offers<N>.json in the JSON data directory.
//
// Usage:
//
//	fetch-offers [max-pages]
//
// A positive max-pages overrides ZENDIT_MAX_PAGES; 0 fetches everything.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/app"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/ingest"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/zendit"
)

func main() {
	app.Main("fetch-offers", run, "ZENDIT_CLIENT_ID", "ZENDIT_CONSOLE_COOKIE")
}

func run(ctx context.Context, env *app.Env) error {
	cfg := env.Config
	logger := logging.FromContext(ctx)

	maxPages := cfg.Zendit.MaxPages
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid page cap: want a non-negative number, got %q", os.Args[1])
		}
		maxPages = n
	}
	if maxPages > 0 {
		logger.Info("page cap enabled", "max_pages", maxPages)
	}

	dir := cfg.Paths.DataJSONDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	fetcher := zendit.NewFetcher(zendit.FetcherConfig{
		URL:           cfg.Zendit.GraphQLURL,
		ClientID:      cfg.Zendit.ClientID,
		Cookie:        cfg.Zendit.ConsoleCookie,
		PageLimit:     cfg.Zendit.PageLimit,
		MaxPages:      maxPages,
		MaxFailures:   cfg.Zendit.MaxFailures,
		RequestDelay:  cfg.Zendit.RequestDelay,
		RateLimitWait: cfg.Zendit.RateLimitWait,
		Timeout:       cfg.Zendit.Timeout,
	})

	sum, err := fetcher.FetchAll(ctx, func(n int, body []byte) error {
		path := filepath.Join(dir, ingest.PageFileName(n))
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return err
		}
		logger.Info("page saved", "path", path)
		return nil
	})

	logger.Info("fetch summary",
		"requests", sum.Requests(),
		"successful", sum.Successful,
		"failed", sum.Failed,
		"offers", sum.Offers,
		"elapsed", env.Elapsed(),
	)
	if err != nil {
		return fmt.Errorf("fetch offers: %w", err)
	}
	return nil
}
