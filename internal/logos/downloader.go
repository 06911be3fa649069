package logos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

// Config configures a Downloader.
type Config struct {
	CDNURL     string
	ClientID   string
	Width      int
	Height     int
	BatchSize  int
	BatchPause time.Duration
	Timeout    time.Duration

	// Dir receives {File}.png for every downloaded brand
	Dir string
}

// Summary counts the outcome of a download run.
type Summary struct {
	Total   int
	Success int
	Failed  int
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("success", s.Success),
		slog.Int("failed", s.Failed),
	)
}

// Downloader fetches logos in fixed-size concurrent batches.
type Downloader struct {
	cfg    Config
	client *http.Client
}

// NewDownloader creates a downloader. A batch size below one is treated as one.
func NewDownloader(cfg Config) *Downloader {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Downloader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// URL returns the CDN address of b's logo.
func (d *Downloader) URL(b Brand) string {
	return fmt.Sprintf("%s/%s/w/%d/h/%d/logo?c=%s",
		strings.TrimRight(d.cfg.CDNURL, "/"), b.Domain(), d.cfg.Width, d.cfg.Height, d.cfg.ClientID)
}

// Run downloads every brand. Brands within a batch are fetched concurrently;
// batches run one after another with a pause between them. A failed brand is
// logged and counted, never returned as an error. Run only fails when ctx is
// cancelled or the target directory cannot be created.
func (d *Downloader) Run(ctx context.Context, brands []Brand) (Summary, error) {
	sum := Summary{Total: len(brands)}
	logger := logging.FromContext(ctx)

	if err := os.MkdirAll(d.cfg.Dir, 0o755); err != nil {
		return sum, fmt.Errorf("create images dir: %w", err)
	}

	batches := (len(brands) + d.cfg.BatchSize - 1) / d.cfg.BatchSize
	for i := 0; i < batches; i++ {
		start := i * d.cfg.BatchSize
		end := min(start+d.cfg.BatchSize, len(brands))
		logger.Info("processing batch", "batch", i+1, "of", batches)

		ok := make([]bool, end-start)
		g, gctx := errgroup.WithContext(ctx)
		for j, b := range brands[start:end] {
			g.Go(func() error {
				ok[j] = d.download(gctx, b)
				return nil
			})
		}
		g.Wait()

		for _, v := range ok {
			if v {
				sum.Success++
			} else {
				sum.Failed++
			}
		}

		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if i < batches-1 && d.cfg.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(d.cfg.BatchPause):
			}
		}
	}
	return sum, nil
}

// download fetches and stores one logo, reporting success.
func (d *Downloader) download(ctx context.Context, b Brand) bool {
	url := d.URL(b)
	logger := logging.WithFields(ctx, "brand", b.Name, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error("build logo request", "error", err)
		return false
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Referer", "https://brandfetch.com/")

	resp, err := d.client.Do(req)
	if err != nil {
		logger.Error("logo request failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("read logo body", "error", err)
		return false
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Warn("logo not found")
		return false
	case resp.StatusCode != http.StatusOK:
		logger.Error("unexpected logo status", "status", resp.StatusCode, "body", string(head(body, 200)))
		return false
	}

	contentType := resp.Header.Get("Content-Type")
	if len(body) < MinImageSize {
		logger.Warn("logo body empty or truncated", "bytes", len(body))
		return false
	}
	format, via, ok := DetectFormat(body, contentType)
	if !ok {
		logger.Warn("could not determine image format", "content_type", contentType)
		return false
	}

	name := b.File + ".png"
	if err := os.WriteFile(filepath.Join(d.cfg.Dir, name), body, 0o644); err != nil {
		logger.Error("save logo", "error", err)
		return false
	}
	logger.Info("logo saved", "file", name, "format", format, "detected_by", via)
	return true
}
