package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

// ErrInvalidPage is returned for a page without data.offers.list.
var ErrInvalidPage = errors.New("invalid offers page")

var pageNumber = regexp.MustCompile(`\d+`)

// PageFileName returns the file name of the n-th saved page, e.g. offers3.json.
func PageFileName(n int) string {
	return "offers" + strconv.Itoa(n) + ".json"
}

// DiscoverPages returns the offers*.json files in dir ordered by the first
// number in their names. Returns core.ErrNoInput when there are none.
func DiscoverPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", core.ErrNoInput, dir)
		}
		return nil, fmt.Errorf("list pages: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, "offers") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no offers*.json files in %s", core.ErrNoInput, dir)
	}

	sort.SliceStable(names, func(i, j int) bool {
		return pageIndex(names[i]) < pageIndex(names[j])
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

func pageIndex(name string) int {
	n, err := strconv.Atoi(pageNumber.FindString(name))
	if err != nil {
		return 0
	}
	return n
}

// ReadPages decodes every page in dir. A page that cannot be read or has no
// offer list is logged and counted in stats; the rest are still used.
// Pages that yield no offers at all are core.ErrNoInput.
func ReadPages(ctx context.Context, dir string, stats *core.RunStatistics) ([]core.RawOffer, error) {
	paths, err := DiscoverPages(dir)
	if err != nil {
		return nil, err
	}

	var offers []core.RawOffer
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger := logging.WithFields(ctx, "page", filepath.Base(path))
		page, err := readPageFile(path)
		if err != nil {
			logger.Warn("skipping page", "error", err)
			stats.SkipInvalidPage()
			continue
		}
		logger.Info("page loaded", "offers", len(page))
		offers = append(offers, page...)
	}

	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: no offers in %d pages under %s", core.ErrNoInput, len(paths), dir)
	}
	return offers, nil
}

func readPageFile(path string) ([]core.RawOffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePage(f)
}

type pagePayload struct {
	Data *struct {
		Offers *struct {
			List []json.RawMessage `json:"list"`
		} `json:"offers"`
	} `json:"data"`
}

type offerJSON struct {
	OfferID string `json:"offerId"`
	Type    string `json:"type"`
	Brand   *struct {
		Name string `json:"name"`
	} `json:"brand"`
	Country *struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"country"`
	Regions    []string `json:"regions"`
	SubTypes   []string `json:"subTypes"`
	NotesShort string   `json:"notesShort"`
	Notes      string   `json:"notes"`
	Details    *struct {
		RoamingDetails []struct {
			Country *struct {
				Code string `json:"code"`
			} `json:"country"`
		} `json:"roamingDetails"`
	} `json:"details"`
}

// DecodePage decodes one GraphQL offers page. Offers are decoded one by one:
// an offer that does not fit the expected shape comes back with Malformed set
// instead of failing the page. A page without data.offers.list is invalid.
func DecodePage(r io.Reader) ([]core.RawOffer, error) {
	var p pagePayload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	if p.Data == nil || p.Data.Offers == nil || p.Data.Offers.List == nil {
		return nil, fmt.Errorf("%w: no data.offers.list", ErrInvalidPage)
	}

	offers := make([]core.RawOffer, len(p.Data.Offers.List))
	for i, msg := range p.Data.Offers.List {
		offers[i] = decodeOffer(msg)
	}
	return offers, nil
}

// decodeOffer converts one list entry. On failure the offer id is kept, when
// it can be read at all, so the skip can be traced.
func decodeOffer(msg json.RawMessage) core.RawOffer {
	var o offerJSON
	err := json.Unmarshal(msg, &o)
	if err == nil {
		return o.toRaw()
	}

	bad := core.RawOffer{Source: core.SourceJSON, Malformed: err.Error()}
	var id struct {
		OfferID any `json:"offerId"`
	}
	if json.Unmarshal(msg, &id) == nil && id.OfferID != nil {
		bad.ID = fmt.Sprint(id.OfferID)
	}
	return bad
}

func (o offerJSON) toRaw() core.RawOffer {
	raw := core.RawOffer{
		Source:       core.SourceJSON,
		ID:           o.OfferID,
		TypeTag:      o.Type,
		RegionLabels: o.Regions,
		Subtypes:     o.SubTypes,
		NotesShort:   o.NotesShort,
		NotesLong:    o.Notes,
	}
	if o.Brand != nil {
		raw.BrandName = o.Brand.Name
	}
	if o.Country != nil {
		raw.HasCountry = true
		raw.CountryCode = strings.TrimSpace(o.Country.Code)
		raw.CountryLabel = o.Country.Name
	}
	if o.Details != nil {
		for _, rd := range o.Details.RoamingDetails {
			if rd.Country == nil {
				continue
			}
			if code := strings.TrimSpace(rd.Country.Code); code != "" {
				raw.RoamingCodes = append(raw.RoamingCodes, code)
			}
		}
	}
	return raw
}
