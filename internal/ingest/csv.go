// Package ingest builds core.RawOffer values from the two upstream shapes:
// the semicolon-delimited product export and the paged JSON offer dumps.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
)

// Product export columns.
const (
	ColID         = "ID"
	ColBrand      = "Brand"
	ColCountry    = "Country"
	ColSubtype    = "Subtype"
	ColNotesShort = "Product Notes Short"
	ColNotes      = "Product Notes"
)

// ErrMissingColumn is returned when the export lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ReadProductsFile parses the product export at path.
func ReadProductsFile(path string) ([]core.RawOffer, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNoInput, path)
		}
		return nil, fmt.Errorf("open products: %w", err)
	}
	defer f.Close()

	return ReadProducts(f)
}

// ReadProducts parses a semicolon-delimited product export. Blank lines are
// skipped; every other row becomes one offer, even if it is incomplete.
// An export without rows is core.ErrNoInput.
func ReadProducts(r io.Reader) ([]core.RawOffer, error) {
	body, err := skipPreamble(r)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	cr := csv.NewReader(body)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty product export", core.ErrNoInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := makeHeaderIndex(header)
	for _, col := range []string{ColID, ColBrand} {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var offers []core.RawOffer
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read products: %w", err)
		}
		if isBlank(record) {
			continue
		}
		offers = append(offers, productOffer(idx, record))
	}

	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: product export has no rows", core.ErrNoInput)
	}
	return offers, nil
}

func productOffer(idx headerIndex, record []string) core.RawOffer {
	country := idx.get(record, ColCountry)

	o := core.RawOffer{
		Source:       core.SourceCSV,
		ID:           idx.get(record, ColID),
		BrandName:    idx.get(record, ColBrand),
		HasCountry:   country != "",
		CountryLabel: country,
		NotesShort:   idx.get(record, ColNotesShort),
		NotesLong:    idx.get(record, ColNotes),
	}
	if subtype := idx.get(record, ColSubtype); subtype != "" {
		o.Subtypes = []string{subtype}
	}
	return o
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
