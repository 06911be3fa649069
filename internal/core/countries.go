package core

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

//go:embed countries.json
var embeddedCountries []byte

// Registry is the immutable table of known countries, indexed by code and by
// display label. Both must be unique.
type Registry struct {
	byCode  map[string]Country
	byLabel map[string]Country
	all     []Country
}

// NewRegistry builds a registry from the given entries.
// Returns an error on an empty field or on a duplicate code or label.
func NewRegistry(countries []Country) (*Registry, error) {
	r := &Registry{
		byCode:  make(map[string]Country, len(countries)),
		byLabel: make(map[string]Country, len(countries)),
		all:     make([]Country, 0, len(countries)),
	}

	for i, c := range countries {
		if c.Code == "" || c.Label == "" {
			return nil, fmt.Errorf("country %d: code and label are required", i)
		}
		if _, exists := r.byCode[c.Code]; exists {
			return nil, fmt.Errorf("country code already registered: %s", c.Code)
		}
		if _, exists := r.byLabel[c.Label]; exists {
			return nil, fmt.Errorf("country label already registered: %s", c.Label)
		}
		r.byCode[c.Code] = c
		r.byLabel[c.Label] = c
		r.all = append(r.all, c)
	}

	sort.Slice(r.all, func(i, j int) bool {
		return r.all[i].Code < r.all[j].Code
	})

	return r, nil
}

// LoadRegistry decodes a JSON array of {"value": code, "label": label} entries.
func LoadRegistry(rd io.Reader) (*Registry, error) {
	var countries []Country
	if err := json.NewDecoder(rd).Decode(&countries); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	return NewRegistry(countries)
}

// LoadRegistryFile reads the country table from path, or returns the embedded
// table when path is empty.
func LoadRegistryFile(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open countries file: %w", err)
	}
	defer f.Close()

	return LoadRegistry(f)
}

// DefaultRegistry returns the embedded ISO 3166-1 country table.
func DefaultRegistry() (*Registry, error) {
	var countries []Country
	if err := json.Unmarshal(embeddedCountries, &countries); err != nil {
		return nil, fmt.Errorf("decode embedded countries: %w", err)
	}
	return NewRegistry(countries)
}

// ByCode returns the country with the exact code.
func (r *Registry) ByCode(code string) (Country, bool) {
	c, ok := r.byCode[code]
	return c, ok
}

// ByLabel returns the country with the exact display label.
func (r *Registry) ByLabel(label string) (Country, bool) {
	c, ok := r.byLabel[label]
	return c, ok
}

// All returns every country sorted by code.
func (r *Registry) All() []Country {
	out := make([]Country, len(r.all))
	copy(out, r.all)
	return out
}

// Len returns the number of countries.
func (r *Registry) Len() int {
	return len(r.all)
}
