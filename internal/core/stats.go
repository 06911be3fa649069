package core

import (
	"log/slog"
	"sort"
)

// RegionalMapping records the candidate codes seen for one regional label.
type RegionalMapping struct {
	Label string
	Codes []string
}

// RunStatistics accumulates the counters and sets of one conversion run.
// A run creates its own value and passes it through the pipeline.
type RunStatistics struct {
	Total           int
	Processed       int
	Skipped         int
	MissingData     int
	CountryNotFound int

	RegionalRequests           int
	RegionalSuccess            int
	RegionalFailed             int
	RegionalCountriesProcessed int

	// Anomalies counts records that got a default voucher category.
	Anomalies int

	// InvalidPages counts input pages without an offer list. Each is also
	// counted in Skipped.
	InvalidPages int

	images       map[string]struct{}
	missing      map[string]struct{}
	mappingOrder []string
	mappings     map[string][]string
}

// NewRunStatistics returns empty statistics.
func NewRunStatistics() *RunStatistics {
	return &RunStatistics{
		images:   make(map[string]struct{}),
		missing:  make(map[string]struct{}),
		mappings: make(map[string][]string),
	}
}

// AddImage records a logo file name. Empty names are ignored.
func (s *RunStatistics) AddImage(name string) {
	if name != "" {
		s.images[name] = struct{}{}
	}
}

// Images returns the unique logo file names, sorted.
func (s *RunStatistics) Images() []string {
	return sortedKeys(s.images)
}

// AddMissingCountry records a country label that is not in the registry.
func (s *RunStatistics) AddMissingCountry(label string) {
	if label != "" {
		s.missing[label] = struct{}{}
	}
}

// MissingCountries returns the unmatched country labels, sorted.
func (s *RunStatistics) MissingCountries() []string {
	return sortedKeys(s.missing)
}

// SetRegionalMapping records the candidate codes of a regional label. A label
// seen again keeps its first position and takes the latest codes.
func (s *RunStatistics) SetRegionalMapping(label string, codes []string) {
	if _, ok := s.mappings[label]; !ok {
		s.mappingOrder = append(s.mappingOrder, label)
	}
	s.mappings[label] = append([]string(nil), codes...)
}

// RegionalMappings returns the mappings in first-seen order.
func (s *RunStatistics) RegionalMappings() []RegionalMapping {
	out := make([]RegionalMapping, 0, len(s.mappingOrder))
	for _, label := range s.mappingOrder {
		out = append(out, RegionalMapping{Label: label, Codes: s.mappings[label]})
	}
	return out
}

// SkipInvalidPage counts an input page that held no offer list.
func (s *RunStatistics) SkipInvalidPage() {
	s.InvalidPages++
	s.Skipped++
}

// LogValue implements slog.LogValuer.
func (s *RunStatistics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("processed", s.Processed),
		slog.Int("skipped", s.Skipped),
		slog.Int("missing_data", s.MissingData),
		slog.Int("country_not_found", s.CountryNotFound),
		slog.Int("regional_requests", s.RegionalRequests),
		slog.Int("regional_success", s.RegionalSuccess),
		slog.Int("regional_failed", s.RegionalFailed),
		slog.Int("regional_countries", s.RegionalCountriesProcessed),
		slog.Int("anomalies", s.Anomalies),
		slog.Int("invalid_pages", s.InvalidPages),
		slog.Int("unique_images", len(s.images)),
		slog.Int("missing_countries", len(s.missing)),
	)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
