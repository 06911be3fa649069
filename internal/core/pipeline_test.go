package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeRoaming struct {
	codes map[string][]string
	err   error
	calls int
}

func (f *fakeRoaming) RoamingCountries(_ context.Context, offerID string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.codes[offerID], nil
}

func testPipeline(t *testing.T, roaming RoamingLookup) *Pipeline {
	t.Helper()
	return NewPipeline(Options{Merchant: "Acme", Registry: testRegistry(t), Roaming: roaming})
}

func TestRun_EndToEnd(t *testing.T) {
	p := testPipeline(t, nil)
	stats := NewRunStatistics()

	offers := []RawOffer{
		{Source: SourceJSON, ID: "V-1", TypeTag: "voucher", HasCountry: true, CountryCode: "US", CountryLabel: "United States"},
		{Source: SourceJSON, ID: "T-1", BrandName: "Lyca Mobile", TypeTag: "topup", HasCountry: true, CountryCode: "FR", CountryLabel: "France"},
		{Source: SourceJSON, ID: "ESIM-EU-1", BrandName: "Airalo", TypeTag: "esim",
			RegionLabels: []string{"Europe"}, RoamingCodes: []string{"FR", "DE"}},
	}

	records, err := p.Run(context.Background(), stats, offers)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Countries != "FR" || records[0].CountriesName != "France" {
		t.Errorf("single record countries = (%q, %q), want (FR, France)", records[0].Countries, records[0].CountriesName)
	}
	if records[1].Countries != "FR,DE" || records[1].CountriesName != "France,Germany" {
		t.Errorf("regional record countries = (%q, %q)", records[1].Countries, records[1].CountriesName)
	}

	counters := []struct {
		name string
		got  int
		want int
	}{
		{"Total", stats.Total, 3},
		{"Processed", stats.Processed, 2},
		{"Skipped", stats.Skipped, 1},
		{"MissingData", stats.MissingData, 1},
		{"RegionalRequests", stats.RegionalRequests, 1},
		{"RegionalSuccess", stats.RegionalSuccess, 1},
		{"RegionalCountriesProcessed", stats.RegionalCountriesProcessed, 2},
	}
	for _, c := range counters {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if got := stats.Images(); !reflect.DeepEqual(got, []string{"airalo.png", "lycamobile.png"}) {
		t.Errorf("Images() = %v", got)
	}
	mappings := stats.RegionalMappings()
	if len(mappings) != 1 || mappings[0].Label != "Europe" {
		t.Errorf("RegionalMappings() = %+v, want one for Europe", mappings)
	}
}

func TestRun_MissingData(t *testing.T) {
	tests := []struct {
		name  string
		offer RawOffer
	}{
		{"no id", RawOffer{Source: SourceJSON, BrandName: "B", TypeTag: "topup", HasCountry: true, CountryCode: "US"}},
		{"no brand", RawOffer{Source: SourceJSON, ID: "1", TypeTag: "topup", HasCountry: true, CountryCode: "US"}},
		{"json voucher without country", RawOffer{Source: SourceJSON, ID: "1", BrandName: "B", TypeTag: "voucher"}},
		{"json esim without country or regions", RawOffer{Source: SourceJSON, ID: "1", BrandName: "B", TypeTag: "esim"}},
		{"csv row without country", RawOffer{Source: SourceCSV, ID: "1", BrandName: "B", Subtypes: []string{"Standard"}}},
		{"malformed record", RawOffer{Source: SourceJSON, ID: "7", BrandName: "B", TypeTag: "topup", HasCountry: true,
			CountryCode: "US", Malformed: "json: cannot unmarshal number into Go struct field"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := NewRunStatistics()
			records, _ := testPipeline(t, nil).Run(context.Background(), stats, []RawOffer{tt.offer})

			if len(records) != 0 {
				t.Errorf("len(records) = %d, want 0", len(records))
			}
			if stats.MissingData != 1 || stats.Skipped != 1 {
				t.Errorf("MissingData = %d, Skipped = %d, want 1, 1", stats.MissingData, stats.Skipped)
			}
		})
	}
}

func TestRun_MalformedOfferDoesNotStopOthers(t *testing.T) {
	stats := NewRunStatistics()
	offers := []RawOffer{
		{Source: SourceJSON, ID: "7", Malformed: "json: cannot unmarshal number"},
		{Source: SourceJSON, ID: "T-1", BrandName: "Lyca Mobile", TypeTag: "topup", HasCountry: true, CountryCode: "FR", CountryLabel: "France"},
	}

	records, err := testPipeline(t, nil).Run(context.Background(), stats, offers)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(records) != 1 || records[0].OfferID != "T-1" {
		t.Errorf("records = %+v, want only T-1", records)
	}
	if stats.Total != 2 || stats.Processed != 1 || stats.MissingData != 1 || stats.Skipped != 1 {
		t.Errorf("stats = total %d, processed %d, missing %d, skipped %d; want 2, 1, 1, 1",
			stats.Total, stats.Processed, stats.MissingData, stats.Skipped)
	}
}

func TestProcess_SingleCountryUsesCode(t *testing.T) {
	p := testPipeline(t, nil)
	stats := NewRunStatistics()

	o := RawOffer{Source: SourceCSV, ID: "S-1", BrandName: "Netflix", HasCountry: true,
		CountryLabel: "United Kingdom", Subtypes: []string{"Digital Apps"}}
	rec, outcome := p.Process(context.Background(), stats, o)

	if outcome != OutcomeEmitted {
		t.Fatalf("outcome = %v, want emitted", outcome)
	}
	if rec.Countries != "GB" {
		t.Errorf("Countries = %q, want GB", rec.Countries)
	}
	if rec.BaseCategory != "entertainment-gift-cards" {
		t.Errorf("BaseCategory = %q", rec.BaseCategory)
	}
}

func TestProcess_CountryNotFound(t *testing.T) {
	p := testPipeline(t, nil)
	stats := NewRunStatistics()

	o := RawOffer{Source: SourceCSV, ID: "S-2", BrandName: "Local", HasCountry: true,
		CountryLabel: "Atlantis", Subtypes: []string{"Shopping"}}
	_, outcome := p.Process(context.Background(), stats, o)

	if outcome != OutcomeSkippedCountryNotFound {
		t.Fatalf("outcome = %v, want country not found", outcome)
	}
	if stats.CountryNotFound != 1 || stats.Skipped != 1 {
		t.Errorf("CountryNotFound = %d, Skipped = %d", stats.CountryNotFound, stats.Skipped)
	}
	if got := stats.MissingCountries(); !reflect.DeepEqual(got, []string{"Atlantis"}) {
		t.Errorf("MissingCountries() = %v", got)
	}
}

func TestProcess_UnknownVoucherSubtype(t *testing.T) {
	p := testPipeline(t, nil)
	stats := NewRunStatistics()

	o := RawOffer{Source: SourceCSV, ID: "S-3", BrandName: "Mystery", HasCountry: true,
		CountryLabel: "France", Subtypes: []string{"Foobar"}}
	rec, outcome := p.Process(context.Background(), stats, o)

	if outcome != OutcomeEmitted {
		t.Fatalf("outcome = %v, want emitted", outcome)
	}
	if rec.BaseCategory != "shopping-gift-cards" || rec.ProductKind != "shopping" {
		t.Errorf("category = (%q, %q), want default", rec.BaseCategory, rec.ProductKind)
	}
	if stats.Anomalies != 1 {
		t.Errorf("Anomalies = %d, want 1", stats.Anomalies)
	}
}

func TestProcess_CSVRegional(t *testing.T) {
	regionalRow := RawOffer{Source: SourceCSV, ID: "ESIM-EU-7", BrandName: "Airalo", HasCountry: true,
		CountryLabel: "Europe Region", Subtypes: []string{"Standard"}}

	tests := []struct {
		name        string
		roaming     *fakeRoaming
		wantOutcome Outcome
		wantCodes   string
		wantSuccess int
		wantFailed  int
	}{
		{
			name:        "lookup resolves",
			roaming:     &fakeRoaming{codes: map[string][]string{"ESIM-EU-7": {"FR", "ZZ", "DE"}}},
			wantOutcome: OutcomeEmittedRegional,
			wantCodes:   "FR,DE",
			wantSuccess: 1,
		},
		{
			name:        "no valid codes",
			roaming:     &fakeRoaming{codes: map[string][]string{"ESIM-EU-7": {"ZZ", "YY"}}},
			wantOutcome: OutcomeSkippedNoRegionalCountries,
			wantSuccess: 1,
		},
		{
			name:        "no data falls back and misses",
			roaming:     &fakeRoaming{},
			wantOutcome: OutcomeSkippedCountryNotFound,
			wantFailed:  1,
		},
		{
			name:        "lookup error falls back",
			roaming:     &fakeRoaming{err: errors.New("boom")},
			wantOutcome: OutcomeSkippedCountryNotFound,
			wantFailed:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := NewRunStatistics()
			rec, outcome := testPipeline(t, tt.roaming).Process(context.Background(), stats, regionalRow)

			if outcome != tt.wantOutcome {
				t.Fatalf("outcome = %v, want %v", outcome, tt.wantOutcome)
			}
			if rec.Countries != tt.wantCodes {
				t.Errorf("Countries = %q, want %q", rec.Countries, tt.wantCodes)
			}
			if stats.RegionalRequests != 1 || stats.RegionalSuccess != tt.wantSuccess || stats.RegionalFailed != tt.wantFailed {
				t.Errorf("regional counters = %d/%d/%d", stats.RegionalRequests, stats.RegionalSuccess, stats.RegionalFailed)
			}
			if tt.roaming.calls != 1 {
				t.Errorf("lookup calls = %d, want 1", tt.roaming.calls)
			}
		})
	}
}

func TestProcess_RegionalDescriptionAndCategory(t *testing.T) {
	p := testPipeline(t, nil)
	stats := NewRunStatistics()

	o := RawOffer{Source: SourceJSON, ID: "E-1", BrandName: "Airalo", TypeTag: "esim",
		RegionLabels: []string{"Europe", "Asia"}, RoamingCodes: []string{" US ", ""}}
	rec, outcome := p.Process(context.Background(), stats, o)

	if outcome != OutcomeEmittedRegional {
		t.Fatalf("outcome = %v, want regional", outcome)
	}
	if rec.Countries != "US" || rec.BaseCategory != "esim" || rec.ProductKind != "esim" {
		t.Errorf("record = %+v", rec)
	}
	if got := stats.RegionalMappings()[0]; got.Label != "Europe, Asia" || !reflect.DeepEqual(got.Codes, []string{"US"}) {
		t.Errorf("mapping = %+v", got)
	}
}

func TestRun_Idempotent(t *testing.T) {
	offers := []RawOffer{
		{Source: SourceCSV, ID: "1", BrandName: "Amazon.com", HasCountry: true, CountryLabel: "United States", Subtypes: []string{"Shopping"}},
		{Source: SourceCSV, ID: "2", BrandName: "Unknown", HasCountry: true, CountryLabel: "Atlantis"},
	}

	first, _ := testPipeline(t, nil).Run(context.Background(), NewRunStatistics(), offers)
	second, _ := testPipeline(t, nil).Run(context.Background(), NewRunStatistics(), offers)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ:\n%+v\n%+v", first, second)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testPipeline(t, nil).Run(ctx, NewRunStatistics(), []RawOffer{{ID: "1"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
