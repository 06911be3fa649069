package core

import (
	"strings"
	"testing"
)

func TestOutcomeCodes(t *testing.T) {
	tests := []struct {
		outcome     Outcome
		wantCode    string
		wantSkipped bool
	}{
		{OutcomeEmitted, "EMT001", false},
		{OutcomeEmittedRegional, "EMT002", false},
		{OutcomeSkippedMissingData, "SKP001", true},
		{OutcomeSkippedCountryNotFound, "SKP002", true},
		{OutcomeSkippedNoRegionalCountries, "SKP003", true},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		if got := tt.outcome.Code(); got != tt.wantCode {
			t.Errorf("%v.Code() = %q, want %q", tt.outcome, got, tt.wantCode)
		}
		if got := tt.outcome.Skipped(); got != tt.wantSkipped {
			t.Errorf("%v.Skipped() = %v, want %v", tt.outcome, got, tt.wantSkipped)
		}
		if tt.wantSkipped && tt.outcome.Action() == "" {
			t.Errorf("%v has no action", tt.outcome)
		}
		if seen[tt.wantCode] {
			t.Errorf("duplicate code %s", tt.wantCode)
		}
		seen[tt.wantCode] = true
	}

	if got := Outcome(99).String(); got != "Outcome(99)" {
		t.Errorf("unknown outcome String() = %q", got)
	}
}

func TestAnomalyMessages(t *testing.T) {
	unknown := Anomaly{Kind: AnomalyUnknownSubtype, OfferID: "V-1", Subtype: "Foobar"}
	if unknown.Code() != "ANM001" || !strings.Contains(unknown.String(), `"Foobar"`) {
		t.Errorf("unknown anomaly = %s %q", unknown.Code(), unknown.String())
	}

	missing := Anomaly{Kind: AnomalyMissingSubtype, OfferID: "V-2"}
	if missing.Code() != "ANM002" || !strings.Contains(missing.String(), "V-2") {
		t.Errorf("missing anomaly = %s %q", missing.Code(), missing.String())
	}
}
