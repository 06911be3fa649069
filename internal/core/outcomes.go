package core

// # Outcome Codes Reference
//
// Every record ends in exactly one outcome. Skips and anomalies are logged at
// warn level with their code so a run's log can be grepped for them.
//
//	EMT001 - Emitted: single-country record written
//	EMT002 - Emitted: regional record written
//	SKP001 - Missing data: id, brand or a required country is absent
//	         Action: Fix the upstream record
//	SKP002 - Country not found: the country is not in the registry
//	         Action: Check missing-countries.txt and extend the country table
//	SKP003 - No valid regional countries: no roaming code is in the registry
//	         Action: Check regional-mappings.txt
//
// Anomalies do not stop a record:
//
//	ANM001 - Unknown voucher subtype, default category used
//	ANM002 - Voucher without subtype, default category used

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when a run has nothing to convert.
var ErrNoInput = errors.New("no input records")

// Outcome is the terminal state of one record in the pipeline.
type Outcome int

const (
	OutcomeEmitted Outcome = iota
	OutcomeEmittedRegional
	OutcomeSkippedMissingData
	OutcomeSkippedCountryNotFound
	OutcomeSkippedNoRegionalCountries
)

type outcomeInfo struct {
	Code    string
	Message string
	Action  string
}

var outcomes = map[Outcome]outcomeInfo{
	OutcomeEmitted: {
		Code:    "EMT001",
		Message: "Record emitted",
	},
	OutcomeEmittedRegional: {
		Code:    "EMT002",
		Message: "Regional record emitted",
	},
	OutcomeSkippedMissingData: {
		Code:    "SKP001",
		Message: "Missing required data",
		Action:  "Fix the upstream record",
	},
	OutcomeSkippedCountryNotFound: {
		Code:    "SKP002",
		Message: "Country not found",
		Action:  "Check missing-countries.txt and extend the country table",
	},
	OutcomeSkippedNoRegionalCountries: {
		Code:    "SKP003",
		Message: "No valid regional countries",
		Action:  "Check regional-mappings.txt",
	},
}

// Code returns the stable outcome code, e.g. "SKP002".
func (o Outcome) Code() string {
	return outcomes[o].Code
}

func (o Outcome) String() string {
	info, ok := outcomes[o]
	if !ok {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return info.Message
}

// Action returns what to do about a skip, or "".
func (o Outcome) Action() string {
	return outcomes[o].Action
}

// Skipped reports whether the record was dropped.
func (o Outcome) Skipped() bool {
	return o != OutcomeEmitted && o != OutcomeEmittedRegional
}

// AnomalyKind classifies a data-quality problem that did not stop a record.
type AnomalyKind int

const (
	AnomalyUnknownSubtype AnomalyKind = iota
	AnomalyMissingSubtype
)

// Anomaly is reported by the synthesizer when it had to fall back to a default.
type Anomaly struct {
	Kind    AnomalyKind
	OfferID string
	Subtype string
}

// Code returns the stable anomaly code.
func (a Anomaly) Code() string {
	if a.Kind == AnomalyMissingSubtype {
		return "ANM002"
	}
	return "ANM001"
}

func (a Anomaly) String() string {
	if a.Kind == AnomalyMissingSubtype {
		return fmt.Sprintf("voucher %s has no subtype, using default category", a.OfferID)
	}
	return fmt.Sprintf("unknown voucher subtype %q for offer %s, using default category", a.Subtype, a.OfferID)
}
