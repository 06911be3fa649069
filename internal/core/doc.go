// Package core normalizes Zendit offers into storefront catalog records.
//
// It holds no I/O: the ingest package builds [RawOffer] values from the CSV
// export or the saved JSON pages, and the output package writes the
// [CanonicalRecord] values produced here.
//
// # Pipeline
//
// Each offer moves through [Pipeline.Process]:
//
//   - validation of the offer id and brand name (and a country for shapes
//     that require one),
//   - classification into a [Family] and a regional flag,
//   - country resolution, either a single country or a regional merge of
//     candidate codes,
//   - field synthesis by the [Synthesizer].
//
// Every offer ends with exactly one [Outcome]. Skips are counted in the
// [RunStatistics] passed to the call, never returned as errors.
//
// # Country resolution
//
// A single country is resolved by trying the [Strategy] values in order:
// [ByCode], [ByLabel], then [ByOfferID] for eSIM offers whose id embeds a
// country code. Regional offers keep every candidate code known to the
// [Registry] and drop the rest.
//
// # Outcome codes
//
// Outcomes and anomalies carry stable codes for log searches:
//
//	EMT001  emitted
//	EMT002  emitted as regional
//	SKP001  missing id, brand or country
//	SKP002  country not in registry
//	SKP003  no regional candidate resolved
//	ANM001  unknown voucher subtype, default category used
//	ANM002  voucher without subtype, default category used
package core
