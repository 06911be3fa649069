package core

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

var validate = validator.New()

// RoamingLookup returns the roaming country codes of a regional eSIM offer.
// A nil result with a nil error means the upstream has no data for it.
type RoamingLookup interface {
	RoamingCountries(ctx context.Context, offerID string) ([]string, error)
}

// Options configures a Pipeline.
type Options struct {
	Merchant   string
	Registry   *Registry
	Categories *CategoryTable

	// Roaming supplies candidates for regional CSV rows. JSON offers carry
	// their own. Nil means every CSV regional row falls back to the
	// single-country path.
	Roaming RoamingLookup
}

// Pipeline turns RawOffers into CanonicalRecords. It holds no per-run state;
// counters live in the RunStatistics passed to each call.
type Pipeline struct {
	categories *CategoryTable
	synth      *Synthesizer
	resolver   *Resolver
	roaming    RoamingLookup
}

// NewPipeline builds a pipeline. Categories default to DefaultCategories.
func NewPipeline(opts Options) *Pipeline {
	cats := opts.Categories
	if cats == nil {
		cats = DefaultCategories()
	}
	return &Pipeline{
		categories: cats,
		synth:      &Synthesizer{Merchant: opts.Merchant, Categories: cats},
		resolver:   &Resolver{Registry: opts.Registry},
		roaming:    opts.Roaming,
	}
}

// Run processes offers in order and returns the emitted records.
// It only fails when ctx is cancelled; records already emitted are returned.
func (p *Pipeline) Run(ctx context.Context, stats *RunStatistics, offers []RawOffer) ([]CanonicalRecord, error) {
	stats.Total += len(offers)

	records := make([]CanonicalRecord, 0, len(offers))
	for _, o := range offers {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		rec, outcome := p.Process(ctx, stats, o)
		if !outcome.Skipped() {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Process drives one offer to its terminal outcome.
func (p *Pipeline) Process(ctx context.Context, stats *RunStatistics, o RawOffer) (CanonicalRecord, Outcome) {
	logger := logging.WithFields(ctx, "offer_id", o.ID, "source", o.Source.String())

	if o.Malformed != "" {
		return p.skip(ctx, stats, o, OutcomeSkippedMissingData, "reason", "malformed record", "error", o.Malformed)
	}

	if err := validate.Struct(o); err != nil {
		return p.skip(ctx, stats, o, OutcomeSkippedMissingData, "reason", "missing id or brand")
	}

	cls := Classify(o, p.categories)

	if !o.HasCountry && (o.Source == SourceCSV || cls.Family != FamilyESIM) {
		return p.skip(ctx, stats, o, OutcomeSkippedMissingData, "reason", "missing country")
	}

	if cls.Regional {
		if rec, outcome, done := p.regional(ctx, stats, o, cls.Family); done {
			return rec, outcome
		}
		logger.Info("falling back to single-country path")
	}

	return p.single(ctx, stats, o, cls.Family)
}

func (p *Pipeline) regional(ctx context.Context, stats *RunStatistics, o RawOffer, fam Family) (CanonicalRecord, Outcome, bool) {
	logger := logging.WithFields(ctx, "offer_id", o.ID)
	stats.RegionalRequests++

	candidates := p.candidates(ctx, o)
	if len(candidates) == 0 {
		stats.RegionalFailed++
		logger.Warn("no roaming countries for regional offer")
		return CanonicalRecord{}, 0, false
	}

	stats.RegionalSuccess++
	stats.SetRegionalMapping(regionalLabel(o), candidates)

	resolved, dropped := p.resolver.ResolveRegional(o, candidates)
	for _, code := range dropped {
		logger.Warn("unknown roaming country code", "code", code)
	}
	if len(resolved) == 0 {
		rec, outcome := p.skip(ctx, stats, o, OutcomeSkippedNoRegionalCountries, "candidates", len(candidates))
		return rec, outcome, true
	}

	rec := p.emit(ctx, stats, o, fam, Placement{
		Regional:      true,
		Countries:     JoinCodes(resolved),
		CountriesName: JoinLabels(resolved),
	})
	stats.RegionalCountriesProcessed += len(resolved)
	logger.Debug("regional record emitted", "countries", rec.Countries)
	return rec, OutcomeEmittedRegional, true
}

func (p *Pipeline) single(ctx context.Context, stats *RunStatistics, o RawOffer, fam Family) (CanonicalRecord, Outcome) {
	if !o.HasCountry {
		return p.skip(ctx, stats, o, OutcomeSkippedMissingData, "reason", "missing country")
	}

	m, ok := p.resolver.ResolveSingle(o, fam)
	if !ok {
		stats.AddMissingCountry(o.CountryLabel)
		return p.skip(ctx, stats, o, OutcomeSkippedCountryNotFound,
			"country", o.CountryLabel, "code", o.CountryCode)
	}
	if m.Via == ByOfferID.Name {
		logging.FromContext(ctx).Warn("country taken from offer id", "offer_id", o.ID, "code", m.Code)
	}

	name := o.CountryLabel
	if name == "" {
		name = m.Label
	}
	return p.emit(ctx, stats, o, fam, Placement{Countries: m.Code, CountriesName: name}), OutcomeEmitted
}

func (p *Pipeline) emit(ctx context.Context, stats *RunStatistics, o RawOffer, fam Family, pl Placement) CanonicalRecord {
	rec, anomalies := p.synth.Build(o, fam, pl)
	for _, a := range anomalies {
		stats.Anomalies++
		logging.FromContext(ctx).Warn(a.String(), "code", a.Code(), "offer_id", a.OfferID)
	}
	stats.Processed++
	stats.AddImage(rec.ProductCardImage)
	return rec
}

func (p *Pipeline) skip(ctx context.Context, stats *RunStatistics, o RawOffer, outcome Outcome, args ...any) (CanonicalRecord, Outcome) {
	stats.Skipped++
	switch outcome {
	case OutcomeSkippedMissingData:
		stats.MissingData++
	case OutcomeSkippedCountryNotFound:
		stats.CountryNotFound++
	}
	args = append([]any{"code", outcome.Code(), "offer_id", o.ID}, args...)
	logging.FromContext(ctx).Warn(outcome.String(), args...)
	return CanonicalRecord{}, outcome
}

// candidates returns the raw roaming codes of a regional offer.
func (p *Pipeline) candidates(ctx context.Context, o RawOffer) []string {
	codes := o.RoamingCodes
	if o.Source == SourceCSV {
		if p.roaming == nil {
			return nil
		}
		var err error
		codes, err = p.roaming.RoamingCountries(ctx, o.ID)
		if err != nil {
			logging.FromContext(ctx).Warn("roaming lookup failed", "offer_id", o.ID, "error", err)
			return nil
		}
	}

	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// regionalLabel is the key under which a regional offer's candidates are
// reported.
func regionalLabel(o RawOffer) string {
	if o.CountryLabel != "" {
		return o.CountryLabel
	}
	if len(o.RegionLabels) > 0 {
		return strings.Join(o.RegionLabels, ", ")
	}
	return "Unknown Region"
}
