package core

import (
	"regexp"
	"strings"
)

// offerIDCountry matches the two-letter country embedded in eSIM offer IDs
// such as "ESIM-US-5GB-30D". This is an upstream naming convention, not a
// documented contract.
var offerIDCountry = regexp.MustCompile(`ESIM-([A-Z]{2})-`)

// Strategy resolves one candidate to a registry country.
type Strategy struct {
	Name    string
	Resolve func(reg *Registry, o RawOffer, candidate string) (Country, bool)
}

// Resolution strategies, tried in this order.
var (
	ByCode = Strategy{Name: "code", Resolve: func(reg *Registry, _ RawOffer, candidate string) (Country, bool) {
		code := strings.TrimSpace(candidate)
		if code == "" {
			return Country{}, false
		}
		return reg.ByCode(code)
	}}

	ByLabel = Strategy{Name: "label", Resolve: func(reg *Registry, o RawOffer, _ string) (Country, bool) {
		label := strings.TrimSpace(o.CountryLabel)
		if label == "" {
			return Country{}, false
		}
		return reg.ByLabel(label)
	}}

	ByOfferID = Strategy{Name: "offer-id", Resolve: func(reg *Registry, o RawOffer, _ string) (Country, bool) {
		m := offerIDCountry.FindStringSubmatch(o.ID)
		if m == nil {
			return Country{}, false
		}
		return reg.ByCode(m[1])
	}}
)

// Match is a resolved country and the strategy that found it.
type Match struct {
	Country
	Via string
}

// Resolver maps country candidates onto the registry.
type Resolver struct {
	Registry *Registry
}

// Resolve tries each strategy in order and returns the first match.
func (r *Resolver) Resolve(o RawOffer, candidate string, strategies ...Strategy) (Match, bool) {
	for _, s := range strategies {
		if c, ok := s.Resolve(r.Registry, o, candidate); ok {
			return Match{Country: c, Via: s.Name}, true
		}
	}
	return Match{}, false
}

// ResolveSingle finds the one country of a single-country offer: by code,
// then by label, then (eSIM only) from the offer ID.
func (r *Resolver) ResolveSingle(o RawOffer, fam Family) (Match, bool) {
	strategies := []Strategy{ByCode, ByLabel}
	if fam == FamilyESIM {
		strategies = append(strategies, ByOfferID)
	}
	return r.Resolve(o, o.CountryCode, strategies...)
}

// ResolveRegional resolves every candidate code of a regional offer, keeping
// candidate order and duplicates. Unresolved candidates are returned in
// dropped. A lone candidate also gets the label and offer-ID fallbacks; in a
// multi-country list an unknown code is simply dropped.
func (r *Resolver) ResolveRegional(o RawOffer, candidates []string) (resolved []Match, dropped []string) {
	strategies := []Strategy{ByCode}
	if len(candidates) == 1 {
		strategies = append(strategies, ByLabel, ByOfferID)
	}

	for _, cand := range candidates {
		m, ok := r.Resolve(o, cand, strategies...)
		if !ok {
			dropped = append(dropped, cand)
			continue
		}
		resolved = append(resolved, m)
	}
	return resolved, dropped
}

// JoinCodes returns the comma-joined codes of the matches.
func JoinCodes(ms []Match) string {
	codes := make([]string, len(ms))
	for i, m := range ms {
		codes[i] = m.Code
	}
	return strings.Join(codes, ",")
}

// JoinLabels returns the comma-joined labels of the matches.
func JoinLabels(ms []Match) string {
	labels := make([]string, len(ms))
	for i, m := range ms {
		labels[i] = m.Label
	}
	return strings.Join(labels, ",")
}
