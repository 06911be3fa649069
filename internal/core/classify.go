package core

import "strings"

// Classification is the family and placement of one offer.
type Classification struct {
	Family   Family
	Regional bool
}

// Classify determines the family of an offer and whether it covers several
// countries. It never fails: anything unrecognized is a voucher.
//
// CSV rows carry no family tag, so their subtype is matched against the esim,
// topup and voucher lists in that order. JSON offers carry the tag directly.
func Classify(o RawOffer, cats *CategoryTable) Classification {
	fam := FamilyVoucher

	switch o.Source {
	case SourceJSON:
		switch tag := Family(strings.ToLower(strings.TrimSpace(o.TypeTag))); tag {
		case FamilyESIM, FamilyTopup, FamilyVoucher:
			fam = tag
		}
	default:
		if f, ok := cats.FamilyOf(o.primarySubtype()); ok {
			fam = f
		}
	}

	return Classification{Family: fam, Regional: fam == FamilyESIM && isRegional(o)}
}

func isRegional(o RawOffer) bool {
	if o.Source == SourceJSON {
		return !o.HasCountry && len(o.RegionLabels) > 0
	}
	return strings.Contains(o.CountryLabel, "Region")
}
