package core

import (
	"strings"
	"unicode"
)

const (
	purchasePitch   = " Buy now and receive your code instantly with no waiting or hassle. The process is simple - purchase, receive your code, and use or share in minutes."
	deliveryPitch   = " Digital delivery ensures your voucher reaches you instantly and free of charge."
	metaDescTagline = ". Fast, safe and easy."
)

// Placement describes where an emitted record is sold.
type Placement struct {
	Regional bool

	// Countries holds comma-joined country codes.
	Countries string

	// CountriesName holds the comma-joined display labels.
	CountriesName string
}

// Synthesizer derives every output field of a record.
type Synthesizer struct {
	Merchant   string
	Categories *CategoryTable
}

// Build returns the record for an offer in the given family and placement,
// together with any category defaults it had to apply.
func (s *Synthesizer) Build(o RawOffer, fam Family, p Placement) (CanonicalRecord, []Anomaly) {
	name := o.BrandName
	suffix := s.voucherSuffix(o, fam)

	cat, anomalies := s.category(o, fam, p.Regional)

	return CanonicalRecord{
		ProductName:        name,
		ProductCardImage:   ImageFilename(name),
		VariantName:        name + suffix,
		VariantDescription: s.description(o, p.Regional),
		MetaTitle:          name + suffix + " | " + s.Merchant,
		MetaDescription:    "Buy " + name + suffix + " at " + s.Merchant + metaDescTagline,
		NameInCategoryPage: name + suffix,
		Slug:               Slug(name),
		Countries:          p.Countries,
		BaseCategory:       cat.BaseCategory,
		Brand:              name,
		ProductType:        fam.ProductType(),
		OfferID:            o.ID,
		ProductKind:        cat.ProductKind,
		NameInAboutSection: name + suffix,
		CountriesName:      p.CountriesName,
	}, anomalies
}

// voucherSuffix is appended to the names of voucher products. CSV exports
// always say "Gift Card"; API offers spell out their subtypes instead.
func (s *Synthesizer) voucherSuffix(o RawOffer, fam Family) string {
	if fam != FamilyVoucher {
		return ""
	}
	if o.Source == SourceCSV {
		return " Gift Card"
	}
	if words := o.subtypeWords(); words != "" {
		return " " + words
	}
	return ""
}

func (s *Synthesizer) description(o RawOffer, regional bool) string {
	desc := o.NotesShort
	if desc == "" {
		desc = o.NotesLong
	}
	if desc != "" && desc != "-" {
		return desc
	}

	if regional {
		return "Buy " + o.BrandName + " eSIM for use in multiple countries." + purchasePitch
	}

	product := "Gift Card"
	if o.Source == SourceJSON {
		product = "Digital product"
	}
	return "Buy " + o.BrandName + " " + product + " for use in " + o.CountryLabel + "." + purchasePitch + deliveryPitch
}

func (s *Synthesizer) category(o RawOffer, fam Family, regional bool) (CategoryEntry, []Anomaly) {
	switch fam {
	case FamilyESIM:
		if regional {
			if e, ok := s.Categories.Lookup(FamilyESIM, ESIMCategory.Subtype); ok {
				return e, nil
			}
		}
		return ESIMCategory, nil
	case FamilyTopup:
		return TopupCategory, nil
	}

	subtype := o.primarySubtype()
	if subtype == "" {
		return VoucherFallback, []Anomaly{{Kind: AnomalyMissingSubtype, OfferID: o.ID}}
	}
	if e, ok := s.Categories.Lookup(FamilyVoucher, subtype); ok {
		return e, nil
	}
	return VoucherFallback, []Anomaly{{Kind: AnomalyUnknownSubtype, OfferID: o.ID, Subtype: subtype}}
}

// ImageFilename derives the logo file name of a brand: the text before the
// first "(", lowercased, reduced to [a-z0-9], plus ".png".
// An empty brand yields "".
func ImageFilename(brand string) string {
	if brand == "" {
		return ""
	}

	base, _, _ := strings.Cut(brand, "(")
	base = strings.ToLower(strings.TrimSpace(base))

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String() + ".png"
}

// Slug derives the URL slug of a brand. Double hyphens are collapsed in a
// single left-to-right pass, so "---" becomes "--".
func Slug(brand string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, strings.ToLower(brand))
	s = strings.ReplaceAll(s, "&", "-and-")
	s = strings.ReplaceAll(s, ".", "-")
	return strings.ReplaceAll(s, "--", "-")
}
