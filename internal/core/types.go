package core

import "strings"

// Family is the product family of an offer.
type Family string

const (
	FamilyESIM    Family = "esim"
	FamilyTopup   Family = "topup"
	FamilyVoucher Family = "voucher"
)

// ProductType returns the upper-cased family as written to the productType column.
func (f Family) ProductType() string {
	return strings.ToUpper(string(f))
}

// Source identifies which upstream shape a RawOffer was built from.
// Synthesis keeps a few per-shape wording differences.
type Source int

const (
	SourceCSV Source = iota
	SourceJSON
)

func (s Source) String() string {
	switch s {
	case SourceCSV:
		return "csv"
	case SourceJSON:
		return "json"
	default:
		return "unknown"
	}
}

// RawOffer is one upstream offer, normalized into a single shape by the
// CSV and JSON adapters in internal/ingest. Empty strings mean "absent".
type RawOffer struct {
	Source Source

	ID        string `validate:"required"`
	BrandName string `validate:"required"`

	// HasCountry reports whether the upstream record carried a country at all.
	// A JSON country object may be present with an empty name.
	HasCountry   bool
	CountryLabel string
	CountryCode  string

	RegionLabels []string
	RoamingCodes []string

	// TypeTag is the upstream family tag (JSON only).
	TypeTag string

	// Subtypes holds the upstream subtype labels. CSV rows contribute at most one.
	Subtypes []string

	NotesShort string
	NotesLong  string

	// Malformed is set by an adapter that could not decode the upstream
	// record. Such offers are skipped as missing data.
	Malformed string
}

// primarySubtype returns the first subtype that is not a "-" placeholder.
func (o RawOffer) primarySubtype() string {
	for _, s := range o.Subtypes {
		s = strings.TrimSpace(s)
		if s != "" && s != "-" {
			return s
		}
	}
	return ""
}

// subtypeWords returns the non-placeholder subtypes joined by spaces.
func (o RawOffer) subtypeWords() string {
	words := make([]string, 0, len(o.Subtypes))
	for _, s := range o.Subtypes {
		s = strings.TrimSpace(s)
		if s != "" && s != "-" {
			words = append(words, s)
		}
	}
	return strings.Join(words, " ")
}

// Country is one registry entry. Code is the ISO 3166-1 alpha-2 code.
type Country struct {
	Code  string `json:"value"`
	Label string `json:"label"`
}

// CanonicalRecord is one output row.
type CanonicalRecord struct {
	ProductName        string
	ProductCardImage   string
	VariantName        string
	VariantDescription string
	MetaTitle          string
	MetaDescription    string
	NameInCategoryPage string
	Slug               string
	Countries          string
	BaseCategory       string
	Brand              string
	ProductType        string
	OfferID            string
	ProductKind        string
	NameInAboutSection string
	CountriesName      string
}

// RecordHeader lists the output columns in order. CSV-sourced runs omit the
// last column.
var RecordHeader = []string{
	"productName",
	"productCardImage",
	"variantName",
	"variantDescription",
	"metaTitle",
	"metaDescription",
	"nameInCategoryPage",
	"slug",
	"countries",
	"baseCategory",
	"brand",
	"productType",
	"offerId",
	"productKind",
	"nameInAboutSection",
	"countriesName",
}

// HeaderFor returns the output header for records built from the given source.
func HeaderFor(src Source) []string {
	if src == SourceCSV {
		return RecordHeader[:len(RecordHeader)-1]
	}
	return RecordHeader
}

// Values returns the record's fields in header order for the given source.
func (r CanonicalRecord) Values(src Source) []string {
	v := []string{
		r.ProductName,
		r.ProductCardImage,
		r.VariantName,
		r.VariantDescription,
		r.MetaTitle,
		r.MetaDescription,
		r.NameInCategoryPage,
		r.Slug,
		r.Countries,
		r.BaseCategory,
		r.Brand,
		r.ProductType,
		r.OfferID,
		r.ProductKind,
		r.NameInAboutSection,
		r.CountriesName,
	}
	if src == SourceCSV {
		return v[:len(v)-1]
	}
	return v
}
