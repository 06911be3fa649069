package core

// CategoryEntry maps an upstream subtype to the storefront category and
// product kind written to the output.
type CategoryEntry struct {
	Subtype      string
	BaseCategory string
	ProductKind  string
}

// Default categories.
var (
	ESIMCategory    = CategoryEntry{Subtype: "Standard", BaseCategory: "esim", ProductKind: "esim"}
	TopupCategory   = CategoryEntry{Subtype: "Mobile Top Up", BaseCategory: "mobile-top-up", ProductKind: "mobile_topup"}
	VoucherFallback = CategoryEntry{Subtype: "Shopping", BaseCategory: "shopping-gift-cards", ProductKind: "shopping"}
)

// CategoryTable holds the subtype lists of each family. Families are
// disjoint; a subtype appears in at most one of them.
type CategoryTable struct {
	families map[Family][]CategoryEntry
	index    map[string]familyEntry
}

type familyEntry struct {
	family Family
	entry  CategoryEntry
}

// NewCategoryTable builds a table from per-family entries.
func NewCategoryTable(esim, topup, voucher []CategoryEntry) *CategoryTable {
	t := &CategoryTable{
		families: map[Family][]CategoryEntry{
			FamilyESIM:    esim,
			FamilyTopup:   topup,
			FamilyVoucher: voucher,
		},
		index: make(map[string]familyEntry),
	}
	for _, fam := range []Family{FamilyESIM, FamilyTopup, FamilyVoucher} {
		for _, e := range t.families[fam] {
			if _, exists := t.index[e.Subtype]; !exists {
				t.index[e.Subtype] = familyEntry{family: fam, entry: e}
			}
		}
	}
	return t
}

// DefaultCategories returns the storefront category table.
func DefaultCategories() *CategoryTable {
	esim := []CategoryEntry{
		{"Faster", "esim", "esim"},
		{"Fastest", "esim", "esim"},
		{"Fast", "esim", "esim"},
		ESIMCategory,
	}
	topup := []CategoryEntry{
		TopupCategory,
		{"Mobile Bundle", "mobile-top-up", "mobile_topup"},
		{"Mobile Data", "mobile-top-up", "mobile_topup"},
	}
	voucher := []CategoryEntry{
		{"Gaming & Entertainment", "entertainment-gift-cards", "entertainment"},
		{"Digital Apps", "entertainment-gift-cards", "entertainment"},
		{"EGIFT", "entertainment-gift-cards", "entertainment"},
		VoucherFallback,
		{"Clothing & Accessories", "shopping-gift-cards", "shopping"},
		{"Electronics", "shopping-gift-cards", "shopping"},
		{"Home & Garden", "shopping-gift-cards", "shopping"},
		{"Health & Beauty", "shopping-gift-cards", "shopping"},
		{"General Merchandise", "shopping-gift-cards", "shopping"},
		{"Online Shopping", "shopping-gift-cards", "shopping"},
		{"Auto & Moto", "shopping-gift-cards", "shopping"},
		{"IMTU Internet", "payment-cards", "payment"},
		{"Utilities", "payment-cards", "payment"},
		{"Fuel", "payment-cards", "payment"},
		{"Sports & Outdoors", "payment-cards", "payment"},
		{"Food & Beverage", "food", "food"},
		{"Restaurant", "food", "food"},
		{"Supermarket", "food", "food"},
		{"Travel & Experience", "travel", "travel"},
	}
	return NewCategoryTable(esim, topup, voucher)
}

// FamilyOf returns the family whose list contains subtype, checking esim,
// then topup, then voucher.
func (t *CategoryTable) FamilyOf(subtype string) (Family, bool) {
	fe, ok := t.index[subtype]
	return fe.family, ok
}

// Lookup returns the entry for subtype within one family.
func (t *CategoryTable) Lookup(fam Family, subtype string) (CategoryEntry, bool) {
	for _, e := range t.families[fam] {
		if e.Subtype == subtype {
			return e, true
		}
	}
	return CategoryEntry{}, false
}

// Entries returns the entries of one family in table order.
func (t *CategoryTable) Entries(fam Family) []CategoryEntry {
	out := make([]CategoryEntry, len(t.families[fam]))
	copy(out, t.families[fam])
	return out
}
