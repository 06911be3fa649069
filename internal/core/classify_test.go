package core

import "testing"

func TestClassify(t *testing.T) {
	cats := DefaultCategories()

	tests := []struct {
		name         string
		offer        RawOffer
		wantFamily   Family
		wantRegional bool
	}{
		{"csv esim subtype", RawOffer{Source: SourceCSV, Subtypes: []string{"Fastest"}, CountryLabel: "France"}, FamilyESIM, false},
		{"csv esim region", RawOffer{Source: SourceCSV, Subtypes: []string{"Standard"}, CountryLabel: "Europe Region"}, FamilyESIM, true},
		{"csv topup", RawOffer{Source: SourceCSV, Subtypes: []string{"Mobile Data"}}, FamilyTopup, false},
		{"csv voucher known", RawOffer{Source: SourceCSV, Subtypes: []string{"Fuel"}}, FamilyVoucher, false},
		{"csv unknown is voucher", RawOffer{Source: SourceCSV, Subtypes: []string{"Foobar"}}, FamilyVoucher, false},
		{"csv dash is voucher", RawOffer{Source: SourceCSV, Subtypes: []string{"-"}}, FamilyVoucher, false},
		{"csv voucher region label not regional", RawOffer{Source: SourceCSV, Subtypes: []string{"Shopping"}, CountryLabel: "Asia Region"}, FamilyVoucher, false},
		{"json esim regional", RawOffer{Source: SourceJSON, TypeTag: "esim", RegionLabels: []string{"Europe"}}, FamilyESIM, true},
		{"json esim with country", RawOffer{Source: SourceJSON, TypeTag: "esim", HasCountry: true, RegionLabels: []string{"Europe"}}, FamilyESIM, false},
		{"json esim no regions", RawOffer{Source: SourceJSON, TypeTag: "esim"}, FamilyESIM, false},
		{"json topup", RawOffer{Source: SourceJSON, TypeTag: "topup"}, FamilyTopup, false},
		{"json upper case tag", RawOffer{Source: SourceJSON, TypeTag: "TOPUP"}, FamilyTopup, false},
		{"json unknown tag", RawOffer{Source: SourceJSON, TypeTag: "bundle"}, FamilyVoucher, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.offer, cats)
			if got.Family != tt.wantFamily || got.Regional != tt.wantRegional {
				t.Errorf("Classify() = %+v, want {%s %v}", got, tt.wantFamily, tt.wantRegional)
			}
		})
	}
}

func TestCategoryTable(t *testing.T) {
	cats := DefaultCategories()

	fam, ok := cats.FamilyOf("Mobile Bundle")
	if !ok || fam != FamilyTopup {
		t.Errorf("FamilyOf(Mobile Bundle) = %q, %v", fam, ok)
	}
	if _, ok := cats.FamilyOf("Foobar"); ok {
		t.Error("FamilyOf(Foobar) should not match")
	}

	tests := []struct {
		subtype  string
		wantBase string
		wantKind string
	}{
		{"Gaming & Entertainment", "entertainment-gift-cards", "entertainment"},
		{"Auto & Moto", "shopping-gift-cards", "shopping"},
		{"IMTU Internet", "payment-cards", "payment"},
		{"Supermarket", "food", "food"},
		{"Travel & Experience", "travel", "travel"},
	}
	for _, tt := range tests {
		e, ok := cats.Lookup(FamilyVoucher, tt.subtype)
		if !ok || e.BaseCategory != tt.wantBase || e.ProductKind != tt.wantKind {
			t.Errorf("Lookup(voucher, %q) = %+v, %v", tt.subtype, e, ok)
		}
	}

	if _, ok := cats.Lookup(FamilyESIM, "Shopping"); ok {
		t.Error("Lookup(esim, Shopping) should not cross families")
	}
	if got := len(cats.Entries(FamilyESIM)); got != 4 {
		t.Errorf("len(Entries(esim)) = %d, want 4", got)
	}
}

func TestStatistics_RegionalMappingOrder(t *testing.T) {
	s := NewRunStatistics()
	s.SetRegionalMapping("Europe", []string{"FR"})
	s.SetRegionalMapping("Asia", []string{"JP"})
	s.SetRegionalMapping("Europe", []string{"DE", "IT"})

	got := s.RegionalMappings()
	if len(got) != 2 || got[0].Label != "Europe" || got[1].Label != "Asia" {
		t.Fatalf("RegionalMappings() = %+v", got)
	}
	if len(got[0].Codes) != 2 || got[0].Codes[0] != "DE" {
		t.Errorf("Europe codes = %v, want latest [DE IT]", got[0].Codes)
	}

	s.SkipInvalidPage()
	if s.InvalidPages != 1 || s.Skipped != 1 {
		t.Errorf("after SkipInvalidPage: InvalidPages = %d, Skipped = %d", s.InvalidPages, s.Skipped)
	}
}
