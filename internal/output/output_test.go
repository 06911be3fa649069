package output

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
)

func TestQuoteField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{" leading space", " leading space"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
		{"semi;colon", "semi;colon"},
	}

	for _, tt := range tests {
		if got := QuoteField(tt.in); got != tt.want {
			t.Errorf("QuoteField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	got := EncodeCSV([]string{"a", "b"}, [][]string{{"1", "x,y"}, {"2", ""}})
	want := "a,b\n1,\"x,y\"\n2,"
	if got != want {
		t.Errorf("EncodeCSV() = %q, want %q", got, want)
	}
}

func TestWriteCSV_ColumnSets(t *testing.T) {
	dir := t.TempDir()
	records := []core.CanonicalRecord{{ProductName: "Steam", OfferID: "V-1", CountriesName: "Germany"}}

	tests := []struct {
		src     core.Source
		columns int
	}{
		{core.SourceJSON, 16},
		{core.SourceCSV, 15},
	}

	for _, tt := range tests {
		t.Run(tt.src.String(), func(t *testing.T) {
			path := filepath.Join(dir, tt.src.String()+".csv")
			if err := WriteCSV(path, records, tt.src); err != nil {
				t.Fatalf("WriteCSV() error = %v", err)
			}
			if got := len(core.HeaderFor(tt.src)); got != tt.columns {
				t.Errorf("len(HeaderFor) = %d, want %d", got, tt.columns)
			}
			if got := len(records[0].Values(tt.src)); got != tt.columns {
				t.Errorf("len(Values) = %d, want %d", got, tt.columns)
			}
		})
	}
}

func TestColumnWidths(t *testing.T) {
	header := []string{"id", "description"}
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	rows := [][]string{
		{"", string(long)},
		{"abc", "short"},
	}

	got := ColumnWidths(header, rows)
	want := []float64{12, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnWidths() = %v, want %v", got, want)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Offers.xlsx")
	records := []core.CanonicalRecord{
		{ProductName: "Amazon.com", Countries: "US", OfferID: "V-1"},
		{ProductName: "Airalo", Countries: "FR,DE", OfferID: "E-1"},
	}

	if err := WriteXLSX(path, records, core.SourceCSV); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetName(0); got != SheetName {
		t.Errorf("sheet = %q, want %q", got, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0][0] != "productName" || rows[0][len(rows[0])-1] != "nameInAboutSection" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][0] != "Airalo" || rows[2][8] != "FR,DE" {
		t.Errorf("row 2 = %v", rows[2])
	}

	styleID, err := f.GetCellStyle(SheetName, "A1")
	if err != nil {
		t.Fatalf("GetCellStyle() error = %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle() error = %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("header cell should be bold")
	}
}

func TestWriteReports(t *testing.T) {
	reg, err := core.NewRegistry([]core.Country{{Code: "FR", Label: "France"}, {Code: "DE", Label: "Germany"}})
	if err != nil {
		t.Fatal(err)
	}

	stats := core.NewRunStatistics()
	stats.AddImage("steam.png")
	stats.AddImage("airalo.png")
	stats.AddMissingCountry("Atlantis")
	stats.AddMissingCountry("Atlantis")
	stats.AddMissingCountry("El Dorado")
	stats.SetRegionalMapping("Europe", []string{"FR", "ZZ"})
	stats.SetRegionalMapping("Central Europe", []string{"DE"})

	dir := t.TempDir()
	written, err := WriteReports(dir, stats, reg)
	if err != nil {
		t.Fatalf("WriteReports() error = %v", err)
	}
	if len(written) != 3 {
		t.Errorf("written = %v, want 3 files", written)
	}

	files := []struct {
		name string
		want string
	}{
		{RequiredImagesFile, "airalo.png\nsteam.png"},
		{MissingCountriesFile, "Atlantis\nEl Dorado"},
		{RegionalMappingsFile, "Europe:\n  - FR (France)\n  - ZZ (Unknown)\n\nCentral Europe:\n  - DE (Germany)"},
	}
	for _, f := range files {
		got, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			t.Fatalf("read %s: %v", f.name, err)
		}
		if string(got) != f.want {
			t.Errorf("%s = %q, want %q", f.name, got, f.want)
		}
	}
}

func TestWriteReports_OnlyImagesWhenClean(t *testing.T) {
	reg, _ := core.NewRegistry(nil)
	dir := t.TempDir()

	written, err := WriteReports(dir, core.NewRunStatistics(), reg)
	if err != nil {
		t.Fatalf("WriteReports() error = %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != RequiredImagesFile {
		t.Errorf("written = %v, want only %s", written, RequiredImagesFile)
	}
	if _, err := os.Stat(filepath.Join(dir, MissingCountriesFile)); !os.IsNotExist(err) {
		t.Errorf("missing-countries.txt should not exist, stat err = %v", err)
	}
}
