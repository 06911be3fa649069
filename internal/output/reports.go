package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
)

// Report file names.
const (
	RequiredImagesFile   = "required-images.txt"
	MissingCountriesFile = "missing-countries.txt"
	RegionalMappingsFile = "regional-mappings.txt"
)

// FormatRegionalMappings renders one block per label:
//
//	Europe:
//	  - FR (France)
//	  - ZZ (Unknown)
//
// Blocks are separated by a blank line.
func FormatRegionalMappings(mappings []core.RegionalMapping, reg *core.Registry) string {
	blocks := make([]string, len(mappings))
	for i, m := range mappings {
		lines := make([]string, 0, len(m.Codes)+1)
		lines = append(lines, m.Label+":")
		for _, code := range m.Codes {
			label := "Unknown"
			if c, ok := reg.ByCode(code); ok {
				label = c.Label
			}
			lines = append(lines, fmt.Sprintf("  - %s (%s)", code, label))
		}
		blocks[i] = strings.Join(lines, "\n")
	}
	return strings.Join(blocks, "\n\n")
}

// WriteReports writes the text reports of a run into dir and returns the
// paths written. The image list is always written; the other two only when
// they have content.
func WriteReports(dir string, stats *core.RunStatistics, reg *core.Registry) ([]string, error) {
	var written []string
	write := func(name, content string) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(RequiredImagesFile, strings.Join(stats.Images(), "\n")); err != nil {
		return written, err
	}

	if missing := stats.MissingCountries(); len(missing) > 0 {
		if err := write(MissingCountriesFile, strings.Join(missing, "\n")); err != nil {
			return written, err
		}
	}

	if mappings := stats.RegionalMappings(); len(mappings) > 0 {
		if err := write(RegionalMappingsFile, FormatRegionalMappings(mappings, reg)); err != nil {
			return written, err
		}
	}

	return written, nil
}
