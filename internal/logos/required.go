// Package logos downloads brand logos from the Brandfetch CDN for the brands
// listed in a required-images report.
package logos

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
)

// Brand is one entry of the required-images list.
type Brand struct {
	// Name is the list entry as written, used for the CDN domain
	Name string
	// File is the saved file name without extension
	File string
}

// Domain returns the brand domain requested from the CDN.
func (b Brand) Domain() string {
	switch {
	case strings.HasSuffix(b.Name, ".com"):
		return b.Name
	case strings.HasSuffix(b.Name, ".png"):
		return strings.TrimSuffix(b.Name, ".png") + ".com"
	default:
		return b.Name + ".com"
	}
}

// ParseRequired reads one brand per line. Blank lines and lines starting
// with // are ignored.
func ParseRequired(r io.Reader) ([]Brand, error) {
	var brands []Brand
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		file := line
		if strings.HasSuffix(file, ".com") || strings.HasSuffix(file, ".png") {
			file = file[:len(file)-4]
		}
		brands = append(brands, Brand{Name: line, File: file})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read required images: %w", err)
	}
	return brands, nil
}

// ReadRequiredFile parses the list at path. A missing file is core.ErrNoInput.
func ReadRequiredFile(path string) ([]Brand, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoInput, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseRequired(f)
}
