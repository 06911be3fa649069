package ingest

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipPreamble returns a reader positioned after an optional UTF-8 BOM and an
// optional Excel "sep=;" hint line. Spreadsheet exports add both.
func skipPreamble(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	hint, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if strings.EqualFold(string(hint), "sep=") {
		if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
			return nil, err
		}
	}

	return br, nil
}

// cleanCell trims whitespace and replaces invalid UTF-8 so downstream string
// derivation works on valid text.
func cleanCell(s string) string {
	return strings.ToValidUTF8(strings.TrimSpace(s), "\uFFFD")
}

// headerIndex maps lowercased, cleaned header names to column positions.
type headerIndex map[string]int

func makeHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(cleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// get returns the cleaned cell of the named column, or "" if the column or
// cell is absent.
func (h headerIndex) get(record []string, column string) string {
	i, ok := h[strings.ToLower(column)]
	if !ok || i >= len(record) {
		return ""
	}
	return cleanCell(record[i])
}
