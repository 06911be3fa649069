package logos

import (
	"bytes"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MinImageSize is the smallest body accepted as an image.
const MinImageSize = 8

type signature struct {
	format string
	match  func(b []byte) bool
}

var signatures = []signature{
	{"PNG", prefix("\x89PNG")},
	{"JPEG", prefix("\xff\xd8\xff")},
	{"GIF", prefix("GIF8")},
	{"WEBP", func(b []byte) bool {
		return len(b) >= 12 && bytes.HasPrefix(b, []byte("RIFF")) && string(b[8:12]) == "WEBP"
	}},
	{"SVG", func(b []byte) bool {
		return bytes.Contains(head(b, 8), []byte("<svg"))
	}},
}

var contentTypes = []struct {
	needle string
	format string
}{
	{"png", "PNG"},
	{"jpeg", "JPEG"},
	{"jpg", "JPEG"},
	{"webp", "WEBP"},
	{"gif", "GIF"},
	{"svg", "SVG"},
}

// DetectFormat names the image format of body. The leading signature is
// checked first, then a full content sniff, then the Content-Type header.
// Bodies shorter than MinImageSize are never images.
func DetectFormat(body []byte, contentType string) (format, via string, ok bool) {
	if len(body) < MinImageSize {
		return "", "", false
	}

	for _, s := range signatures {
		if s.match(body) {
			return s.format, "signature", true
		}
	}

	if mt := mimetype.Detect(body); strings.HasPrefix(mt.String(), "image/") {
		sub := strings.TrimPrefix(mt.String(), "image/")
		sub, _, _ = strings.Cut(sub, "+")
		return strings.ToUpper(sub), "sniff", true
	}

	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "image/") {
		for _, c := range contentTypes {
			if strings.Contains(ct, c.needle) {
				return c.format, "content-type", true
			}
		}
	}
	return "", "", false
}

func prefix(p string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) }
}

func head(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}
