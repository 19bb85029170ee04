package imager

import (
	"regexp"
	"strings"

	"github.com/hellenic-development/psd-extractor/pkg/extractor"
)

// FallbackName is used when a layer's resolved name sanitizes to nothing.
const FallbackName = "layer"

var (
	reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	underscoreRun = regexp.MustCompile(`_{2,}`)
)

// Sanitize makes s safe to use as a file name on common filesystems:
// reserved characters and whitespace runs become "_", repeated "_" collapse
// into one and leading/trailing "_" are trimmed. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = reservedChars.ReplaceAllString(s, "_")
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ResolveName joins the ancestor group names and the layer name with "_" after sanitizing
// every segment. Segments that sanitize to nothing are dropped.
// Distinct layers can resolve to the same name; no deduplication happens here.
func ResolveName(path extractor.Path, name string) string {
	parts := make([]string, 0, len(path)+1)
	for _, seg := range path.Append(name) {
		if s := Sanitize(seg); s != "" {
			parts = append(parts, s)
		}
	}

	resolved := Sanitize(strings.Join(parts, "_"))
	if resolved == "" {
		return FallbackName
	}
	return resolved
}
