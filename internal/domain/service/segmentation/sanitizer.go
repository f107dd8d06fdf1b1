package segmentation

import (
	"regexp"
	"strings"
)

var (
	packageLinePattern = regexp.MustCompile(`(?m)^[ \t]*package\s+[^;\n]+;[ \t]*$\n?`)
	importLinePattern  = regexp.MustCompile(`(?m)^[ \t]*import\s+[^;\n]+;[ \t]*$\n?`)
	lineEndingReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Sanitize removes comments and package/import declarations, normalizes line
// endings to "\n" and trims surrounding whitespace. Comment markers inside string
// and char literals are left alone.
func Sanitize(source string) string {
	return SanitizeWithMode(source, ScanModeLiteralAware)
}

// SanitizeWithMode is Sanitize with an explicit literal handling mode. ScanModeRaw
// reproduces the heuristic that ignores literals entirely.
func SanitizeWithMode(source string, mode ScanMode) string {
	if strings.TrimSpace(source) == "" {
		return strings.TrimSpace(source)
	}

	normalized := lineEndingReplacer.Replace(source)

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range lexRegions(normalized, mode.literalAware()) {
		if r.kind == regionLineComment || r.kind == regionBlockComment {
			continue
		}
		b.WriteString(normalized[r.start:r.end])
	}

	stripped := packageLinePattern.ReplaceAllString(b.String(), "")
	stripped = importLinePattern.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped)
}
