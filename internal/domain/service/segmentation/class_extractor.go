package segmentation

import (
	"regexp"
	"strings"

	"javasegment/internal/domain/valueobject"
)

const typeModifiers = `(?:(?:public|protected|private|abstract|final|static|sealed|non-sealed|strictfp)\s+)*`

var (
	publicTypePattern = declarationPattern(`\bpublic\s+`)
	anyTypePattern    = declarationPattern(`\b`)
)

// declarationPattern compiles the top-level type declaration pattern. The strict and
// permissive passes differ only in prefix.
func declarationPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(prefix + typeModifiers + `(?:class|interface|enum)\s+([A-Za-z_$][\w$]*)[^{]*\{$`)
}

// ExtractClasses returns the top-level type declarations of source in order. With
// preferPublic only declarations carrying the public modifier are returned.
func ExtractClasses(source string, preferPublic bool) []valueobject.ClassSpan {
	pattern := anyTypePattern
	if preferPublic {
		pattern = publicTypePattern
	}
	return scanClasses(buildScanText(source, ScanModeLiteralAware), pattern)
}

// SelectClasses applies the public-preferred policy: public declarations when there
// is at least one, otherwise every declaration.
func SelectClasses(source string) []valueobject.ClassSpan {
	return selectClasses(buildScanText(source, ScanModeLiteralAware))
}

func selectClasses(scan string) []valueobject.ClassSpan {
	return firstNonEmpty(
		func() []valueobject.ClassSpan { return scanClasses(scan, publicTypePattern) },
		func() []valueobject.ClassSpan { return scanClasses(scan, anyTypePattern) },
	)
}

// firstNonEmpty returns the first pass result that found anything.
func firstNonEmpty(passes ...func() []valueobject.ClassSpan) []valueobject.ClassSpan {
	for _, pass := range passes {
		if spans := pass(); len(spans) > 0 {
			return spans
		}
	}
	return nil
}

// scanClasses walks scan at brace depth zero. Each window runs from the cursor to the
// next '{'; a window matching pattern becomes a class span, any other block is
// skipped whole. The cursor always resumes after the matched closing brace, so spans
// never overlap and nested declarations are never visited.
func scanClasses(scan string, pattern *regexp.Regexp) []valueobject.ClassSpan {
	var spans []valueobject.ClassSpan
	cursor := 0
	for cursor < len(scan) {
		rel := strings.IndexByte(scan[cursor:], '{')
		if rel < 0 {
			break
		}
		open := cursor + rel
		closeIdx := findMatchingBrace(scan, open)
		if closeIdx < 0 {
			cursor = open + 1
			continue
		}

		if m := pattern.FindStringSubmatch(scan[cursor : open+1]); m != nil {
			name := m[1]
			if name == "" {
				name = valueobject.UnknownClassName
			}
			spans = append(spans, valueobject.ClassSpan{
				ClassName: name,
				BodyStart: open + 1,
				BodyEnd:   closeIdx,
			})
		}
		cursor = closeIdx + 1
	}
	return spans
}
