package segmentation

import "strings"

type regionKind int

const (
	regionCode regionKind = iota
	regionLineComment
	regionBlockComment
	regionLiteral
)

// region is a half-open byte range of the source with a single lexical kind.
type region struct {
	kind       regionKind
	start, end int
}

// lexRegions partitions source into contiguous code, comment and literal regions.
// When literals is false string and char literals are not recognized, which is the
// heuristic behavior: comment markers inside strings are treated as comments.
//
// A "//" immediately preceded by ':' never starts a line comment, and an unterminated
// block comment is treated as code.
func lexRegions(source string, literals bool) []region {
	regions := make([]region, 0, 16)
	codeStart := 0
	flush := func(end int) {
		if end > codeStart {
			regions = append(regions, region{kind: regionCode, start: codeStart, end: end})
		}
	}

	i := 0
	for i < len(source) {
		c := source[i]
		switch {
		case c == '/' && i+1 < len(source) && source[i+1] == '*':
			closeRel := strings.Index(source[i+2:], "*/")
			if closeRel < 0 {
				i++
				continue
			}
			end := i + 2 + closeRel + 2
			flush(i)
			regions = append(regions, region{kind: regionBlockComment, start: i, end: end})
			i, codeStart = end, end
		case c == '/' && i+1 < len(source) && source[i+1] == '/' && (i == 0 || source[i-1] != ':'):
			end := len(source)
			if nl := strings.IndexByte(source[i:], '\n'); nl >= 0 {
				end = i + nl
			}
			flush(i)
			regions = append(regions, region{kind: regionLineComment, start: i, end: end})
			i, codeStart = end, end
		case literals && (c == '"' || c == '\''):
			end := literalEnd(source, i)
			flush(i)
			regions = append(regions, region{kind: regionLiteral, start: i, end: end})
			i, codeStart = end, end
		default:
			i++
		}
	}
	flush(len(source))
	return regions
}

// literalEnd returns the offset just past the literal opening at start. Text blocks
// end at the next unescaped `"""`; ordinary string and char literals end at their
// closing quote or, when unterminated, at the end of the line.
func literalEnd(source string, start int) int {
	quote := source[start]
	if quote == '"' && strings.HasPrefix(source[start:], `"""`) {
		for i := start + 3; i < len(source); i++ {
			if source[i] == '\\' {
				i++
				continue
			}
			if strings.HasPrefix(source[i:], `"""`) {
				return i + 3
			}
		}
		return len(source)
	}

	for i := start + 1; i < len(source); i++ {
		switch source[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return len(source)
}

// buildScanText returns the text the extractors scan. In literal-aware mode comments
// and literals are blanked byte-for-byte (newlines kept), so the result has exactly the
// same length and line structure as source.
func buildScanText(source string, mode ScanMode) string {
	if !mode.literalAware() {
		return source
	}

	var b strings.Builder
	b.Grow(len(source))
	for _, r := range lexRegions(source, true) {
		if r.kind == regionCode {
			b.WriteString(source[r.start:r.end])
			continue
		}
		for i := r.start; i < r.end; i++ {
			if source[i] == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
