package segmentation

import (
	"regexp"
	"strings"

	"javasegment/internal/domain/valueobject"
)

const (
	// Statement boundary: window start, newline, ';' or '}'.
	declarationBoundary = `(?:^|[\n;}])\s*`
	annotationRun       = `(?:@[A-Za-z_$][\w$.]*(?:\s*\([^(){};]*\))?\s+)*`
	methodModifiers     = `public|protected|private|static|final|native|synchronized|abstract|transient|volatile|strictfp|default`
)

var (
	// Groups: 1 declaration, 2 modifier run, 3 return type run, 4 method name.
	methodPattern = regexp.MustCompile(declarationBoundary + annotationRun +
		`(((?:(?:` + methodModifiers + `)\s+)*)([\w$<>\[\],.?\s]*?)([A-Za-z_$][\w$]*)\s*\([^;{}]*\)\s*(?:throws\s[^{]+)?)\{$`)

	nestedTypePattern = regexp.MustCompile(declarationBoundary + annotationRun +
		typeModifiers + `(?:class|interface|enum|record|@interface)\s+[A-Za-z_$][\w$]*[^{]*\{$`)

	whitespaceRun    = regexp.MustCompile(`\s+`)
	spaceBeforeParen = regexp.MustCompile(`\s*\(`)
	identifierToken  = regexp.MustCompile(`[A-Za-z_$][\w$]*`)
)

// Words that can precede '(' and '{' inside a class body without starting a method
// declaration, such as "new Foo() {" in a field initializer.
var statementKeywords = map[string]struct{}{
	"new": {}, "return": {}, "throw": {}, "else": {}, "if": {}, "for": {}, "while": {},
	"switch": {}, "catch": {}, "try": {}, "do": {}, "synchronized": {},
}

// ExtractMethods returns the methods declared directly in span's body, in source
// order. Offsets are absolute within source.
//
// Annotation arguments may not nest parentheses on the declaration line, as in
// "@Foo(a = @Bar(1)) void m() {}"; such a method is not matched and is skipped.
func ExtractMethods(source string, span valueobject.ClassSpan) []valueobject.MethodSpan {
	return extractMethods(source, buildScanText(source, ScanModeLiteralAware), span)
}

// extractMethods scans the class body at depth zero using the same windowing as
// scanClasses. Nested type declarations, initializer blocks and anonymous class
// bodies are skipped whole.
func extractMethods(source, scan string, span valueobject.ClassSpan) []valueobject.MethodSpan {
	if span.BodyStart < 0 || span.BodyEnd > len(scan) || span.BodyStart > span.BodyEnd || len(source) != len(scan) {
		return nil
	}

	var methods []valueobject.MethodSpan
	cursor := span.BodyStart
	for cursor < span.BodyEnd {
		rel := strings.IndexByte(scan[cursor:span.BodyEnd], '{')
		if rel < 0 {
			break
		}
		open := cursor + rel
		closeIdx := findMatchingBrace(scan, open)
		if closeIdx < 0 || closeIdx >= span.BodyEnd {
			cursor = open + 1
			continue
		}

		window := scan[cursor : open+1]
		if !nestedTypePattern.MatchString(window) {
			if method, ok := matchMethod(source, window, cursor, open, closeIdx, span.ClassName); ok {
				methods = append(methods, method)
			}
		}
		cursor = closeIdx + 1
	}
	return methods
}

func matchMethod(source, window string, windowStart, open, closeIdx int, className string) (valueobject.MethodSpan, bool) {
	m := methodPattern.FindStringSubmatchIndex(window)
	if m == nil {
		return valueobject.MethodSpan{}, false
	}
	modifiers := window[m[4]:m[5]]
	returnType := window[m[6]:m[7]]
	name := window[m[8]:m[9]]

	if !plausibleDeclaration(modifiers, returnType, name, className) {
		return valueobject.MethodSpan{}, false
	}

	start := windowStart + m[2]
	block := source[start : closeIdx+1]
	if strings.TrimSpace(block) == "" {
		return valueobject.MethodSpan{}, false
	}

	return valueobject.MethodSpan{
		Signature:  cleanSignature(source[start:open]),
		MethodName: name,
		Block:      block,
		StartIndex: start,
		EndIndex:   closeIdx,
	}, true
}

// plausibleDeclaration rejects statement-shaped matches. A declaration with neither
// modifiers nor a return type must be a constructor of the enclosing class; this also
// rules out enum constants with bodies.
func plausibleDeclaration(modifiers, returnType, name, className string) bool {
	if _, ok := statementKeywords[name]; ok {
		return false
	}
	for _, word := range identifierToken.FindAllString(returnType, -1) {
		if _, ok := statementKeywords[word]; ok {
			return false
		}
	}
	if strings.TrimSpace(modifiers) == "" && strings.TrimSpace(returnType) == "" {
		return name == className
	}
	return true
}

// cleanSignature collapses whitespace runs and removes whitespace before '('.
func cleanSignature(signature string) string {
	collapsed := whitespaceRun.ReplaceAllString(signature, " ")
	return strings.TrimSpace(spaceBeforeParen.ReplaceAllString(collapsed, "("))
}
