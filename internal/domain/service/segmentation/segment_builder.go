package segmentation

import (
	"strings"

	"javasegment/internal/domain/valueobject"
)

// BuildSegments splits source into method segments using DefaultOptions.
func BuildSegments(source string) []valueobject.Segment {
	return BuildSegmentsWithOptions(source, DefaultOptions())
}

// BuildSegmentsWithOptions splits source into method segments ordered by class, then
// by method, as they appear in the source. Index and Total are assigned once the
// whole list is known. Input that yields no methods, including empty or malformed
// source, produces an empty non-nil slice.
func BuildSegmentsWithOptions(source string, opts Options) (segments []valueobject.Segment) {
	defer func() {
		if r := recover(); r != nil {
			segments = []valueobject.Segment{}
		}
	}()

	if strings.TrimSpace(source) == "" {
		return []valueobject.Segment{}
	}

	scan := buildScanText(source, opts.ScanMode)
	classes := selectClasses(scan)
	if len(classes) == 0 {
		return []valueobject.Segment{}
	}

	lines := BuildLineIndex(source)
	built := make([]valueobject.Segment, 0, len(classes)*4)
	for _, class := range classes {
		for _, method := range extractMethods(source, scan, class) {
			built = append(built, newSegment(class, method, lines, opts))
		}
	}

	segments = make([]valueobject.Segment, len(built))
	for i, s := range built {
		segments[i] = s.WithPosition(i+1, len(built))
	}
	return segments
}

func newSegment(class valueobject.ClassSpan, method valueobject.MethodSpan, lines []int, opts Options) valueobject.Segment {
	text := method.Block
	if opts.SanitizeText {
		text = SanitizeWithMode(method.Block, opts.ScanMode)
	}
	return valueobject.NewMethodSegment(valueobject.SegmentParams{
		Text:            text,
		RawText:         method.Block,
		ClassName:       class.ClassName,
		MethodName:      method.MethodName,
		MethodSignature: method.Signature,
		StartLine:       LineNumberForOffset(lines, method.StartIndex),
		EndLine:         LineNumberForOffset(lines, method.EndIndex),
	})
}
