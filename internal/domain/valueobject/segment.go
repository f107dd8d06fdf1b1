package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SegmentKind identifies the granularity of a segment.
type SegmentKind string

// SegmentKindJavaMethod tags a segment holding exactly one Java method.
const SegmentKindJavaMethod SegmentKind = "java_method"

// Fallback names used when a declaration could not be named.
const (
	UnknownClassName = "UnknownClass"
	AnonymousMember  = "(anonymous)"
)

// SegmentParams carries the values needed to build a Segment.
type SegmentParams struct {
	Text            string
	RawText         string
	ClassName       string
	MethodName      string
	MethodSignature string
	StartLine       int
	EndLine         int
}

// Segment is one method-level unit of output text with its identifying metadata
// and position information. It is an immutable value object: every field is set at
// construction and WithPosition returns a modified copy.
type Segment struct {
	text            string
	rawText         string
	className       string
	methodName      string
	methodSignature string
	label           string
	kind            SegmentKind
	startLine       int
	endLine         int
	index           int
	total           int
}

// NewMethodSegment creates a java_method segment. When Text is empty the raw text is
// used instead, so Text is never empty for a non-empty RawText.
func NewMethodSegment(p SegmentParams) Segment {
	text := p.Text
	if strings.TrimSpace(text) == "" {
		text = p.RawText
	}
	startLine := p.StartLine
	if startLine < 1 {
		startLine = 1
	}
	endLine := p.EndLine
	if endLine < startLine {
		endLine = startLine
	}

	return Segment{
		text:            text,
		rawText:         p.RawText,
		className:       p.ClassName,
		methodName:      p.MethodName,
		methodSignature: p.MethodSignature,
		label:           BuildSegmentLabel(p.ClassName, p.MethodName, p.MethodSignature),
		kind:            SegmentKindJavaMethod,
		startLine:       startLine,
		endLine:         endLine,
	}
}

// BuildSegmentLabel returns "{class}::{member}" where member is the method name,
// else the signature, else "(anonymous)".
func BuildSegmentLabel(className, methodName, signature string) string {
	if className == "" {
		className = UnknownClassName
	}
	member := methodName
	if member == "" {
		member = signature
	}
	if member == "" {
		member = AnonymousMember
	}
	return className + "::" + member
}

// WithPosition returns a copy of the segment placed at the 1-based index out of total.
func (s Segment) WithPosition(index, total int) Segment {
	s.index = index
	s.total = total
	return s
}

// Text returns the sanitized method text.
func (s Segment) Text() string { return s.text }

// RawText returns the method text exactly as it appears in the source.
func (s Segment) RawText() string { return s.rawText }

// ClassName returns the enclosing top-level type name.
func (s Segment) ClassName() string { return s.className }

// MethodName returns the method identifier.
func (s Segment) MethodName() string { return s.methodName }

// MethodSignature returns the whitespace-normalized declaration text.
func (s Segment) MethodSignature() string { return s.methodSignature }

// Label returns the display label.
func (s Segment) Label() string { return s.label }

// Kind returns the segment kind.
func (s Segment) Kind() SegmentKind { return s.kind }

// StartLine returns the 1-based line of the first declaration token.
func (s Segment) StartLine() int { return s.startLine }

// EndLine returns the 1-based line of the closing brace.
func (s Segment) EndLine() int { return s.endLine }

// Index returns the 1-based position within the file's segments.
func (s Segment) Index() int { return s.index }

// Total returns the number of segments produced for the file.
func (s Segment) Total() int { return s.total }

// String implements fmt.Stringer.
func (s Segment) String() string {
	return fmt.Sprintf("%s [%d/%d] lines %d-%d", s.label, s.index, s.total, s.startLine, s.endLine)
}

// segmentDocument is the serialized shape of a Segment.
type segmentDocument struct {
	Text            string      `json:"text"            yaml:"text"`
	RawText         string      `json:"rawText"         yaml:"rawText"`
	ClassName       string      `json:"className"       yaml:"className"`
	MethodName      string      `json:"methodName"      yaml:"methodName"`
	MethodSignature string      `json:"methodSignature" yaml:"methodSignature"`
	Label           string      `json:"label"           yaml:"label"`
	Kind            SegmentKind `json:"kind"            yaml:"kind"`
	StartLine       int         `json:"startLine"       yaml:"startLine"`
	EndLine         int         `json:"endLine"         yaml:"endLine"`
	Index           int         `json:"index"           yaml:"index"`
	Total           int         `json:"total"           yaml:"total"`
}

func (s Segment) document() segmentDocument {
	return segmentDocument{
		Text:            s.text,
		RawText:         s.rawText,
		ClassName:       s.className,
		MethodName:      s.methodName,
		MethodSignature: s.methodSignature,
		Label:           s.label,
		Kind:            s.kind,
		StartLine:       s.startLine,
		EndLine:         s.endLine,
		Index:           s.index,
		Total:           s.total,
	}
}

// MarshalJSON implements json.Marshaler.
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.document())
}

// UnmarshalJSON implements json.Unmarshaler so API clients can decode segments.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var doc segmentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode segment: %w", err)
	}
	*s = Segment{
		text:            doc.Text,
		rawText:         doc.RawText,
		className:       doc.ClassName,
		methodName:      doc.MethodName,
		methodSignature: doc.MethodSignature,
		label:           doc.Label,
		kind:            doc.Kind,
		startLine:       doc.StartLine,
		endLine:         doc.EndLine,
		index:           doc.Index,
		total:           doc.Total,
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Segment) MarshalYAML() (interface{}, error) {
	return s.document(), nil
}
