package valueobject

// ClassSpan locates the body of a top-level type declaration. BodyStart and BodyEnd
// are half-open byte offsets that exclude the enclosing braces.
type ClassSpan struct {
	ClassName string
	BodyStart int
	BodyEnd   int
}

// Len returns the body length in bytes.
func (c ClassSpan) Len() int {
	if c.BodyEnd < c.BodyStart {
		return 0
	}
	return c.BodyEnd - c.BodyStart
}

// MethodSpan locates one method declaration. StartIndex is the offset of the first
// declaration token and EndIndex the offset of the closing brace, both absolute
// within the full source.
type MethodSpan struct {
	Signature  string
	MethodName string
	Block      string
	StartIndex int
	EndIndex   int
}
