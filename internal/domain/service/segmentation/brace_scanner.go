package segmentation

type braceState int

const (
	braceSeeking braceState = iota // before the opening brace
	braceInside                    // depth > 0
	braceMatched                   // depth returned to zero
)

// braceScanner pairs an opening brace with its balanced closing brace by counting
// nesting depth. It is a value type so every scan owns its own state.
type braceScanner struct {
	state braceState
	depth int
}

// step feeds one byte and reports whether it closed the tracked block.
func (s *braceScanner) step(c byte) bool {
	switch c {
	case '{':
		s.depth++
		s.state = braceInside
	case '}':
		if s.state != braceInside {
			return false
		}
		s.depth--
		if s.depth == 0 {
			s.state = braceMatched
			return true
		}
	}
	return false
}

// findMatchingBrace returns the offset of the brace closing the block opened at
// open, or -1 when open is not a '{' or the block is never closed.
func findMatchingBrace(text string, open int) int {
	if open < 0 || open >= len(text) || text[open] != '{' {
		return -1
	}

	var scanner braceScanner
	for i := open; i < len(text); i++ {
		if scanner.step(text[i]) {
			return i
		}
	}
	return -1
}
