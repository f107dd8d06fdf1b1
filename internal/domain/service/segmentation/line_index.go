package segmentation

import "sort"

// BuildLineIndex returns the byte offset at which each line starts. Offset 0 is
// always present; every '\n' adds the offset just after it.
func BuildLineIndex(source string) []int {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// LineNumberForOffset returns the 1-based line containing offset. Invalid input
// (negative offset, empty index) yields 1.
func LineNumberForOffset(lineStarts []int, offset int) int {
	if len(lineStarts) == 0 || offset < 0 {
		return 1
	}
	// Number of line starts <= offset is the line ordinal.
	line := sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > offset
	})
	if line < 1 {
		return 1
	}
	return line
}
