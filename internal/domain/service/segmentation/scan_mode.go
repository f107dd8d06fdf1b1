// Package segmentation splits Java source text into method-level segments.
//
// The package is a pure text transform: it performs no I/O, keeps no state between
// calls and never panics on malformed input. Boundaries are found with a brace-depth
// scan over a "scan text" that has the same length as the source, so every offset
// found while scanning is also an offset into the original source.
package segmentation

import (
	"fmt"
	"strings"
)

// ScanMode selects how the scan text is derived from the source.
type ScanMode string

const (
	// ScanModeLiteralAware blanks comments and string/char literal contents before
	// scanning, so braces and comment markers inside them do not affect boundaries.
	ScanModeLiteralAware ScanMode = "literal_aware"
	// ScanModeRaw scans the unmodified source, matching the historical heuristic.
	ScanModeRaw ScanMode = "raw"
)

// ParseScanMode converts a configuration value into a ScanMode.
func ParseScanMode(value string) (ScanMode, error) {
	switch ScanMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ScanModeLiteralAware:
		return ScanModeLiteralAware, nil
	case ScanModeRaw:
		return ScanModeRaw, nil
	default:
		return "", fmt.Errorf("unsupported scan mode %q", value)
	}
}

func (m ScanMode) literalAware() bool {
	return m != ScanModeRaw
}

// Options tunes segment construction.
type Options struct {
	ScanMode ScanMode
	// SanitizeText strips comments and package/import lines from each segment's Text.
	// RawText is never modified.
	SanitizeText bool
}

// DefaultOptions returns literal-aware scanning with sanitized segment text.
func DefaultOptions() Options {
	return Options{
		ScanMode:     ScanModeLiteralAware,
		SanitizeText: true,
	}
}

// IsJavaPath reports whether path names a .java file (case-insensitive).
func IsJavaPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(path)), ".java")
}
