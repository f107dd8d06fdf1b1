package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/domain/service/segmentation"

	"github.com/gobwas/glob"
)

// DefaultIncludePattern selects every Java file under the root.
const DefaultIncludePattern = "**/*.java"

// fileMatcher filters relative, slash-separated paths with include and exclude globs.
type fileMatcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

func newFileMatcher(include, exclude []string) (*fileMatcher, error) {
	if len(include) == 0 {
		include = []string{DefaultIncludePattern}
	}
	m := &fileMatcher{}
	for _, pattern := range include {
		g, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		m.include = append(m.include, g)
	}
	for _, pattern := range exclude {
		g, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

// compilePattern treats "/" as the separator so "*" stays within one directory.
// A leading "**/" also matches files at the root.
func compilePattern(pattern string) (glob.Glob, error) {
	if len(pattern) > 3 && pattern[:3] == "**/" {
		pattern = "{" + pattern[3:] + "," + pattern + "}"
	}
	return glob.Compile(pattern, '/')
}

// Match reports whether rel is included and not excluded.
func (m *fileMatcher) Match(rel string) bool {
	for _, g := range m.exclude {
		if g.Match(rel) {
			return false
		}
	}
	for _, g := range m.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// discoverFiles walks root and returns the matching files in lexical order.
func discoverFiles(root string, matcher *fileMatcher) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if matcher.Match(filepath.ToSlash(rel)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// resolveInputs returns the files named by --file and discovered under --dir.
// Explicit files are kept whatever their extension; one that is not .java only
// draws a warning.
func resolveInputs(files []string, dir string, include, exclude []string) ([]string, error) {
	if len(files) == 0 && dir == "" {
		return nil, errors.New("either --file or --dir is required")
	}
	for _, file := range files {
		if !segmentation.IsJavaPath(file) {
			slogger.WarnNoCtx("Input is not a .java file, segmenting it anyway", slogger.Field("path", file))
		}
	}

	inputs := append([]string(nil), files...)
	if dir != "" {
		matcher, err := newFileMatcher(include, exclude)
		if err != nil {
			return nil, err
		}
		found, err := discoverFiles(dir, matcher)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, found...)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no Java files found under %s", dir)
	}
	return inputs, nil
}
