// Package source reads network patterns and keeps an index built from
// them up to date.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadPatterns returns the pattern lines of r. Comments starting with '#'
// and blank lines are removed; surrounding whitespace is trimmed.
func ReadPatterns(r io.Reader) ([]string, error) {
	var patterns []string

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// LoadFile reads the pattern lines of the file at path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open networks file %s: %w", path, err)
	}
	defer f.Close()

	patterns, err := ReadPatterns(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file %s: %w", path, err)
	}
	return patterns, nil
}
