// Package match provides include/exclude pattern matching for object keys and
// local relative paths using doublestar semantics.
package match

import (
	"errors"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates include/exclude glob patterns against slash-separated
// paths. A path matches when it matches at least one include pattern and no
// exclude pattern. Safe for concurrent use after construction.
type Matcher struct {
	includes      []string
	excludes      []string
	includeHidden bool
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns a path must match (at least one).
	// Empty means match everything.
	Includes []string

	// Excludes are glob patterns a path must not match (any).
	Excludes []string

	// IncludeHidden controls whether paths with a dot-prefixed segment match.
	IncludeHidden bool
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError carries the offending pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New validates the patterns and builds a Matcher.
func New(cfg Config) (*Matcher, error) {
	for _, raw := range append(append([]string{}, cfg.Includes...), cfg.Excludes...) {
		if !doublestar.ValidatePattern(raw) {
			return nil, &PatternError{Pattern: raw, Err: ErrInvalidPattern}
		}
	}
	return &Matcher{
		includes:      cfg.Includes,
		excludes:      cfg.Excludes,
		includeHidden: cfg.IncludeHidden,
	}, nil
}

// Match reports whether the path passes the include/exclude patterns.
// Keys are matched as-is; object keys are opaque strings.
func (m *Matcher) Match(path string) bool {
	if !m.includeHidden && IsHidden(path) {
		return false
	}

	if len(m.includes) > 0 {
		matched := false
		for _, inc := range m.includes {
			if matchPattern(inc, path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, exc := range m.excludes {
		if matchPattern(exc, path) {
			return false
		}
	}
	return true
}

// Empty reports whether the matcher has no patterns configured.
func (m *Matcher) Empty() bool {
	return len(m.includes) == 0 && len(m.excludes) == 0
}

func matchPattern(pattern, path string) bool {
	// Patterns were validated at construction.
	matched, err := doublestar.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}

// IsHidden reports whether any slash-separated segment starts with a dot.
func IsHidden(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" && strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
