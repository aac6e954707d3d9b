package match

import "strings"

// IsGlobPattern reports whether the string contains unescaped glob
// metacharacters. Escaped metacharacters (\*, \?, \[, \{) are literals, so a
// destination named "file\*.txt" is not treated as a pattern.
func IsGlobPattern(s string) bool {
	return firstUnescapedMeta(s) != -1
}

// DerivePrefix extracts the longest static key prefix from a glob pattern,
// truncated to the last complete path segment. The result is unescaped so it
// can be sent directly as a storage list prefix.
//
//	"data/2024/**/*.csv" -> "data/2024/"
//	"*.json"             -> ""
//	"exact/file.txt"     -> "exact/file.txt"
//	"data/file\*.txt"    -> "data/file*.txt"
func DerivePrefix(pattern string) string {
	if pattern == "" {
		return ""
	}

	meta := firstUnescapedMeta(pattern)
	if meta == -1 {
		return unescape(pattern)
	}
	if meta == 0 {
		return ""
	}

	prefix := pattern[:meta]
	if slash := strings.LastIndex(prefix, "/"); slash >= 0 {
		return unescape(prefix[:slash+1])
	}
	return ""
}

// firstUnescapedMeta returns the index of the first glob metacharacter that is
// not preceded by a backslash escape, or -1. A plain IndexAny cannot be used
// because "\*" must scan past both bytes.
func firstUnescapedMeta(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			next := s[i+1]
			if next == '*' || next == '?' || next == '[' || next == '{' || next == '\\' {
				i++
			}
			continue
		}
		if c == '*' || c == '?' || c == '[' || c == '{' {
			return i
		}
	}
	return -1
}

// unescape strips escape backslashes so the prefix matches actual key bytes.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			next := s[i+1]
			if next == '*' || next == '?' || next == '[' || next == ']' ||
				next == '{' || next == '}' || next == '\\' {
				b.WriteByte(next)
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
