package match

import (
	"regexp"
	"strings"
)

// LiteralMatcher finds hardcoded literal values (colors, fonts, sizes)
// that are not backed by a design-token reference.
type LiteralMatcher struct {
	Pattern *regexp.Regexp
	// Guard, when set, is matched against the text between the start of
	// the line and the literal; a hit means the literal is already part
	// of a token reference and is skipped.
	Guard *regexp.Regexp
}

// Match returns the spans of all unguarded literal occurrences in src.
// Matches adjacent to word characters are rejected so a six-digit hex
// pattern never truncates an eight-digit color.
func (m LiteralMatcher) Match(filePath, src string) []Span {
	var out []Span
	for _, loc := range m.Pattern.FindAllStringIndex(src, -1) {
		start, end := loc[0], loc[1]
		if !atTokenBoundary(src, start, end) {
			continue
		}
		if m.Guard != nil {
			lineStart := strings.LastIndexByte(src[:start], '\n') + 1
			if m.Guard.MatchString(src[lineStart:start]) {
				continue
			}
		}
		out = append(out, makeSpan(filePath, src, start, end))
	}
	return out
}

func atTokenBoundary(src string, start, end int) bool {
	if start > 0 && isWordByte(src[start-1]) {
		return false
	}
	if end < len(src) && isWordByte(src[end]) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
