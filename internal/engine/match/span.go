// Package match locates rule occurrences in source text. Matching is
// case-sensitive and anchored to tag and token boundaries: a raw
// <button> never matches an already-migrated <Button>.
package match

import "strings"

// Span identifies one occurrence of a rule's pattern in a file.
// Offsets are byte offsets into the file content; Line and Column are
// 1-based and refer to StartOffset.
type Span struct {
	FilePath    string `json:"file"`
	StartOffset int    `json:"start"`
	EndOffset   int    `json:"end"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	MatchedText string `json:"-"`
}

// Overlaps reports whether two spans in the same file overlap.
// Spans are half-open intervals [StartOffset, EndOffset).
func (s Span) Overlaps(other Span) bool {
	if s.FilePath != other.FilePath {
		return false
	}
	return s.StartOffset < other.EndOffset && other.StartOffset < s.EndOffset
}

// LineCount returns the number of lines the span covers.
func (s Span) LineCount() int {
	return strings.Count(s.MatchedText, "\n") + 1
}

func lineCol(src string, offset int) (line, col int) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}

func makeSpan(filePath, src string, start, end int) Span {
	line, col := lineCol(src, start)
	return Span{
		FilePath:    filePath,
		StartOffset: start,
		EndOffset:   end,
		Line:        line,
		Column:      col,
		MatchedText: src[start:end],
	}
}
