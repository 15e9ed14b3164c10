package match

import "strings"

// Attr is one attribute of a matched element's opening tag, kept
// verbatim so the rewriter can preserve it character-for-character.
type Attr struct {
	Name    string
	Value   string // unquoted literal value, or raw expression text for dynamic values
	Raw     string // verbatim source text of the whole attribute
	Dynamic bool   // value was a {...} expression
	Spread  bool   // {...expr} spread
}

// Element is one matched markup construct: its whole span from the
// opening tag through the balanced closing tag.
type Element struct {
	Span       Span
	TagName    string
	Attrs      []Attr
	SelfClosed bool
	Unbalanced bool   // opening tag without a resolvable closing tag
	Children   string // verbatim inner content; empty when self-closed
}

// LiteralAttr returns the literal (non-dynamic) value of the named
// attribute and whether it is present as a literal.
func (e *Element) LiteralAttr(name string) (string, bool) {
	for i := range e.Attrs {
		a := &e.Attrs[i]
		if a.Name == name && !a.Dynamic && !a.Spread {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present in any form.
func (e *Element) HasAttr(name string) bool {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			return true
		}
	}
	return false
}

// DynamicAttrCount counts attributes whose values are expressions.
// Spread attributes are tracked separately and not counted here.
func (e *Element) DynamicAttrCount() int {
	n := 0
	for i := range e.Attrs {
		if e.Attrs[i].Dynamic && !e.Attrs[i].Spread {
			n++
		}
	}
	return n
}

// HasSpread reports whether the opening tag carries spread props.
func (e *Element) HasSpread() bool {
	for i := range e.Attrs {
		if e.Attrs[i].Spread {
			return true
		}
	}
	return false
}

// ElementMatcher finds whole raw-element constructs for one tag name.
type ElementMatcher struct {
	Tag string
}

// Match returns every occurrence of the tag in src, including
// occurrences nested inside another occurrence. The span of a balanced
// match covers the opening tag through the matching closing tag even
// across lines; an unbalanced opening tag yields an element flagged
// Unbalanced whose span covers the opening tag only.
func (m ElementMatcher) Match(filePath, src string) []Element {
	open := "<" + m.Tag
	var out []Element

	pos := 0
	for {
		idx := strings.Index(src[pos:], open)
		if idx < 0 {
			break
		}
		start := pos + idx
		nameEnd := start + len(open)
		if !atTagBoundary(src, nameEnd) {
			pos = start + 1
			continue
		}

		openEnd, selfClosed, ok := scanOpenTag(src, nameEnd)
		if !ok {
			// Malformed opening tag; record as unbalanced through end of line.
			lineEnd := strings.IndexByte(src[start:], '\n')
			end := len(src)
			if lineEnd >= 0 {
				end = start + lineEnd
			}
			el := Element{Span: makeSpan(filePath, src, start, end), TagName: m.Tag, Unbalanced: true}
			out = append(out, el)
			pos = nameEnd
			continue
		}

		el := Element{
			TagName:    m.Tag,
			Attrs:      parseAttrs(src[nameEnd : openTagBodyEnd(src, openEnd, selfClosed)]),
			SelfClosed: selfClosed,
		}

		if selfClosed {
			el.Span = makeSpan(filePath, src, start, openEnd)
		} else if closeStart, closeEnd, found := findBalancedClose(src, openEnd, m.Tag); found {
			el.Span = makeSpan(filePath, src, start, closeEnd)
			el.Children = src[openEnd:closeStart]
		} else {
			el.Span = makeSpan(filePath, src, start, openEnd)
			el.Unbalanced = true
		}

		out = append(out, el)
		// Resume just past the opening tag so nested same-name
		// occurrences are matched in their own right.
		pos = openEnd
	}

	return out
}

// ContainsTag reports whether src contains an opening tag for name at a
// tag boundary. Used for nested-target detection and post-rewrite
// verification.
func ContainsTag(src, name string) bool {
	open := "<" + name
	pos := 0
	for {
		idx := strings.Index(src[pos:], open)
		if idx < 0 {
			return false
		}
		if atTagBoundary(src, pos+idx+len(open)) {
			return true
		}
		pos += idx + 1
	}
}

// atTagBoundary reports whether the byte at offset terminates a tag
// name, so "<buttonx" does not match tag "button".
func atTagBoundary(src string, offset int) bool {
	if offset >= len(src) {
		return false
	}
	switch src[offset] {
	case ' ', '\t', '\n', '\r', '>', '/':
		return true
	}
	return false
}

// scanOpenTag scans from the end of the tag name to the '>' closing the
// opening tag, tracking quotes and JSX expression braces so a '>'
// inside an attribute value does not terminate the tag.
func scanOpenTag(src string, from int) (end int, selfClosed, ok bool) {
	var quote byte
	depth := 0
	for i := from; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth == 0 {
				return i + 1, closedBySlash(src, from, i), true
			}
		case '<':
			if depth == 0 {
				// A new tag opened before this one closed.
				return 0, false, false
			}
		}
	}
	return 0, false, false
}

// closedBySlash reports whether the last non-whitespace byte before the
// terminating '>' is '/', so a spaced self-close like "<input / >"
// counts as self-closed.
func closedBySlash(src string, from, gt int) bool {
	for j := gt - 1; j >= from; j-- {
		switch src[j] {
		case ' ', '\t', '\n', '\r':
			continue
		case '/':
			return true
		default:
			return false
		}
	}
	return false
}

// openTagBodyEnd returns the offset just before '>' (or '/>', spaced or
// not) so the attribute text excludes the tag terminator.
func openTagBodyEnd(src string, openEnd int, selfClosed bool) int {
	end := openEnd - 1 // drop '>'
	if selfClosed {
		for end > 0 && isSpace(src[end-1]) {
			end--
		}
		end-- // drop '/'
	}
	return end
}

// findBalancedClose locates the closing tag matching an opening tag
// that ends at offset from, tracking nested same-name tags.
func findBalancedClose(src string, from int, tag string) (closeStart, closeEnd int, found bool) {
	open := "<" + tag
	closing := "</" + tag
	depth := 1
	i := from

	for i < len(src) {
		nextOpen := strings.Index(src[i:], open)
		nextClose := strings.Index(src[i:], closing)
		if nextClose < 0 {
			return 0, 0, false
		}

		if nextOpen >= 0 && nextOpen < nextClose {
			at := i + nextOpen
			nameEnd := at + len(open)
			if !atTagBoundary(src, nameEnd) || nameEnd == i+nextClose+1 {
				// "</tag" contains "<tag" shifted by one; skip the overlap
				// and any non-boundary hit.
				i = at + 1
				continue
			}
			end, selfClosed, ok := scanOpenTag(src, nameEnd)
			if !ok {
				return 0, 0, false
			}
			if !selfClosed {
				depth++
			}
			i = end
			continue
		}

		at := i + nextClose
		gt := strings.IndexByte(src[at:], '>')
		if gt < 0 {
			return 0, 0, false
		}
		rest := strings.TrimSpace(src[at+len(closing) : at+gt])
		if rest != "" {
			// "</tagother>", not our closing tag.
			i = at + 1
			continue
		}
		depth--
		if depth == 0 {
			return at, at + gt + 1, true
		}
		i = at + gt + 1
	}

	return 0, 0, false
}

// parseAttrs parses the attribute text of an opening tag into ordered
// attributes, preserving each one's verbatim source text.
func parseAttrs(s string) []Attr {
	var attrs []Attr
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		if s[i] == '{' {
			end := scanBraces(s, i)
			raw := s[start:end]
			inner := strings.TrimSpace(raw[1 : len(raw)-1])
			attrs = append(attrs, Attr{
				Raw:     raw,
				Value:   inner,
				Dynamic: true,
				Spread:  strings.HasPrefix(inner, "..."),
			})
			i = end
			continue
		}

		nameEnd := i
		for nameEnd < len(s) && !isSpace(s[nameEnd]) && s[nameEnd] != '=' {
			nameEnd++
		}
		name := s[i:nameEnd]
		i = nameEnd

		if i >= len(s) || s[i] != '=' {
			attrs = append(attrs, Attr{Name: name, Raw: name})
			continue
		}
		i++ // '='

		switch {
		case i < len(s) && (s[i] == '"' || s[i] == '\''):
			quote := s[i]
			end := i + 1
			for end < len(s) && s[end] != quote {
				end++
			}
			if end < len(s) {
				end++
			}
			attrs = append(attrs, Attr{
				Name:  name,
				Value: s[i+1 : end-1],
				Raw:   s[start:end],
			})
			i = end
		case i < len(s) && s[i] == '{':
			end := scanBraces(s, i)
			attrs = append(attrs, Attr{
				Name:    name,
				Value:   strings.TrimSpace(s[i+1 : end-1]),
				Raw:     s[start:end],
				Dynamic: true,
			})
			i = end
		default:
			end := i
			for end < len(s) && !isSpace(s[end]) {
				end++
			}
			attrs = append(attrs, Attr{Name: name, Value: s[i:end], Raw: s[start:end]})
			i = end
		}
	}
	return attrs
}

// scanBraces returns the offset just past the brace balanced with the
// one at from, respecting string literals inside the expression.
func scanBraces(s string, from int) int {
	depth := 0
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
