package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementMatcherSimple(t *testing.T) {
	t.Parallel()

	src := `<button onClick={x}>Hi</button>`
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 1)
	el := els[0]
	assert.Equal(t, src, el.Span.MatchedText)
	assert.Equal(t, 0, el.Span.StartOffset)
	assert.Equal(t, len(src), el.Span.EndOffset)
	assert.Equal(t, 1, el.Span.Line)
	assert.Equal(t, 1, el.Span.Column)
	assert.Equal(t, "Hi", el.Children)
	assert.False(t, el.SelfClosed)
	assert.False(t, el.Unbalanced)

	require.Len(t, el.Attrs, 1)
	assert.Equal(t, "onClick", el.Attrs[0].Name)
	assert.True(t, el.Attrs[0].Dynamic)
	assert.Equal(t, "onClick={x}", el.Attrs[0].Raw)
}

func TestElementMatcherIsCaseSensitive(t *testing.T) {
	t.Parallel()

	// An already-migrated component must not be re-reported.
	src := `<Button variant="primary">Hi</Button>`
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)
	assert.Empty(t, els)
}

func TestElementMatcherAnchorsTagBoundary(t *testing.T) {
	t.Parallel()

	src := `<buttonGroup><button>a</button></buttonGroup>`
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 1)
	assert.Equal(t, `<button>a</button>`, els[0].Span.MatchedText)
}

func TestElementMatcherBalancedNesting(t *testing.T) {
	t.Parallel()

	src := `<button onClick={a}>
  outer
  <button onClick={b}>inner</button>
  tail
</button>`
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 2)

	outer, inner := els[0], els[1]
	assert.Equal(t, src, outer.Span.MatchedText)
	assert.Equal(t, 5, outer.Span.LineCount())
	assert.Contains(t, outer.Children, "tail")

	assert.Equal(t, `<button onClick={b}>inner</button>`, inner.Span.MatchedText)
	assert.Equal(t, "inner", inner.Children)
	assert.True(t, outer.Span.Overlaps(inner.Span))
}

func TestElementMatcherSelfClosing(t *testing.T) {
	t.Parallel()

	src := `<input type="range" value={v} onChange={h} />`
	els := ElementMatcher{Tag: "input"}.Match("src/form.tsx", src)

	require.Len(t, els, 1)
	el := els[0]
	assert.True(t, el.SelfClosed)
	assert.Equal(t, src, el.Span.MatchedText)
	assert.Empty(t, el.Children)

	require.Len(t, el.Attrs, 3)
	assert.Equal(t, "type", el.Attrs[0].Name)
	assert.Equal(t, "range", el.Attrs[0].Value)
	assert.False(t, el.Attrs[0].Dynamic)
	assert.True(t, el.Attrs[1].Dynamic)

	val, ok := el.LiteralAttr("type")
	require.True(t, ok)
	assert.Equal(t, "range", val)
}

func TestElementMatcherSpacedSelfClose(t *testing.T) {
	t.Parallel()

	src := `<input type="text" / >`
	els := ElementMatcher{Tag: "input"}.Match("src/form.tsx", src)

	require.Len(t, els, 1)
	el := els[0]
	assert.True(t, el.SelfClosed)
	assert.False(t, el.Unbalanced)
	assert.Equal(t, src, el.Span.MatchedText)

	// The stray slash is the terminator, not an attribute.
	require.Len(t, el.Attrs, 1)
	assert.Equal(t, "type", el.Attrs[0].Name)
	assert.Equal(t, "text", el.Attrs[0].Value)
}

func TestElementMatcherSpreadAndRef(t *testing.T) {
	t.Parallel()

	src := `<button ref={r} {...props} className="bg-gray-200">Go</button>`
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 1)
	el := els[0]
	assert.True(t, el.HasSpread())
	assert.True(t, el.HasAttr("ref"))
	assert.Equal(t, 1, el.DynamicAttrCount()) // ref only; spread tracked separately

	cls, ok := el.LiteralAttr("className")
	require.True(t, ok)
	assert.Equal(t, "bg-gray-200", cls)
}

func TestElementMatcherAttributeValueWithGreaterThan(t *testing.T) {
	t.Parallel()

	src := `<button onClick={() => go(1 > 0)}>Go</button>`
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 1)
	assert.Equal(t, "Go", els[0].Children)
	assert.False(t, els[0].Unbalanced)
}

func TestElementMatcherUnclosedTag(t *testing.T) {
	t.Parallel()

	src := "<button onClick={x}>no closing tag here\nnext line"
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 1)
	assert.True(t, els[0].Unbalanced)
}

func TestElementMatcherMultipleSiblings(t *testing.T) {
	t.Parallel()

	src := `<button>a</button><button>b</button>`
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 2)
	assert.Equal(t, "a", els[0].Children)
	assert.Equal(t, "b", els[1].Children)
	assert.False(t, els[0].Span.Overlaps(els[1].Span))
}

func TestElementMatcherLineAndColumn(t *testing.T) {
	t.Parallel()

	src := "const x = 1\nconst y = <button>a</button>\n"
	els := ElementMatcher{Tag: "button"}.Match("src/app.tsx", src)

	require.Len(t, els, 1)
	assert.Equal(t, 2, els[0].Span.Line)
	assert.Equal(t, 11, els[0].Span.Column)
}

func TestContainsTag(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsTag("<div><button>x</button></div>", "button"))
	assert.False(t, ContainsTag("<div><Button>x</Button></div>", "button"))
	assert.False(t, ContainsTag("<buttonGroup>x</buttonGroup>", "button"))
}
