package exceptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dscomply/dscomply/internal/config"
	"github.com/dscomply/dscomply/internal/engine/finding"
	"github.com/dscomply/dscomply/internal/engine/match"
)

func testRegistry() *Registry {
	return NewRegistry([]config.Exception{
		{Kind: config.ExceptionPath, Glob: "**/*.stories.tsx", Reason: "storybook demo file"},
		{Kind: config.ExceptionPath, Glob: "**/examples/**", Reason: "example code"},
		{Kind: config.ExceptionPrimitive, Glob: "**/ui/**", Reason: "implements the wrapped primitive"},
		{
			Kind:      config.ExceptionSemantic,
			Attribute: "type",
			Values:    []string{"checkbox", "radio", "range", "file"},
			Reason:    "input type not supported by the design-system component",
		},
	})
}

func violationAt(path, src, tag string) *finding.Violation {
	els := match.ElementMatcher{Tag: tag}.Match(path, src)
	v := &finding.Violation{RuleID: "raw-" + tag, Span: els[0].Span, Element: &els[0]}
	return v
}

func TestPathException(t *testing.T) {
	t.Parallel()

	reg := testRegistry()

	v := violationAt("src/examples/demo.tsx", `<input type="text">x</input>`, "input")
	excepted, reason := reg.IsExcepted(v)
	assert.True(t, excepted)
	assert.Equal(t, "example code", reason)

	v = violationAt("src/pages/form.tsx", `<input type="text">x</input>`, "input")
	excepted, _ = reg.IsExcepted(v)
	assert.False(t, excepted)
}

func TestSemanticExceptionAppliesRegardlessOfPath(t *testing.T) {
	t.Parallel()

	reg := testRegistry()

	v := violationAt("src/pages/form.tsx", `<input type="range" value={v} onChange={h} />`, "input")
	excepted, reason := reg.IsExcepted(v)
	assert.True(t, excepted)
	assert.Contains(t, reason, "not supported")
}

func TestSemanticExceptionIgnoresDynamicAttribute(t *testing.T) {
	t.Parallel()

	reg := testRegistry()

	// A dynamic type expression is not a member of the closed value set.
	v := violationAt("src/pages/form.tsx", `<input type={kind} />`, "input")
	excepted, _ := reg.IsExcepted(v)
	assert.False(t, excepted)
}

func TestSemanticExceptionIgnoresLiteralViolationsWithoutElement(t *testing.T) {
	t.Parallel()

	reg := testRegistry()

	v := &finding.Violation{
		RuleID: "hardcoded-color",
		Span:   match.Span{FilePath: "src/app.css", MatchedText: "#7c3aed"},
	}
	excepted, _ := reg.IsExcepted(v)
	assert.False(t, excepted)
}

func TestDefinesPrimitive(t *testing.T) {
	t.Parallel()

	reg := testRegistry()
	assert.True(t, reg.DefinesPrimitive("src/ui/Button.tsx"))
	assert.False(t, reg.DefinesPrimitive("src/pages/home.tsx"))
}

func TestIsExceptedIsPure(t *testing.T) {
	t.Parallel()

	reg := testRegistry()
	v := violationAt("src/ui/Button.stories.tsx", `<button>x</button>`, "button")

	firstExcepted, firstReason := reg.IsExcepted(v)
	for range 10 {
		excepted, reason := reg.IsExcepted(v)
		require.Equal(t, firstExcepted, excepted)
		require.Equal(t, firstReason, reason)
	}
	assert.True(t, firstExcepted)
}
