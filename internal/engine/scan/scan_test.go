package scan

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dscomply/dscomply/internal/config"
	"github.com/dscomply/dscomply/internal/engine/exceptions"
	"github.com/dscomply/dscomply/internal/engine/rules"
	"github.com/dscomply/dscomply/internal/testutil"
)

func testRuleSet(t *testing.T) *rules.Set {
	t.Helper()
	set, err := rules.NewSet([]config.Rule{
		{
			ID:        "raw-button",
			AppliesTo: []string{"src/**/*.tsx"},
			Kind:      config.KindElement,
			Tag:       "button",
			Target:    "Button",
		},
		{
			ID:        "raw-input",
			AppliesTo: []string{"src/**/*.tsx"},
			Kind:      config.KindElement,
			Tag:       "input",
			Target:    "TextField",
		},
		{
			ID:        "hardcoded-color",
			AppliesTo: []string{"src/**/*.css"},
			Kind:      config.KindLiteral,
			Pattern:   `#[0-9a-fA-F]{6}`,
		},
	})
	require.NoError(t, err)
	return set
}

func testRegistry() *exceptions.Registry {
	return exceptions.NewRegistry([]config.Exception{
		{Kind: config.ExceptionPath, Glob: "**/examples/**", Reason: "example code"},
		{
			Kind:      config.ExceptionSemantic,
			Attribute: "type",
			Values:    []string{"checkbox", "radio", "range", "file"},
			Reason:    "unsupported input type",
		},
	})
}

func testTree(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"src/pages/home.tsx":    `<button onClick={x}>Hi</button>`,
		"src/pages/form.tsx":    `<input type="range" value={v} onChange={h} />`,
		"src/examples/demo.tsx": `<input type="text" />`,
		"src/theme.css":         "a { color: #7c3aed; }\n",
		"src/readme.md":         "# not scanned\n<button>ignored</button>\n",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestScanFindsViolations(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	result, err := Scan(ctx, testTree(t), []string{"src"}, testRuleSet(t), testRegistry(), Options{})
	require.NoError(t, err)

	require.Len(t, result.Violations, 4)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 4, result.FilesScanned)

	// Sorted by (file, line, column).
	assert.Equal(t, "src/examples/demo.tsx", result.Violations[0].Span.FilePath)
	assert.Equal(t, "src/pages/form.tsx", result.Violations[1].Span.FilePath)
	assert.Equal(t, "src/pages/home.tsx", result.Violations[2].Span.FilePath)
	assert.Equal(t, "src/theme.css", result.Violations[3].Span.FilePath)
}

func TestScanAppliesExceptions(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	result, err := Scan(ctx, testTree(t), []string{"src"}, testRuleSet(t), testRegistry(), Options{})
	require.NoError(t, err)

	byFile := make(map[string]bool)
	for i := range result.Violations {
		v := &result.Violations[i]
		byFile[v.Span.FilePath] = v.Excepted
	}

	// Path glob exception: recorded but excepted.
	assert.True(t, byFile["src/examples/demo.tsx"])
	// Semantic exception applies regardless of path.
	assert.True(t, byFile["src/pages/form.tsx"])
	// Plain violations stay active.
	assert.False(t, byFile["src/pages/home.tsx"])

	assert.Equal(t, 2, result.CountActiveViolations(""))
	assert.Equal(t, 1, result.CountActiveViolations("raw-button"))
	assert.Equal(t, 0, result.CountActiveViolations("raw-input"))
}

func TestScanDoesNotFlagMigratedComponents(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/done.tsx",
		[]byte(`<Button variant="primary">Hi</Button>`), 0o644))

	result, err := Scan(ctx, fs, []string{"src"}, testRuleSet(t), testRegistry(), Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Violations)
}

func TestScanIsolatesFileErrors(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	result, err := Scan(ctx, testTree(t), []string{"src", "missing-root"},
		testRuleSet(t), testRegistry(), Options{})
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "missing-root", result.Errors[0].Path)
	assert.Equal(t, "stat", result.Errors[0].Op)
	// The rest of the run completed.
	assert.Len(t, result.Violations, 4)
}

func TestScanSingleFileRoot(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	result, err := Scan(ctx, testTree(t), []string{"src/pages/home.tsx"},
		testRuleSet(t), testRegistry(), Options{})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "raw-button", result.Violations[0].RuleID)
}

func TestScanRespectsCancellation(t *testing.T) {
	t.Parallel()
	defer testutil.VerifyNoLeaks(t)
	ctx, _ := testutil.NewTestContext(t)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err := Scan(cancelled, testTree(t), []string{"src"}, testRuleSet(t), testRegistry(), Options{Jobs: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanIsDeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	serial, err := Scan(ctx, testTree(t), []string{"src"}, testRuleSet(t), testRegistry(), Options{Jobs: 1})
	require.NoError(t, err)
	parallel, err := Scan(ctx, testTree(t), []string{"src"}, testRuleSet(t), testRegistry(), Options{Jobs: 8})
	require.NoError(t, err)

	assert.Equal(t, serial.Violations, parallel.Violations)
	assert.Equal(t, serial.Errors, parallel.Errors)
}
