package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfigYAML = `rules:
  - id: raw-button
    applies_to: ["**/*.tsx"]
    kind: element
    category: interactive-element
    tag: button
    target: Button
    variants:
      - name: primary
        classes: [bg-purple-600]
exceptions:
  - kind: path
    glob: "**/*.stories.tsx"
    reason: storybook demo file
`

// writeScanFixture creates a config file and a source tree with one
// rewritable violation, returning their paths.
func writeScanFixture(t *testing.T) (configPath, srcDir string) {
	t.Helper()

	tempDir := t.TempDir()
	configPath = filepath.Join(tempDir, "dscomply.yml")
	if err := os.WriteFile(configPath, []byte(testConfigYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	srcDir = filepath.Join(tempDir, "src")
	if err := os.MkdirAll(srcDir, 0o750); err != nil {
		t.Fatal(err)
	}
	source := "<button onClick={save}>Save</button>\n"
	if err := os.WriteFile(filepath.Join(srcDir, "Toolbar.tsx"), []byte(source), 0o600); err != nil {
		t.Fatal(err)
	}
	return configPath, srcDir
}

func executeCommand(args ...string) (string, error) {
	cmd := createNewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestScanCommandRejectsConflictingModes(t *testing.T) {
	t.Parallel()

	_, err := executeCommand("scan", "--dry-run", "--write")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("Expected mutually exclusive flag error, got: %v", err)
	}
}

func TestScanCommandRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := executeCommand("scan", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("Expected unknown format error, got: %v", err)
	}
}

func TestScanCommandReportsActiveViolations(t *testing.T) {
	t.Parallel()

	configPath, srcDir := writeScanFixture(t)

	output, err := executeCommand("scan", srcDir, "--config", configPath)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected ExitError for active violations, got: %v", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.Code)
	}
	if !strings.Contains(output, "raw-button") {
		t.Errorf("Expected output to mention raw-button, got: %s", output)
	}
	if !strings.Contains(output, "active 1") {
		t.Errorf("Expected one active violation in summary, got: %s", output)
	}
}

func TestScanCommandWriteRewritesAndExitsClean(t *testing.T) {
	t.Parallel()

	configPath, srcDir := writeScanFixture(t)

	output, err := executeCommand("scan", srcDir, "--config", configPath, "--write")
	if err != nil {
		t.Fatalf("Expected clean exit after rewrite, got: %v (output: %s)", err, output)
	}

	content, err := os.ReadFile(filepath.Join(srcDir, "Toolbar.tsx")) //nolint:gosec // test-owned path
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "<Button onClick={save}>Save</Button>") {
		t.Errorf("Expected rewritten source, got: %s", content)
	}
}

func TestScanCommandJSONFormat(t *testing.T) {
	t.Parallel()

	configPath, srcDir := writeScanFixture(t)

	output, err := executeCommand("scan", srcDir, "--config", configPath, "--format", "json")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected ExitError for active violations, got: %v", err)
	}
	if !strings.Contains(output, `"schema_version"`) {
		t.Errorf("Expected JSON output, got: %s", output)
	}
}

func TestScanCommandRuleFilterUnknownRule(t *testing.T) {
	t.Parallel()

	configPath, srcDir := writeScanFixture(t)

	_, err := executeCommand("scan", srcDir, "--config", configPath, "--rule", "no-such-rule")

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("Expected run-level error, got exit error with code %d", exitErr.Code)
	}
	if err == nil {
		t.Fatal("Expected error for unknown rule filter")
	}
}

func TestScanCommandBaselineRegression(t *testing.T) {
	t.Parallel()

	configPath, srcDir := writeScanFixture(t)
	baselinePath := filepath.Join(filepath.Dir(configPath), "baseline.db")

	// Store an empty baseline, then scan a tree with one active violation.
	output, err := executeCommand("baseline", "update", filepath.Dir(configPath)+"/nosrc",
		"--config", configPath, "--baseline", baselinePath)
	if err != nil {
		t.Fatalf("Expected baseline update to succeed, got: %v (output: %s)", err, output)
	}

	output, err = executeCommand("scan", srcDir, "--config", configPath, "--baseline="+baselinePath)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected ExitError for regression, got: %v", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.Code)
	}
	if !strings.Contains(output, "regressed") {
		t.Errorf("Expected regression in output, got: %s", output)
	}
}
