package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRulesCommandListsRules(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "dscomply.yml")
	if err := os.WriteFile(configPath, []byte(testConfigYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand("rules", "--config", configPath)
	if err != nil {
		t.Fatalf("Expected rules listing to succeed, got: %v", err)
	}

	if !strings.Contains(output, "raw-button") {
		t.Errorf("Expected rule id in output, got: %s", output)
	}
	if !strings.Contains(output, "<button> -> <Button>") {
		t.Errorf("Expected tag mapping in output, got: %s", output)
	}
	if !strings.Contains(output, "variants: primary") {
		t.Errorf("Expected variant names in output, got: %s", output)
	}
}

func TestRulesCommandMissingConfig(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "missing.yml")

	output, err := executeCommand("rules", "--config", configPath)
	if err != nil {
		t.Fatalf("Expected graceful handling of missing config, got: %v", err)
	}
	if !strings.Contains(output, "No rules found") {
		t.Errorf("Expected missing config notice, got: %s", output)
	}
}

func TestRulesExceptionsCommand(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "dscomply.yml")
	if err := os.WriteFile(configPath, []byte(testConfigYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand("rules", "exceptions", "--config", configPath)
	if err != nil {
		t.Fatalf("Expected exceptions listing to succeed, got: %v", err)
	}

	if !strings.Contains(output, "[path]") {
		t.Errorf("Expected exception kind in output, got: %s", output)
	}
	if !strings.Contains(output, "storybook demo file") {
		t.Errorf("Expected exception reason in output, got: %s", output)
	}
}
