package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a starter configuration covering the common raw
// element and hardcoded color rules.
func DefaultConfig() *Config {
	return &Config{
		Rules: []Rule{
			{
				ID:        "raw-button",
				AppliesTo: []string{"src/**/*.tsx", "src/**/*.jsx"},
				Kind:      KindElement,
				Category:  "interactive-element",
				Tag:       "button",
				Target:    "Button",
				Variants: []Variant{
					{Name: "primary", Classes: []string{"bg-purple-600", "text-white", "px-6", "py-3"}},
					{Name: "secondary", Classes: []string{"bg-gray-200", "text-gray-900"}},
					{Name: "danger", Classes: []string{"bg-red-600", "text-white"}},
				},
			},
			{
				ID:        "raw-input",
				AppliesTo: []string{"src/**/*.tsx", "src/**/*.jsx"},
				Kind:      KindElement,
				Category:  "interactive-element",
				Tag:       "input",
				Target:    "TextField",
			},
			{
				ID:        "hardcoded-color",
				AppliesTo: []string{"src/**/*.tsx", "src/**/*.jsx", "src/**/*.css"},
				Kind:      KindLiteral,
				Category:  "design-token",
				Pattern:   `#[0-9a-fA-F]{6}`,
				Guard:     `var\(--[a-z-]*$`,
				Variants: []Variant{
					{Name: "color-primary", Value: "#7c3aed", ReplaceWith: "var(--color-primary)"},
					{Name: "color-danger", Value: "#dc2626", ReplaceWith: "var(--color-danger)"},
				},
			},
		},
		Exceptions: []Exception{
			{Kind: ExceptionPath, Glob: "**/*.stories.tsx", Reason: "storybook demo file"},
			{Kind: ExceptionPath, Glob: "**/*.test.tsx", Reason: "test file"},
			{Kind: ExceptionPath, Glob: "**/emails/**", Reason: "email templates cannot consume token references"},
			{Kind: ExceptionPrimitive, Glob: "**/ui/**", Reason: "implements the wrapped primitive"},
			{
				Kind:      ExceptionSemantic,
				Attribute: "type",
				Values:    []string{"checkbox", "radio", "range", "file"},
				Reason:    "input type not supported by the design-system component",
			},
		},
	}
}

// DefaultConfigYAML returns the default configuration as YAML bytes
func DefaultConfigYAML() ([]byte, error) {
	config := DefaultConfig()
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config to YAML: %w", err)
	}
	return data, nil
}
