package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `rules:
  - id: raw-button
    applies_to: ["src/**/*.tsx"]
    kind: element
    tag: button
    target: Button
    variants:
      - name: primary
        classes: [bg-purple-600, text-white]
exceptions:
  - kind: path
    glob: "**/*.stories.tsx"
    reason: storybook demo file
  - kind: semantic
    attribute: type
    values: [checkbox, radio, range, file]
    reason: unsupported input type
`

	cfg, err := LoadFromYAML([]byte(yamlContent))
	require.NoError(t, err)

	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "raw-button", cfg.Rules[0].ID)
	assert.Equal(t, KindElement, cfg.Rules[0].Kind)
	assert.Equal(t, "Button", cfg.Rules[0].Target)
	require.Len(t, cfg.Rules[0].Variants, 1)
	assert.Equal(t, []string{"bg-purple-600", "text-white"}, cfg.Rules[0].Variants[0].Classes)

	require.Len(t, cfg.Exceptions, 2)
	assert.Equal(t, ExceptionSemantic, cfg.Exceptions[1].Kind)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "dscomply.yml")
	data, err := DefaultConfigYAML()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Rules)
}

func TestValidateRejectsEmptyRules(t *testing.T) {
	t.Parallel()

	_, err := LoadFromYAML([]byte("exceptions: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one rule")
}

func TestValidateRejectsBadRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing tag on element rule",
			yaml: `rules:
  - id: r1
    applies_to: ["**/*.tsx"]
    kind: element
    target: Button
`,
			want: "requires a tag",
		},
		{
			name: "invalid literal pattern",
			yaml: `rules:
  - id: r1
    applies_to: ["**/*.tsx"]
    kind: literal
    pattern: "[unclosed"
`,
			want: "invalid literal pattern",
		},
		{
			name: "unknown kind",
			yaml: `rules:
  - id: r1
    applies_to: ["**/*.tsx"]
    kind: markup
`,
			want: "invalid rule kind",
		},
		{
			name: "duplicate ids",
			yaml: `rules:
  - id: r1
    applies_to: ["**/*.tsx"]
    kind: element
    tag: button
    target: Button
  - id: r1
    applies_to: ["**/*.tsx"]
    kind: element
    tag: a
    target: Link
`,
			want: "duplicate rule id",
		},
		{
			name: "exception without reason",
			yaml: `rules:
  - id: r1
    applies_to: ["**/*.tsx"]
    kind: element
    tag: button
    target: Button
exceptions:
  - kind: path
    glob: "**/demo/**"
`,
			want: "reason field is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadFromYAML([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())
}
