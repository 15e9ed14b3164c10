package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/dscomply/dscomply/internal/pathglob"
)

// Rule kinds understood by the scanner.
const (
	KindElement = "element"
	KindLiteral = "literal"
)

// Exception kinds understood by the registry.
const (
	ExceptionPath      = "path"
	ExceptionSemantic  = "semantic"
	ExceptionPrimitive = "primitive"
)

type Config struct {
	Rules      []Rule      `yaml:"rules,omitempty" mapstructure:"rules"`
	Exceptions []Exception `yaml:"exceptions,omitempty" mapstructure:"exceptions"`
}

// Rule declares one detectable violation pattern and how to resolve it
// to a replacement shape.
type Rule struct {
	ID        string    `yaml:"id" mapstructure:"id"`
	AppliesTo []string  `yaml:"applies_to" mapstructure:"applies_to"`
	Kind      string    `yaml:"kind" mapstructure:"kind"`
	Category  string    `yaml:"category,omitempty" mapstructure:"category"`
	Tag       string    `yaml:"tag,omitempty" mapstructure:"tag"`
	Target    string    `yaml:"target,omitempty" mapstructure:"target"`
	Pattern   string    `yaml:"pattern,omitempty" mapstructure:"pattern"`
	Guard     string    `yaml:"token_guard,omitempty" mapstructure:"token_guard"`
	Variants  []Variant `yaml:"variants,omitempty" mapstructure:"variants"`
}

// Variant is one entry of a rule's closed variant vocabulary. Element
// rules map a literal class set to a variant name; literal rules map a
// literal value to replacement text.
type Variant struct {
	Name        string   `yaml:"name" mapstructure:"name"`
	Classes     []string `yaml:"classes,omitempty" mapstructure:"classes"`
	Value       string   `yaml:"value,omitempty" mapstructure:"value"`
	ReplaceWith string   `yaml:"replace_with,omitempty" mapstructure:"replace_with"`
}

// Exception declares a reason an otherwise-matching occurrence is
// acceptable. Path exceptions match file globs; semantic exceptions
// match a closed set of attribute values; primitive exceptions mark
// files that implement the wrapped component itself.
type Exception struct {
	Kind      string   `yaml:"kind" mapstructure:"kind"`
	Glob      string   `yaml:"glob,omitempty" mapstructure:"glob"`
	Attribute string   `yaml:"attribute,omitempty" mapstructure:"attribute"`
	Values    []string `yaml:"values,omitempty" mapstructure:"values"`
	Reason    string   `yaml:"reason" mapstructure:"reason"`
}

func Load(path string) (*Config, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigFile(path)

	if err := viperInstance.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viperInstance.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// LoadFromYAML loads config from YAML bytes - helper for tests
func LoadFromYAML(data []byte) (*Config, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType("yaml")

	if err := viperInstance.ReadConfig(strings.NewReader(string(data))); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viperInstance.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive config validation. Any failure here is
// fatal at startup, before scanning begins.
func (c *Config) Validate() error {
	if len(c.Rules) == 0 {
		return errors.New("config must contain at least one rule")
	}

	seen := make(map[string]bool, len(c.Rules))
	for i := range c.Rules {
		rule := &c.Rules[i]
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("rule %d validation failed: %w", i+1, err)
		}
		if seen[rule.ID] {
			return fmt.Errorf("duplicate rule id %q", rule.ID)
		}
		seen[rule.ID] = true
	}

	for i := range c.Exceptions {
		if err := c.Exceptions[i].Validate(); err != nil {
			return fmt.Errorf("exception %d validation failed: %w", i+1, err)
		}
	}

	return nil
}

// Validate performs rule-level validation
func (r *Rule) Validate() error {
	if r.ID == "" {
		return errors.New("id field is required and cannot be empty")
	}
	if len(r.AppliesTo) == 0 {
		return errors.New("applies_to must declare at least one glob")
	}
	for _, glob := range r.AppliesTo {
		if err := pathglob.Validate(glob); err != nil {
			return err
		}
	}

	switch r.Kind {
	case KindElement:
		if r.Tag == "" {
			return errors.New("element rule requires a tag")
		}
		if r.Target == "" {
			return errors.New("element rule requires a target component")
		}
		for i := range r.Variants {
			if r.Variants[i].Name == "" || len(r.Variants[i].Classes) == 0 {
				return fmt.Errorf("variant %d must declare a name and classes", i+1)
			}
		}
	case KindLiteral:
		if r.Pattern == "" {
			return errors.New("literal rule requires a pattern")
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("invalid literal pattern %q: %w", r.Pattern, err)
		}
		if r.Guard != "" {
			if _, err := regexp.Compile(r.Guard); err != nil {
				return fmt.Errorf("invalid token guard %q: %w", r.Guard, err)
			}
		}
		for i := range r.Variants {
			if r.Variants[i].Value == "" || r.Variants[i].ReplaceWith == "" {
				return fmt.Errorf("variant %d must declare a value and replace_with", i+1)
			}
		}
	default:
		return fmt.Errorf("invalid rule kind %q: must be one of: element, literal", r.Kind)
	}

	return nil
}

// Validate performs exception-level validation
func (e *Exception) Validate() error {
	if e.Reason == "" {
		return errors.New("reason field is required and cannot be empty")
	}

	switch e.Kind {
	case ExceptionPath, ExceptionPrimitive:
		if e.Glob == "" {
			return fmt.Errorf("%s exception requires a glob", e.Kind)
		}
		if err := pathglob.Validate(e.Glob); err != nil {
			return err
		}
	case ExceptionSemantic:
		if e.Attribute == "" || len(e.Values) == 0 {
			return errors.New("semantic exception requires an attribute and values")
		}
	default:
		return fmt.Errorf("invalid exception kind %q: must be one of: path, semantic, primitive", e.Kind)
	}

	return nil
}
