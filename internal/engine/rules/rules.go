// Package rules compiles declarative rule configuration into an
// immutable RuleSet. A Set is loaded once at startup and read-only
// thereafter; runs receive it as an explicit argument.
package rules

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dscomply/dscomply/internal/config"
	"github.com/dscomply/dscomply/internal/engine/match"
	"github.com/dscomply/dscomply/internal/pathglob"
)

var (
	// ErrUnknownRule is returned when a rule filter names no configured rule.
	ErrUnknownRule = errors.New("unknown rule id")
	// ErrNoRules is returned when a set would be empty.
	ErrNoRules = errors.New("rule set is empty")
)

// Rule is one compiled violation pattern plus its canonical replacement
// shape. Immutable after NewSet.
type Rule struct {
	ID        string
	Kind      string
	Category  string
	AppliesTo []string
	Tag       string
	Target    string
	Variants  VariantTable

	pattern *regexp.Regexp
	guard   *regexp.Regexp
}

// Occurrence is one raw match of a rule before exception handling and
// classification. Element is set for element-kind rules only.
type Occurrence struct {
	Span    match.Span
	Element *match.Element
}

// Set is an immutable collection of compiled rules.
type Set struct {
	rules []*Rule
	byID  map[string]*Rule
}

// NewSet compiles rule configuration. Any compilation failure is a
// fatal rule-config error surfaced before scanning begins.
func NewSet(cfgs []config.Rule) (*Set, error) {
	if len(cfgs) == 0 {
		return nil, ErrNoRules
	}

	set := &Set{byID: make(map[string]*Rule, len(cfgs))}
	for i := range cfgs {
		rule, err := compile(&cfgs[i])
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", cfgs[i].ID, err)
		}
		if _, dup := set.byID[rule.ID]; dup {
			return nil, fmt.Errorf("rule %q: duplicate id", rule.ID)
		}
		set.rules = append(set.rules, rule)
		set.byID[rule.ID] = rule
	}
	return set, nil
}

func compile(cfg *config.Rule) (*Rule, error) {
	rule := &Rule{
		ID:        cfg.ID,
		Kind:      cfg.Kind,
		Category:  cfg.Category,
		AppliesTo: append([]string(nil), cfg.AppliesTo...),
		Tag:       cfg.Tag,
		Target:    cfg.Target,
		Variants:  newVariantTable(cfg.Variants),
	}
	if rule.Category == "" {
		rule.Category = cfg.Kind
	}

	if cfg.Kind == config.KindLiteral {
		pattern, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		rule.pattern = pattern
		if cfg.Guard != "" {
			guard, err := regexp.Compile(cfg.Guard)
			if err != nil {
				return nil, fmt.Errorf("invalid token guard: %w", err)
			}
			rule.guard = guard
		}
	}

	return rule, nil
}

// Rules returns the compiled rules in declaration order.
func (s *Set) Rules() []*Rule {
	return s.rules
}

// Get looks up a rule by id.
func (s *Set) Get(id string) (*Rule, bool) {
	rule, ok := s.byID[id]
	return rule, ok
}

// Filter returns a set containing only the named rule.
func (s *Set) Filter(id string) (*Set, error) {
	rule, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, id)
	}
	return &Set{rules: []*Rule{rule}, byID: map[string]*Rule{id: rule}}, nil
}

// AppliesToAny reports whether any rule in the set applies to path.
func (s *Set) AppliesToAny(path string) bool {
	for _, rule := range s.rules {
		if rule.AppliesToPath(path) {
			return true
		}
	}
	return false
}

// AppliesToPath reports whether the rule's globs cover the given
// slash-separated path.
func (r *Rule) AppliesToPath(path string) bool {
	for _, glob := range r.AppliesTo {
		if pathglob.Match(glob, path) {
			return true
		}
	}
	return false
}

// Match finds every occurrence of the rule in src. The caller is
// responsible for having checked AppliesToPath.
func (r *Rule) Match(filePath, src string) []Occurrence {
	if r.Kind == config.KindLiteral {
		spans := match.LiteralMatcher{Pattern: r.pattern, Guard: r.guard}.Match(filePath, src)
		out := make([]Occurrence, 0, len(spans))
		for _, span := range spans {
			out = append(out, Occurrence{Span: span})
		}
		return out
	}

	elements := match.ElementMatcher{Tag: r.Tag}.Match(filePath, src)
	out := make([]Occurrence, 0, len(elements))
	for i := range elements {
		el := elements[i]
		out = append(out, Occurrence{Span: el.Span, Element: &el})
	}
	return out
}
