// Package classify assigns confidence tiers from counted structural
// features of a match. The rubric is a versioned data table so the
// classifier is unit-testable without a sample corpus, and adding
// structural complexity to a match can never raise its tier.
package classify

import (
	"github.com/dscomply/dscomply/internal/config"
	"github.com/dscomply/dscomply/internal/engine/finding"
	"github.com/dscomply/dscomply/internal/engine/match"
	"github.com/dscomply/dscomply/internal/engine/rules"
)

// Features are the counted structural properties of one match.
type Features struct {
	RuleKind         string
	Lines            int
	DynamicAttrs     int
	NestedTarget     bool
	ForwardedRef     bool
	SpreadProps      bool
	Unbalanced       bool
	Resolution       rules.Resolution
	DefinesPrimitive bool
}

// Flag is a tri-state requirement on a boolean feature.
type Flag int

const (
	FlagAny Flag = iota
	FlagSet
	FlagUnset
)

func (f Flag) matches(v bool) bool {
	switch f {
	case FlagSet:
		return v
	case FlagUnset:
		return !v
	default:
		return true
	}
}

// Cond is one row's requirements. Zero-valued fields are wildcards;
// MaxLines and MaxDynamicAttrs of 0 mean unbounded.
type Cond struct {
	Kinds            []string
	SpreadProps      Flag
	ForwardedRef     Flag
	DefinesPrimitive Flag
	NestedTarget     Flag
	Unbalanced       Flag
	MaxLines         int
	MaxDynamicAttrs  int
	Resolutions      []rules.Resolution
}

func (c *Cond) matches(f Features) bool {
	if len(c.Kinds) > 0 && !containsString(c.Kinds, f.RuleKind) {
		return false
	}
	if !c.SpreadProps.matches(f.SpreadProps) ||
		!c.ForwardedRef.matches(f.ForwardedRef) ||
		!c.DefinesPrimitive.matches(f.DefinesPrimitive) ||
		!c.NestedTarget.matches(f.NestedTarget) ||
		!c.Unbalanced.matches(f.Unbalanced) {
		return false
	}
	if c.MaxLines > 0 && f.Lines > c.MaxLines {
		return false
	}
	if c.MaxDynamicAttrs > 0 && f.DynamicAttrs > c.MaxDynamicAttrs {
		return false
	}
	if len(c.Resolutions) > 0 && !containsResolution(c.Resolutions, f.Resolution) {
		return false
	}
	return true
}

// Row is one rubric entry: a named condition and the tier it yields.
type Row struct {
	Name string
	Tier finding.Tier
	When Cond
}

// Rubric is an ordered, versioned tier table. The first matching row
// wins; Default applies when no row matches.
type Rubric struct {
	Version string
	Rows    []Row
	Default finding.Tier
}

// highDynamicAttrCap bounds how many dynamic attributes a match may
// carry and still rewrite without review.
const highDynamicAttrCap = 4

// RubricV1 is the current rubric. Manual-only conditions come first so
// that added complexity can only move a match down the table.
var RubricV1 = Rubric{
	Version: "v1",
	Rows: []Row{
		{Name: "unbalanced-shape", Tier: finding.TierManualOnly, When: Cond{Unbalanced: FlagSet}},
		{Name: "spread-props", Tier: finding.TierManualOnly, When: Cond{SpreadProps: FlagSet}},
		{Name: "forwarded-ref", Tier: finding.TierManualOnly, When: Cond{ForwardedRef: FlagSet}},
		{Name: "primitive-definition", Tier: finding.TierManualOnly, When: Cond{DefinesPrimitive: FlagSet}},
		{Name: "nested-target", Tier: finding.TierManualOnly, When: Cond{NestedTarget: FlagSet}},
		{
			Name: "dynamic-style",
			Tier: finding.TierManualOnly,
			When: Cond{Resolutions: []rules.Resolution{rules.ResolutionDynamic}},
		},
		{
			Name: "ambiguous-variant",
			Tier: finding.TierManualOnly,
			When: Cond{Resolutions: []rules.Resolution{rules.ResolutionAmbiguous}},
		},
		{
			Name: "unmapped-literal-token",
			Tier: finding.TierManualOnly,
			When: Cond{
				Kinds:       []string{config.KindLiteral},
				Resolutions: []rules.Resolution{rules.ResolutionUnmapped},
			},
		},
		{
			Name: "single-line-clean",
			Tier: finding.TierHigh,
			When: Cond{
				MaxLines:        1,
				MaxDynamicAttrs: highDynamicAttrCap,
				Resolutions:     []rules.Resolution{rules.ResolutionNoStyle, rules.ResolutionUnique},
			},
		},
	},
	Default: finding.TierMedium,
}

// Classify returns the tier for the given features along with the name
// of the rubric row that decided it.
func (r *Rubric) Classify(f Features) (finding.Tier, string) {
	for i := range r.Rows {
		if r.Rows[i].When.matches(f) {
			return r.Rows[i].Tier, r.Rows[i].Name
		}
	}
	return r.Default, "default"
}

// FeaturesOf counts the structural features of one occurrence.
func FeaturesOf(rule *rules.Rule, occ rules.Occurrence, definesPrimitive bool) Features {
	f := Features{
		RuleKind:         rule.Kind,
		Lines:            occ.Span.LineCount(),
		DefinesPrimitive: definesPrimitive,
	}

	if occ.Element == nil {
		_, _, f.Resolution = rule.Variants.ResolveLiteral(occ.Span.MatchedText)
		return f
	}

	el := occ.Element
	f.DynamicAttrs = el.DynamicAttrCount()
	f.ForwardedRef = el.HasAttr("ref")
	f.SpreadProps = el.HasSpread()
	f.Unbalanced = el.Unbalanced
	f.NestedTarget = match.ContainsTag(el.Children, rule.Tag)
	f.Resolution = styleResolution(rule, el)

	return f
}

// styleResolution maps the element's className attribute onto the
// rule's variant vocabulary. A dynamic class expression cannot be
// inspected and is never guessed at.
func styleResolution(rule *rules.Rule, el *match.Element) rules.Resolution {
	for i := range el.Attrs {
		a := &el.Attrs[i]
		if a.Name != "className" {
			continue
		}
		if a.Dynamic {
			return rules.ResolutionDynamic
		}
		return rule.Variants.ResolveClasses(a.Value).Resolution
	}
	return rules.ResolutionNoStyle
}

// Apply classifies every violation in place, using reg to resolve
// which files define the wrapped primitives. Violations are not
// mutated again after this pass.
func Apply(rubric *Rubric, set *rules.Set, violations []finding.Violation, definesPrimitive func(string) bool) {
	for i := range violations {
		v := &violations[i]
		rule, ok := set.Get(v.RuleID)
		if !ok {
			v.Tier = finding.TierManualOnly
			v.TierName = v.Tier.String()
			continue
		}
		occ := rules.Occurrence{Span: v.Span, Element: v.Element}
		v.DefinesPrimitive = definesPrimitive(v.Span.FilePath)
		tier, _ := rubric.Classify(FeaturesOf(rule, occ, v.DefinesPrimitive))
		v.Tier = tier
		v.TierName = tier.String()
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsResolution(list []rules.Resolution, r rules.Resolution) bool {
	for _, v := range list {
		if v == r {
			return true
		}
	}
	return false
}
