// Package rewrite turns auto-eligible violations into offset-stable,
// content-preserving source edits. Edits for one file are applied
// back-to-front against a single immutable base so earlier edits never
// invalidate later offsets, and overlapping matches are jointly demoted
// to manual review before any write happens.
package rewrite

import (
	"sort"
	"strings"

	"github.com/dscomply/dscomply/internal/engine/finding"
	"github.com/dscomply/dscomply/internal/engine/match"
	"github.com/dscomply/dscomply/internal/engine/rules"
)

// Demotion and build-failure reasons surfaced on manual-review results.
const (
	ReasonOverlap     = "overlapping match demoted to manual review"
	ReasonManualTier  = "classified manual-only"
	ReasonUnbalanced  = "cannot resolve content boundary"
	ReasonNoVariant   = "cannot unambiguously resolve variant"
	ReasonFileChanged = "file changed since scan"
	ReasonReadFailed  = "file could not be read"
	ReasonWriteFailed = "rewritten file could not be committed"
)

// Propose builds a RewriteResult for every non-excepted violation.
// High/Medium violations get replacement text; manual-only and demoted
// ones carry RequiresManualReview and no text. Overlap demotion
// considers every violation span in a file, whatever its tier, so a
// match nested inside another never produces a write.
func Propose(set *rules.Set, violations []finding.Violation) []finding.RewriteResult {
	results := make([]finding.RewriteResult, 0, len(violations))
	byFile := make(map[string][]int)

	for i := range violations {
		v := &violations[i]
		if v.Excepted {
			continue
		}

		r := finding.RewriteResult{
			RuleID:       v.RuleID,
			Span:         v.Span,
			OriginalText: v.Span.MatchedText,
			Tier:         v.Tier,
			TierName:     v.Tier.String(),
		}

		if !v.Tier.AutoRewritable() {
			r.RequiresManualReview = true
			r.Reason = ReasonManualTier
		} else if rule, ok := set.Get(v.RuleID); !ok {
			r.RequiresManualReview = true
			r.Reason = ReasonManualTier
		} else if newText, reason, ok := build(rule, v); ok {
			r.NewText = newText
		} else {
			r.RequiresManualReview = true
			r.Reason = reason
		}

		byFile[v.Span.FilePath] = append(byFile[v.Span.FilePath], len(results))
		results = append(results, r)
	}

	demoteOverlaps(results, byFile)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Span.FilePath != results[j].Span.FilePath {
			return results[i].Span.FilePath < results[j].Span.FilePath
		}
		return results[i].Span.StartOffset < results[j].Span.StartOffset
	})

	return results
}

// demoteOverlaps forces every result whose span overlaps another
// result's span in the same file to manual review. Both sides of an
// overlap are demoted, so neither a nested nor an enclosing match is
// rewritten.
func demoteOverlaps(results []finding.RewriteResult, byFile map[string][]int) {
	for _, idxs := range byFile {
		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				ra, rb := &results[idxs[a]], &results[idxs[b]]
				if !ra.Span.Overlaps(rb.Span) {
					continue
				}
				demote(ra)
				demote(rb)
			}
		}
	}
}

func demote(r *finding.RewriteResult) {
	r.NewText = ""
	r.RequiresManualReview = true
	r.Reason = ReasonOverlap
}

// build produces the replacement text for one violation, or a reason
// it cannot be rewritten without guessing.
func build(rule *rules.Rule, v *finding.Violation) (newText, reason string, ok bool) {
	if v.Element != nil {
		return buildElement(rule, v.Element)
	}
	return buildLiteral(rule, v.Span.MatchedText)
}

// buildElement rebuilds the matched construct around the canonical
// component: every attribute not subsumed by variant mapping is kept
// verbatim, child content is carried over character-for-character, and
// partially-mapped styling is retained as a residual className.
func buildElement(rule *rules.Rule, el *match.Element) (string, string, bool) {
	if el.Unbalanced {
		return "", ReasonUnbalanced, false
	}

	variant := ""
	var residual []string
	for i := range el.Attrs {
		a := &el.Attrs[i]
		if a.Name != "className" {
			continue
		}
		if a.Dynamic {
			return "", ReasonNoVariant, false
		}
		res := rule.Variants.ResolveClasses(a.Value)
		switch res.Resolution {
		case rules.ResolutionAmbiguous:
			return "", ReasonNoVariant, false
		case rules.ResolutionUnique, rules.ResolutionPartial:
			variant = res.Variant
			residual = res.Residual
		case rules.ResolutionUnmapped:
			residual = res.Residual
		case rules.ResolutionNoStyle, rules.ResolutionDynamic:
		}
		break
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(rule.Target)
	for i := range el.Attrs {
		a := &el.Attrs[i]
		if a.Name == "className" && !a.Dynamic {
			continue // subsumed by variant mapping and residual
		}
		b.WriteString(" ")
		b.WriteString(a.Raw)
	}
	if variant != "" {
		b.WriteString(` variant="`)
		b.WriteString(variant)
		b.WriteString(`"`)
	}
	if len(residual) > 0 {
		b.WriteString(` className="`)
		b.WriteString(strings.Join(residual, " "))
		b.WriteString(`"`)
	}
	if el.SelfClosed {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
		b.WriteString(el.Children)
		b.WriteString("</")
		b.WriteString(rule.Target)
		b.WriteString(">")
	}

	return b.String(), "", true
}

// buildLiteral swaps a hardcoded literal for its token reference. Only
// an exact, unique vocabulary hit is rewritten.
func buildLiteral(rule *rules.Rule, matched string) (string, string, bool) {
	_, replaceWith, res := rule.Variants.ResolveLiteral(matched)
	if res != rules.ResolutionUnique {
		return "", ReasonNoVariant, false
	}
	return replaceWith, "", true
}
