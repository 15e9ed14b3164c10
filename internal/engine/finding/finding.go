// Package finding holds the records the engine stages exchange: one
// Violation per matched occurrence, rewrite outcomes, and isolated
// per-file errors.
package finding

import "github.com/dscomply/dscomply/internal/engine/match"

// Tier is the confidence tier assigned to a violation. It governs
// whether the occurrence may be auto-rewritten.
type Tier int

const (
	// TierUnclassified is the zero value before classification runs.
	TierUnclassified Tier = iota
	// TierManualOnly violations are never rewritten automatically.
	TierManualOnly
	// TierMedium violations are rewritten with a residual style attribute
	// retained when only part of the styling maps cleanly.
	TierMedium
	// TierHigh violations are rewritten without residue.
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierManualOnly:
		return "manual-only"
	default:
		return "unclassified"
	}
}

// AutoRewritable reports whether the tier permits automatic rewriting.
func (t Tier) AutoRewritable() bool {
	return t == TierHigh || t == TierMedium
}

// Violation is one occurrence of a rule's pattern in source. It is
// created fresh each run and not mutated after classification.
type Violation struct {
	RuleID           string     `json:"rule_id"`
	Category         string     `json:"category"`
	Span             match.Span `json:"span"`
	Tier             Tier       `json:"-"`
	TierName         string     `json:"tier"`
	Excepted         bool       `json:"excepted"`
	ExceptionReason  string     `json:"exception_reason,omitempty"`
	DefinesPrimitive bool       `json:"-"`
	// Element is the parsed shape for element-kind rules; nil for
	// literal matches.
	Element *match.Element `json:"-"`
}

// Active reports whether the violation counts toward pass/fail
// decisions. Excepted violations stay in the audit report but are
// excluded here.
func (v *Violation) Active() bool {
	return !v.Excepted
}

// RewriteResult is the outcome of attempting to rewrite one violation.
// A result with RequiresManualReview set carries no NewText and caused
// no write.
type RewriteResult struct {
	RuleID               string     `json:"rule_id"`
	Span                 match.Span `json:"span"`
	OriginalText         string     `json:"original_text"`
	NewText              string     `json:"new_text,omitempty"`
	Tier                 Tier       `json:"-"`
	TierName             string     `json:"tier"`
	RequiresManualReview bool       `json:"requires_manual_review"`
	Reason               string     `json:"reason,omitempty"`
}

// FileError records a non-fatal per-file failure. The file is skipped
// and the run continues.
type FileError struct {
	Path string `json:"path"`
	Op   string `json:"op"`
	Err  string `json:"error"`
}
