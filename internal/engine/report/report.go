// Package report aggregates violations and rewrite outcomes into a
// deterministic, comparable report: stable sort keys, no wall-clock
// fields, no map-iteration-order dependence. Two runs over an unchanged
// tree produce byte-identical output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dscomply/dscomply/internal/engine/finding"
)

// SchemaVersion identifies the report layout for baseline consumers.
const SchemaVersion = "1"

// Summary holds the aggregate counts for one grouping. AutoRewritable
// counts proposals that produced replacement text; AutoRewritten counts
// only edits actually committed to disk, so a dry run never shrinks the
// active count used for pass/fail decisions.
type Summary struct {
	Detected        int     `json:"detected"`
	Excepted        int     `json:"excepted"`
	AutoRewritable  int     `json:"auto_rewritable"`
	AutoRewritten   int     `json:"auto_rewritten"`
	RewrittenHigh   int     `json:"rewritten_high"`
	RewrittenMedium int     `json:"rewritten_medium"`
	ManualReview    int     `json:"manual_review"`
	Active          int     `json:"active"`
	ComplianceRate  float64 `json:"compliance_rate"`
}

// RuleSummary aggregates one rule across all files.
type RuleSummary struct {
	RuleID string `json:"rule_id"`
	Summary
}

// FileSummary aggregates one file across all rules.
type FileSummary struct {
	Path string `json:"path"`
	Summary
}

// Entry is one violation's final disposition.
type Entry struct {
	RuleID               string `json:"rule_id"`
	File                 string `json:"file"`
	Line                 int    `json:"line"`
	Column               int    `json:"column"`
	Tier                 string `json:"tier"`
	Excepted             bool   `json:"excepted"`
	ExceptionReason      string `json:"exception_reason,omitempty"`
	Rewritable           bool   `json:"rewritable"`
	Rewritten            bool   `json:"rewritten"`
	RequiresManualReview bool   `json:"requires_manual_review"`
	Reason               string `json:"reason,omitempty"`
}

// Report is the full outcome of one run.
type Report struct {
	SchemaVersion string              `json:"schema_version"`
	Totals        Summary             `json:"totals"`
	Rules         []RuleSummary       `json:"rules"`
	Files         []FileSummary       `json:"files"`
	Entries       []Entry             `json:"entries"`
	Errors        []finding.FileError `json:"errors,omitempty"`
}

// Generate aggregates violations and rewrite results, joined by rule id
// and span position. applied reports whether the rewrite results were
// committed to disk; when false the run was a dry run and every
// non-excepted violation stays active.
func Generate(violations []finding.Violation, results []finding.RewriteResult,
	errors []finding.FileError, applied bool,
) *Report {
	type key struct {
		rule  string
		file  string
		start int
	}
	resultFor := make(map[key]*finding.RewriteResult, len(results))
	for i := range results {
		r := &results[i]
		resultFor[key{r.RuleID, r.Span.FilePath, r.Span.StartOffset}] = r
	}

	ruleSums := make(map[string]*Summary)
	fileSums := make(map[string]*Summary)
	totals := &Summary{}
	entries := make([]Entry, 0, len(violations))

	for i := range violations {
		v := &violations[i]

		entry := Entry{
			RuleID:          v.RuleID,
			File:            v.Span.FilePath,
			Line:            v.Span.Line,
			Column:          v.Span.Column,
			Tier:            v.Tier.String(),
			Excepted:        v.Excepted,
			ExceptionReason: v.ExceptionReason,
		}

		rewritable := false
		manual := false
		tier := v.Tier
		if r, ok := resultFor[key{v.RuleID, v.Span.FilePath, v.Span.StartOffset}]; ok {
			if r.RequiresManualReview {
				manual = true
				entry.RequiresManualReview = true
				entry.Reason = r.Reason
			} else {
				rewritable = true
				entry.Rewritable = true
				entry.Rewritten = applied
			}
		} else if !v.Excepted {
			// No rewrite attempted for this active violation.
			manual = true
			entry.RequiresManualReview = true
		}

		for _, sum := range []*Summary{totals, summaryFor(ruleSums, v.RuleID), summaryFor(fileSums, v.Span.FilePath)} {
			sum.Detected++
			switch {
			case v.Excepted:
				sum.Excepted++
			case rewritable:
				sum.AutoRewritable++
				if applied {
					sum.AutoRewritten++
					if tier == finding.TierHigh {
						sum.RewrittenHigh++
					} else {
						sum.RewrittenMedium++
					}
				}
			case manual:
				sum.ManualReview++
			}
		}

		entries = append(entries, entry)
	}

	report := &Report{
		SchemaVersion: SchemaVersion,
		Entries:       entries,
		Errors:        sortedErrors(errors),
	}

	finishSummary(totals)
	report.Totals = *totals

	for id, sum := range ruleSums {
		finishSummary(sum)
		report.Rules = append(report.Rules, RuleSummary{RuleID: id, Summary: *sum})
	}
	sort.Slice(report.Rules, func(i, j int) bool { return report.Rules[i].RuleID < report.Rules[j].RuleID })

	for path, sum := range fileSums {
		finishSummary(sum)
		report.Files = append(report.Files, FileSummary{Path: path, Summary: *sum})
	}
	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })

	sort.SliceStable(report.Entries, func(i, j int) bool {
		a, b := &report.Entries[i], &report.Entries[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})

	return report
}

func summaryFor(m map[string]*Summary, key string) *Summary {
	if s, ok := m[key]; ok {
		return s
	}
	s := &Summary{}
	m[key] = s
	return s
}

func finishSummary(s *Summary) {
	s.Active = s.Detected - s.Excepted - s.AutoRewritten
	if s.Detected == 0 {
		s.ComplianceRate = 1
		return
	}
	s.ComplianceRate = float64(s.Excepted+s.AutoRewritten) / float64(s.Detected)
}

func sortedErrors(errors []finding.FileError) []finding.FileError {
	if len(errors) == 0 {
		return nil
	}
	out := append([]finding.FileError(nil), errors...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Op < out[j].Op
	})
	return out
}

// ActiveCount returns the number of active violations, optionally for
// one rule.
func (r *Report) ActiveCount(ruleID string) int {
	if ruleID == "" {
		return r.Totals.Active
	}
	for i := range r.Rules {
		if r.Rules[i].RuleID == ruleID {
			return r.Rules[i].Active
		}
	}
	return 0
}

// RuleCounts returns the per-rule active counts, the shape persisted as
// a baseline snapshot.
func (r *Report) RuleCounts() map[string]int {
	out := make(map[string]int, len(r.Rules))
	for i := range r.Rules {
		out[r.Rules[i].RuleID] = r.Rules[i].Active
	}
	return out
}

// JSON renders the report as stable, indented JSON.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteText renders a human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "detected %d, excepted %d, rewritable %d, rewritten %d (high %d, medium %d), manual review %d, active %d\n",
		r.Totals.Detected, r.Totals.Excepted, r.Totals.AutoRewritable, r.Totals.AutoRewritten,
		r.Totals.RewrittenHigh, r.Totals.RewrittenMedium, r.Totals.ManualReview, r.Totals.Active); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "compliance rate %.1f%%\n", r.Totals.ComplianceRate*100); err != nil {
		return err
	}

	for i := range r.Rules {
		rs := &r.Rules[i]
		if _, err := fmt.Fprintf(w, "  %-24s detected %3d  excepted %3d  rewritten %3d  manual %3d  active %3d\n",
			rs.RuleID, rs.Detected, rs.Excepted, rs.AutoRewritten, rs.ManualReview, rs.Active); err != nil {
			return err
		}
	}

	for i := range r.Errors {
		e := &r.Errors[i]
		if _, err := fmt.Fprintf(w, "  error: %s (%s): %s\n", e.Path, e.Op, e.Err); err != nil {
			return err
		}
	}
	return nil
}
