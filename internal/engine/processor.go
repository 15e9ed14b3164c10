// Package engine runs the full compliance pipeline: scan, classify,
// propose rewrites, optionally commit them, and aggregate the report.
package engine

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/dscomply/dscomply/internal/config"
	"github.com/dscomply/dscomply/internal/engine/classify"
	"github.com/dscomply/dscomply/internal/engine/exceptions"
	"github.com/dscomply/dscomply/internal/engine/finding"
	"github.com/dscomply/dscomply/internal/engine/report"
	"github.com/dscomply/dscomply/internal/engine/rewrite"
	"github.com/dscomply/dscomply/internal/engine/rules"
	"github.com/dscomply/dscomply/internal/engine/scan"
	"github.com/dscomply/dscomply/internal/logging"
)

// Processor holds the compiled rule set and exception registry for one
// configuration. Both are built once and never mutated afterwards, so a
// Processor is safe for repeated runs.
type Processor struct {
	fs  afero.Fs
	set *rules.Set
	reg *exceptions.Registry
}

// Options configures one processing run.
type Options struct {
	// Roots are the files or directories to scan.
	Roots []string
	// RuleFilter restricts the run to one rule id when non-empty.
	RuleFilter string
	// Write commits eligible rewrites to disk. When false the run is a
	// pure proposal pass and no file is touched.
	Write bool
	// Jobs bounds the scan worker pool; <= 0 means GOMAXPROCS.
	Jobs int
}

// RunResult is the outcome of one processing run.
type RunResult struct {
	Report       *report.Report
	Violations   []finding.Violation
	Rewrites     []finding.RewriteResult
	Outcome      *rewrite.Outcome
	FilesScanned int
}

// CountActiveViolations returns the number of violations that are
// neither excepted nor auto-rewritten, optionally for one rule.
func (r *RunResult) CountActiveViolations(ruleID string) int {
	return r.Report.ActiveCount(ruleID)
}

// NewProcessor compiles the configuration into a ready processor.
func NewProcessor(fs afero.Fs, cfg *config.Config) (*Processor, error) {
	set, err := rules.NewSet(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	return &Processor{
		fs:  fs,
		set: set,
		reg: exceptions.NewRegistry(cfg.Exceptions),
	}, nil
}

// Run executes the pipeline over opts.Roots. Per-file failures are
// collected into the report; only an invalid rule filter or a cancelled
// context fails the run itself.
func (p *Processor) Run(ctx context.Context, opts Options) (*RunResult, error) {
	logger := logging.Get(ctx)

	set := p.set
	if opts.RuleFilter != "" {
		filtered, err := set.Filter(opts.RuleFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to filter rules: %w", err)
		}
		set = filtered
	}

	scanResult, err := scan.Scan(ctx, p.fs, opts.Roots, set, p.reg, scan.Options{Jobs: opts.Jobs})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	classify.Apply(&classify.RubricV1, set, scanResult.Violations, p.reg.DefinesPrimitive)

	rewrites := rewrite.Propose(set, scanResult.Violations)

	runResult := &RunResult{
		Violations:   scanResult.Violations,
		Rewrites:     rewrites,
		FilesScanned: scanResult.FilesScanned,
	}

	errors := scanResult.Errors
	if opts.Write {
		outcome, applyErr := rewrite.Apply(ctx, p.fs, rewrites)
		runResult.Outcome = outcome
		if outcome != nil {
			errors = append(errors, outcome.Errors...)
		}
		if applyErr != nil {
			return nil, fmt.Errorf("rewrite failed: %w", applyErr)
		}
		logger.Info().
			Int("files_changed", outcome.FilesChanged).
			Int("edits_applied", outcome.EditsApplied).
			Msg("rewrites committed")
	}

	runResult.Report = report.Generate(scanResult.Violations, rewrites, errors, opts.Write)

	logger.Debug().
		Int("files_scanned", runResult.FilesScanned).
		Int("detected", runResult.Report.Totals.Detected).
		Int("active", runResult.Report.Totals.Active).
		Msg("run complete")

	return runResult, nil
}
