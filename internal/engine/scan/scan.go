// Package scan walks source trees and applies the rule set. Files are
// scanned in parallel with no shared mutable state; the merged result
// is re-sorted so worker scheduling never affects output order.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/dscomply/dscomply/internal/engine/exceptions"
	"github.com/dscomply/dscomply/internal/engine/finding"
	"github.com/dscomply/dscomply/internal/engine/rules"
	"github.com/dscomply/dscomply/internal/logging"
)

// Options configures one scan pass.
type Options struct {
	// Jobs bounds the worker pool; <= 0 means GOMAXPROCS.
	Jobs int
}

// Result is the merged outcome of scanning all roots.
type Result struct {
	Violations   []finding.Violation
	Errors       []finding.FileError
	FilesScanned int
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
}

// Scan reads every file under roots that any rule applies to and emits
// one Violation per match, with exception predicates already applied.
// Per-file read failures are isolated into Result.Errors; only a
// cancelled context aborts the run.
func Scan(ctx context.Context, fsys afero.Fs, roots []string, set *rules.Set,
	reg *exceptions.Registry, opts Options,
) (*Result, error) {
	logger := logging.Get(ctx)

	files, walkErrs := listFiles(fsys, roots, set)
	result := &Result{Errors: walkErrs, FilesScanned: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	type fileResult struct {
		violations []finding.Violation
		err        *finding.FileError
	}
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			// Cancellation is cooperative and checked between files.
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, err := afero.ReadFile(fsys, path)
			if err != nil {
				results[i] = fileResult{err: &finding.FileError{Path: path, Op: "read", Err: err.Error()}}
				return nil
			}
			results[i] = fileResult{violations: scanFile(path, string(data), set, reg)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	for i := range results {
		if results[i].err != nil {
			result.Errors = append(result.Errors, *results[i].err)
			continue
		}
		result.Violations = append(result.Violations, results[i].violations...)
	}

	sortViolations(result.Violations)
	sortErrors(result.Errors)

	logger.Debug().
		Int("files", len(files)).
		Int("violations", len(result.Violations)).
		Int("errors", len(result.Errors)).
		Msg("scan complete")

	return result, nil
}

// scanFile applies every applicable rule to one file's content.
func scanFile(path, src string, set *rules.Set, reg *exceptions.Registry) []finding.Violation {
	var out []finding.Violation
	for _, rule := range set.Rules() {
		if !rule.AppliesToPath(path) {
			continue
		}
		for _, occ := range rule.Match(path, src) {
			v := finding.Violation{
				RuleID:   rule.ID,
				Category: rule.Category,
				Span:     occ.Span,
				Element:  occ.Element,
			}
			if excepted, reason := reg.IsExcepted(&v); excepted {
				v.Excepted = true
				v.ExceptionReason = reason
			}
			out = append(out, v)
		}
	}
	return out
}

// CountActiveViolations counts non-excepted violations, optionally for
// one rule. This is the query surface external property tests consume.
func (r *Result) CountActiveViolations(ruleID string) int {
	n := 0
	for i := range r.Violations {
		v := &r.Violations[i]
		if !v.Active() {
			continue
		}
		if ruleID != "" && v.RuleID != ruleID {
			continue
		}
		n++
	}
	return n
}

// listFiles collects, deterministically sorted, every file under roots
// that at least one rule applies to. A root may itself be a file.
func listFiles(fsys afero.Fs, roots []string, set *rules.Set) ([]string, []finding.FileError) {
	seen := make(map[string]bool)
	var files []string
	var errs []finding.FileError

	appendFile := func(path string) {
		path = filepath.ToSlash(path)
		if !seen[path] && set.AppliesToAny(path) {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := fsys.Stat(root)
		if err != nil {
			errs = append(errs, finding.FileError{Path: filepath.ToSlash(root), Op: "stat", Err: err.Error()})
			continue
		}
		if !info.IsDir() {
			appendFile(root)
			continue
		}

		walkErr := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				errs = append(errs, finding.FileError{Path: filepath.ToSlash(path), Op: "walk", Err: err.Error()})
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				if skipDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			appendFile(path)
			return nil
		})
		if walkErr != nil {
			errs = append(errs, finding.FileError{Path: filepath.ToSlash(root), Op: "walk", Err: walkErr.Error()})
		}
	}

	sort.Strings(files)
	return files, errs
}

func sortViolations(violations []finding.Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := &violations[i], &violations[j]
		if a.Span.FilePath != b.Span.FilePath {
			return a.Span.FilePath < b.Span.FilePath
		}
		if a.Span.Line != b.Span.Line {
			return a.Span.Line < b.Span.Line
		}
		if a.Span.Column != b.Span.Column {
			return a.Span.Column < b.Span.Column
		}
		return a.RuleID < b.RuleID
	})
}

func sortErrors(errs []finding.FileError) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Op < errs[j].Op
	})
}
