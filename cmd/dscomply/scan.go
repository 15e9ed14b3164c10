package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dscomply/dscomply/internal/baseline"
	"github.com/dscomply/dscomply/internal/engine"
	"github.com/dscomply/dscomply/internal/engine/report"
	"github.com/dscomply/dscomply/internal/storage"
)

const (
	formatText = "text"
	formatJSON = "json"

	// baselineDefaultPath marks the --baseline flag given without a value.
	baselineDefaultPath = "default"
)

// createScanCommand creates the scan command.
func createScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan source trees for design-system violations",
		Long: "Scan source trees for raw elements and literal design values, " +
			"classify each match, and propose or apply rewrites.",
		RunE: runScanCommand,
	}

	cmd.Flags().String("rule", "", "Restrict the run to one rule id")
	cmd.Flags().Bool("dry-run", false, "Propose rewrites without touching files (default behavior)")
	cmd.Flags().Bool("write", false, "Apply eligible rewrites to disk")
	cmd.Flags().String("format", formatText, "Output format: text or json")
	cmd.Flags().String("baseline", "", "Compare active counts against a stored baseline")
	cmd.Flags().Lookup("baseline").NoOptDefVal = baselineDefaultPath
	cmd.Flags().Int("jobs", 0, "Scan worker count, 0 means all CPUs")

	return cmd
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	write, _ := cmd.Flags().GetBool("write")
	if dryRun && write {
		return errors.New("--dry-run and --write are mutually exclusive")
	}

	format, _ := cmd.Flags().GetString("format")
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown format %q: expected text or json", format)
	}

	ruleFilter, _ := cmd.Flags().GetString("rule")
	baselineFlag, _ := cmd.Flags().GetString("baseline")
	jobs, _ := cmd.Flags().GetInt("jobs")

	ctx, err := initLogging()
	if err != nil {
		return err
	}

	cfg, err := loadConfigFromCommand(cmd)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	processor, err := engine.NewProcessor(fs, cfg)
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	result, err := processor.Run(ctx, engine.Options{
		Roots:      roots,
		RuleFilter: ruleFilter,
		Write:      write,
		Jobs:       jobs,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := renderReport(out, result.Report, format); err != nil {
		return err
	}

	if baselineFlag != "" {
		regressed, err := compareBaseline(ctx, fs, baselineFlag, result.Report, write, out)
		if err != nil {
			return err
		}
		if regressed {
			return &ExitError{Code: 1, Message: "active violation counts regressed against baseline"}
		}
	}

	if result.Report.Totals.Active > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

func renderReport(w io.Writer, r *report.Report, format string) error {
	if format == formatJSON {
		data, err := r.JSON()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err //nolint:wrapcheck // Output write error is self-explanatory
	}

	for i := range r.Entries {
		entry := &r.Entries[i]
		status := color.RedString("active")
		switch {
		case entry.Excepted:
			status = color.GreenString("excepted") + " (" + entry.ExceptionReason + ")"
		case entry.Rewritten:
			status = color.GreenString("rewritten")
		case entry.Rewritable:
			status = color.CyanString("rewritable")
		case entry.RequiresManualReview:
			status = color.YellowString("manual review")
			if entry.Reason != "" {
				status += " (" + entry.Reason + ")"
			}
		}
		if _, err := fmt.Fprintf(w, "%s:%d:%d %s [%s] %s\n",
			entry.File, entry.Line, entry.Column, entry.RuleID, entry.Tier, status); err != nil {
			return err //nolint:wrapcheck // Output write error is self-explanatory
		}
	}

	return r.WriteText(w)
}

// compareBaseline diffs the run's active counts against the stored
// snapshot and reports whether any rule regressed. A write run also
// stores the new counts as the next baseline.
func compareBaseline(ctx context.Context, fs afero.Fs, path string,
	r *report.Report, update bool, w io.Writer,
) (bool, error) {
	store, err := openBaselineStore(fs, path)
	if err != nil {
		return false, err
	}
	defer func() { _ = store.Close() }()

	previous, err := store.Load(ctx)
	if err != nil {
		return false, err
	}

	if update {
		if err := store.Save(ctx, r.RuleCounts()); err != nil {
			return false, err
		}
	}

	regressed := false
	for _, delta := range baseline.Diff(previous, r.RuleCounts()) {
		direction := color.GreenString("improved")
		if delta.Regression() {
			direction = color.RedString("regressed")
			regressed = true
		}
		if _, err := fmt.Fprintf(w, "baseline %s: %s %d -> %d\n",
			direction, delta.RuleID, delta.Previous, delta.Current); err != nil {
			return false, err //nolint:wrapcheck // Output write error is self-explanatory
		}
	}
	return regressed, nil
}

func openBaselineStore(fs afero.Fs, path string) (*baseline.Store, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	if path == baselineDefaultPath {
		path, err = storage.New(fs).GetBaselinePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve baseline path: %w", err)
		}
	}

	store, err := baseline.New(path, workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline store: %w", err)
	}
	return store, nil
}
