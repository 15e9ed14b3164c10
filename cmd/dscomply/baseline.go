package main

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dscomply/dscomply/internal/engine"
)

// createBaselineCommand creates the baseline management command.
func createBaselineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage stored violation baselines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		createBaselineUpdateCommand(),
		createBaselineShowCommand(),
	)

	return cmd
}

// createBaselineUpdateCommand scans and stores the current per-rule
// active counts as the new baseline.
func createBaselineUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [paths...]",
		Short: "Scan and store current active counts as the baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result, err := processor.Run(ctx, engine.Options{Roots: roots})
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("baseline")
			store, err := openBaselineStore(fs, path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			counts := result.Report.RuleCounts()
			if err := store.Save(ctx, counts); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d rules, %d active violations\n",
				len(counts), result.Report.Totals.Active)
			return nil
		},
	}

	cmd.Flags().String("baseline", baselineDefaultPath, "Baseline database path")

	return cmd
}

// createBaselineShowCommand prints the stored baseline counts.
func createBaselineShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored baseline counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := initLogging()
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("baseline")
			store, err := openBaselineStore(afero.NewOsFs(), path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			counts, err := store.Load(ctx)
			if err != nil {
				return err
			}

			if len(counts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No baseline stored")
				return nil
			}

			ruleIDs := make([]string, 0, len(counts))
			for ruleID := range counts {
				ruleIDs = append(ruleIDs, ruleID)
			}
			sort.Strings(ruleIDs)

			for _, ruleID := range ruleIDs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d\n", ruleID, counts[ruleID])
			}
			return nil
		},
	}

	cmd.Flags().String("baseline", baselineDefaultPath, "Baseline database path")

	return cmd
}
