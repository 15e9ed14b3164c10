package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dscomply/dscomply/internal/config"
)

// createRulesCommand creates the rules listing command.
func createRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List configured rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}

			// Check if config file exists
			if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No rules found - %s does not exist\n", configPath)
				return nil
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), formatRules(cfg))
			return nil
		},
	}

	cmd.AddCommand(createRulesExceptionsCommand())

	return cmd
}

// createRulesExceptionsCommand creates the exception listing subcommand.
func createRulesExceptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exceptions",
		Short: "List configured exceptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfigFromCommand(cmd)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), formatExceptions(cfg))
			return nil
		},
	}
}

func formatRules(cfg *config.Config) string {
	var sb strings.Builder
	for i, rule := range cfg.Rules {
		fmt.Fprintf(&sb, "%d. %s (%s/%s)\n", i+1, rule.ID, rule.Kind, rule.Category)
		if rule.Kind == config.KindElement {
			fmt.Fprintf(&sb, "   <%s> -> <%s>\n", rule.Tag, rule.Target)
		} else {
			fmt.Fprintf(&sb, "   %s -> design token\n", rule.Pattern)
		}
		fmt.Fprintf(&sb, "   applies to: %s\n", strings.Join(rule.AppliesTo, ", "))
		if len(rule.Variants) > 0 {
			names := make([]string, 0, len(rule.Variants))
			for _, v := range rule.Variants {
				names = append(names, v.Name)
			}
			fmt.Fprintf(&sb, "   variants: %s\n", strings.Join(names, ", "))
		}
	}
	return sb.String()
}

func formatExceptions(cfg *config.Config) string {
	var sb strings.Builder
	for i, exc := range cfg.Exceptions {
		fmt.Fprintf(&sb, "%d. [%s] ", i+1, exc.Kind)
		switch exc.Kind {
		case config.ExceptionSemantic:
			fmt.Fprintf(&sb, "%s in {%s}", exc.Attribute, strings.Join(exc.Values, ", "))
		default:
			sb.WriteString(exc.Glob)
		}
		fmt.Fprintf(&sb, " - %s\n", exc.Reason)
	}
	return sb.String()
}
