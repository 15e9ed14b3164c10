package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dscomply/dscomply/internal/config"
	"github.com/dscomply/dscomply/internal/logging"
)

// ExitError carries a specific process exit code through cobra.
type ExitError struct {
	Message string
	Code    int
}

func (e *ExitError) Error() string {
	return e.Message
}

// createNewRootCommand creates the main root command that shows help by default.
func createNewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dscomply",
		Short: "Design-system compliance scanner and rewriter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Show help when run without subcommands
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Add persistent config flag
	rootCmd.PersistentFlags().StringP("config", "c", "dscomply.yml", "Path to config file")

	// Add subcommands
	rootCmd.AddCommand(
		createScanCommand(),
		createValidateCommand(),
		createRulesCommand(),
		createBaselineCommand(),
		createInitCommand(),
	)

	return rootCmd
}

// initLogging initializes file logging and returns a context carrying
// the logger.
func initLogging() (context.Context, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	fs := afero.NewOsFs()
	ctx, err := logging.New(context.Background(), fs, logging.Config{
		ProjectID: workingDir,
		Level:     zerolog.InfoLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return ctx, nil
}

// loadConfigFromCommand extracts the config path flag and loads it.
func loadConfigFromCommand(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	return cfg, nil
}
