package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dscomply/dscomply/internal/config"
)

const configFileMode = 0o600

// createInitCommand creates the init command that writes a starter
// config.
func createInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists", configPath)
			}

			data, err := config.DefaultConfigYAML()
			if err != nil {
				return err
			}

			if err := os.WriteFile(configPath, data, configFileMode); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
			return nil
		},
	}
}
