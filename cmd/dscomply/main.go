package main

import (
	"errors"
	"fmt"
	"os"
)

const runErrorExitCode = 2

func main() {
	if err := run(); err != nil {
		// Scan pass/fail is signalled through the exit code, not stderr.
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				_, _ = fmt.Fprintf(os.Stderr, "%s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}

		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(runErrorExitCode)
	}
}

func run() error {
	if err := createNewRootCommand().Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}
