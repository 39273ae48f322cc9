package main

import (
	"context"
	"fmt"

	"github.com/entrhq/docshelper/pkg/executor/headless"
)

// runHeadless documents the selected cells without user interaction
func runHeadless(ctx context.Context, config *Config) error {
	execConfig, err := loadAndValidateConfig(config)
	if err != nil {
		return err
	}

	s, err := newSession(config)
	if err != nil {
		return err
	}
	defer s.kernel.Wait()

	if execConfig.Timeout == 0 {
		execConfig.Timeout = s.timeout
	}

	executor, err := headless.NewExecutor(s.kernel, execConfig,
		headless.WithFileLogger(s.logger.With("headless")),
		headless.WithNoteOptions(s.noteOptions...),
	)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}
	return executor.Run(ctx)
}

// loadAndValidateConfig loads the run file, if any, and applies the
// command line overrides.
func loadAndValidateConfig(config *Config) (*headless.Config, error) {
	execConfig := headless.DefaultConfig()
	if config.RunConfig != "" {
		loaded, err := headless.LoadConfig(config.RunConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load headless config: %w", err)
		}
		execConfig = loaded
	}

	if config.Notebook != "" {
		execConfig.Notebook = config.Notebook
	}
	if config.Timeout > 0 {
		execConfig.Timeout = config.Timeout
	}

	if err := execConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid headless configuration: %w", err)
	}
	return execConfig, nil
}
