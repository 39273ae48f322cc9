package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/entrhq/docshelper/pkg/executor/tui"
	"github.com/entrhq/docshelper/pkg/host"
	"github.com/entrhq/docshelper/pkg/notebook"
)

// runTUI opens the notebook in the interactive view
func runTUI(ctx context.Context, config *Config) error {
	s, err := newSession(config)
	if err != nil {
		return err
	}
	defer s.kernel.Wait()

	nb, err := notebook.LoadFile(config.Notebook)
	if err != nil {
		return fmt.Errorf("failed to open notebook: %w", err)
	}

	app := host.NewApp(s.kernel, host.WithLogger(s.logger.With("host")))
	app.AddPanel(filepath.Base(config.Notebook), config.Notebook, nb)

	executor, err := tui.NewExecutor(app, s.logger.With("tui"), s.noteOptions...)
	if err != nil {
		return err
	}
	return executor.Run(ctx)
}
