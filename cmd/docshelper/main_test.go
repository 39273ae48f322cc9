package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "tui with notebook", config: Config{Mode: modeTUI, Notebook: "a.ipynb"}},
		{name: "tui without notebook", config: Config{Mode: modeTUI}, wantErr: "requires a notebook"},
		{name: "headless with run file", config: Config{Mode: modeHeadless, RunConfig: "docs.yaml"}},
		{name: "headless with notebook", config: Config{Mode: modeHeadless, Notebook: "a.ipynb"}},
		{name: "headless without input", config: Config{Mode: modeHeadless}, wantErr: "requires -config or -notebook"},
		{name: "unknown mode", config: Config{Mode: "batch", Notebook: "a.ipynb"}, wantErr: "unknown mode"},
		{name: "negative timeout", config: Config{Mode: modeTUI, Notebook: "a.ipynb", Timeout: -time.Second}, wantErr: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Run("notebook flag only", func(t *testing.T) {
		cfg, err := loadAndValidateConfig(&Config{Notebook: "a.ipynb", Timeout: 2 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, "a.ipynb", cfg.Notebook)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.True(t, cfg.Artifacts.Enabled)
	})

	t.Run("flags override run file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docs.yaml")
		data := "notebook: from-file.ipynb\ntimeout: 5s\nselection:\n  cells: [\"*plot*\"]\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		cfg, err := loadAndValidateConfig(&Config{RunConfig: path, Notebook: "flag.ipynb"})
		require.NoError(t, err)
		assert.Equal(t, "flag.ipynb", cfg.Notebook)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, []string{"*plot*"}, cfg.Selection.Cells)
	})

	t.Run("missing run file", func(t *testing.T) {
		_, err := loadAndValidateConfig(&Config{RunConfig: filepath.Join(t.TempDir(), "none.yaml")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load headless config")
	})

	t.Run("run file without notebook", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docs.yaml")
		require.NoError(t, os.WriteFile(path, []byte("timeout: 1s\n"), 0o600))

		_, err := loadAndValidateConfig(&Config{RunConfig: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid headless configuration")
	})
}
