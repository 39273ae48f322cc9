package headless

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a headless documentation run.
type Config struct {
	// Notebook is the .ipynb file to document.
	Notebook string `yaml:"notebook" json:"notebook"`

	// Output is where the documented notebook is written. Empty means the
	// input file is updated in place.
	Output string `yaml:"output" json:"output"`

	// Cell selection
	Selection SelectionConfig `yaml:"selection" json:"selection"`

	// Timeout bounds the wait for each cell's output. Zero keeps the
	// orchestrator's configured value.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// StopOnError aborts the run at the first cell that fails.
	StopOnError bool `yaml:"stop_on_error" json:"stop_on_error"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SelectionConfig picks the code cells to document. A cell is selected when
// its index is listed or its source matches one of Cells, and no Skip
// pattern matches it. With neither Cells nor Indices every code cell is
// selected.
type SelectionConfig struct {
	Cells   []string `yaml:"cells" json:"cells"`
	Skip    []string `yaml:"skip" json:"skip"`
	Indices []int    `yaml:"indices" json:"indices"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	JSON     bool `yaml:"json" json:"json"`
	Markdown bool `yaml:"markdown" json:"markdown"`
}

// LoadConfig reads a YAML run file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse run config %s: %w", path, err)
	}
	return config, nil
}

// OutputPath returns the file the documented notebook is saved to.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return c.Notebook
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Notebook == "" {
		return fmt.Errorf("notebook path is required")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	for _, i := range c.Selection.Indices {
		if i < 0 {
			return fmt.Errorf("cell index cannot be negative: %d", i)
		}
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts output_dir is required when artifacts are enabled")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// DefaultConfig returns a configuration that documents every code cell in place.
func DefaultConfig() *Config {
	return &Config{
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: ".docshelper/artifacts",
			JSON:      true,
			Markdown:  true,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}
