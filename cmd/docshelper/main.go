// Package main provides the docshelper application: an interactive notebook
// view with AI-generated Markdown notes, and a headless mode that documents
// the selected cells of a notebook in one pass.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "github.com/entrhq/docshelper/pkg/config"
	"github.com/entrhq/docshelper/pkg/harvest"
	"github.com/entrhq/docshelper/pkg/kernel"
	"github.com/entrhq/docshelper/pkg/logging"
	"github.com/entrhq/docshelper/pkg/notes"
)

const (
	version      = "0.1.0"
	defaultModel = "gpt-4o-mini"

	modeTUI      = "tui"
	modeHeadless = "headless"
)

// Config holds the command line configuration
type Config struct {
	Notebook    string
	Mode        string
	RunConfig   string
	Settings    string
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("docshelper v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags and environment variables
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.Notebook, "notebook", "", "Path to the .ipynb notebook")
	flag.StringVar(&config.Mode, "mode", modeTUI, "Run mode: tui or headless")
	flag.StringVar(&config.RunConfig, "config", "", "Headless run file (YAML)")
	flag.StringVar(&config.Settings, "settings", "", "Settings file (default: ~/.docshelper/config.json)")
	flag.StringVar(&config.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.BaseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI API base URL (or set OPENAI_BASE_URL env var)")
	flag.StringVar(&config.Model, "model", defaultModel, "LLM model to use")
	flag.DurationVar(&config.Timeout, "timeout", 0, "How long to wait for AI output (default from settings)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "docshelper - AI notes for Jupyter notebooks\n\n")
		fmt.Fprintf(os.Stderr, "Usage: docshelper [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # TUI Mode (default)\n")
		fmt.Fprintf(os.Stderr, "  docshelper -notebook analysis.ipynb\n")
		fmt.Fprintf(os.Stderr, "  docshelper -notebook analysis.ipynb -model gpt-4o -timeout 1m\n")
		fmt.Fprintf(os.Stderr, "\n  # Headless Mode (CI/CD)\n")
		fmt.Fprintf(os.Stderr, "  docshelper -mode headless -config docs.yaml\n")
		fmt.Fprintf(os.Stderr, "  docshelper -mode headless -notebook analysis.ipynb\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	switch c.Mode {
	case modeTUI:
		if c.Notebook == "" {
			return fmt.Errorf("tui mode requires a notebook (use -notebook flag)")
		}
	case modeHeadless:
		if c.Notebook == "" && c.RunConfig == "" {
			return fmt.Errorf("headless mode requires -config or -notebook")
		}
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, modeTUI, modeHeadless)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	if err := appconfig.Initialize(config.Settings); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	if config.Mode == modeHeadless {
		return runHeadless(ctx, config)
	}
	return runTUI(ctx, config)
}

// session holds what both modes share: the kernel that runs "%%ai" cells
// and the orchestrator options from the notes settings.
type session struct {
	logger      *logging.Logger
	kernel      *kernel.LLMKernel
	noteOptions []notes.Option
	timeout     time.Duration
}

func newSession(config *Config) (*session, error) {
	logger, err := logging.NewLogger("docshelper")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging to stderr: %v\n", err)
	}

	provider, err := appconfig.BuildProvider(config.Model, config.BaseURL, config.APIKey, defaultModel)
	if err != nil {
		return nil, err
	}

	section := appconfig.GetNotes()
	builder := section.PromptBuilder(provider.GetModel())

	timeout := section.GetTimeout()
	if config.Timeout > 0 {
		timeout = config.Timeout
	}

	k := kernel.NewLLMKernel(provider,
		kernel.WithMagic(builder.Magic),
		kernel.WithLogger(logger.With("kernel")),
		kernel.WithProgress(func(cellID string, received int) {
			logger.Debugf("cell %s: %d bytes received", cellID, received)
		}),
	)

	opts := append(section.OrchestratorOptions(),
		notes.WithPromptBuilder(builder),
		notes.WithHarvester(harvest.New(
			harvest.WithTimeout(timeout),
			harvest.WithLogger(logger.With("harvest")),
		)),
	)

	logger.Infof("docshelper v%s using model %s", version, provider.GetModel())
	return &session{
		logger:      logger,
		kernel:      k,
		noteOptions: opts,
		timeout:     timeout,
	}, nil
}
