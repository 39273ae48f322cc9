package config

import (
	"fmt"
	"os"

	"github.com/entrhq/docshelper/pkg/llm/openai"
)

// BuildProvider creates an LLM provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func BuildProvider(cliModel, cliBaseURL, cliAPIKey, defaultModel string) (*openai.Provider, error) {
	finalModel := cliModel
	finalBaseURL := cliBaseURL
	finalAPIKey := cliAPIKey

	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if fromFile := GetLLM(); fromFile != nil {
		// A CLI model equal to the default counts as unset.
		if cliModel == "" || cliModel == defaultModel {
			if model := fromFile.GetModel(); model != "" {
				finalModel = model
			}
		}
		if finalBaseURL == "" {
			finalBaseURL = fromFile.GetBaseURL()
		}
		if finalAPIKey == "" {
			finalAPIKey = fromFile.GetAPIKey()
		}
	}

	if finalModel == "" {
		finalModel = defaultModel
	}

	if finalAPIKey == "" {
		return nil, fmt.Errorf("API key is required. Set OPENAI_API_KEY, use -api-key, or add api_key to the llm section of ~/.docshelper/config.json")
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(finalModel),
	}
	if finalBaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(finalBaseURL))
	}

	provider, err := openai.NewProvider(finalAPIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return provider, nil
}
