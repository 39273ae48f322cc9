// Package llm provides the text-generation provider abstraction used by the
// AI kernel.
//
// Example usage:
//
//	provider, err := openai.NewProvider(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stream, err := provider.StreamCompletion(ctx, []*llm.Message{llm.NewUserMessage("Hello!")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range stream {
//	    if chunk.IsError() {
//	        log.Fatal(chunk.Error)
//	    }
//	    fmt.Print(chunk.Content)
//	}
package llm

import (
	"context"
)

// ModelCloner is implemented by providers that can cheaply redirect calls to
// another model while sharing credentials and transport.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// Provider defines the interface for LLM integrations.
type Provider interface {
	// StreamCompletion sends messages and streams back response chunks.
	//
	// The channel is closed when streaming completes or fails. Stream-time
	// errors arrive as chunks with Error set; the returned error covers only
	// failures to start the stream.
	StreamCompletion(ctx context.Context, messages []*Message) (<-chan *StreamChunk, error)

	// Complete accumulates a streamed response into one message.
	Complete(ctx context.Context, messages []*Message) (*Message, error)

	// GetModel returns the model name being used.
	GetModel() string
}

// WithModel returns p redirected to model when p supports it, otherwise p.
func WithModel(p Provider, model string) Provider {
	if model == "" || model == p.GetModel() {
		return p
	}
	if cloner, ok := p.(ModelCloner); ok {
		return cloner.CloneWithModel(model)
	}
	return p
}

// Collect drains a stream into a single string.
func Collect(stream <-chan *StreamChunk) (string, error) {
	var content string
	for chunk := range stream {
		if chunk.IsError() {
			return content, chunk.Error
		}
		if chunk.Type != ContentTypeThinking {
			content += chunk.Content
		}
	}
	return content, nil
}
