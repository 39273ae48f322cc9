// Package kernel executes notebook code cells. The LLM kernel understands
// a single cell magic, "%%ai [model]", whose body is sent to a language
// model; the answer is displayed as a Markdown result once complete.
package kernel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/entrhq/docshelper/pkg/llm"
	"github.com/entrhq/docshelper/pkg/logging"
	"github.com/entrhq/docshelper/pkg/notebook"
)

// DefaultMagic is the cell magic recognized by LLMKernel.
const DefaultMagic = "%%ai"

const defaultSystemPrompt = "You are a technical writer documenting Jupyter notebook cells. " +
	"Answer in GitHub-flavored Markdown."

// Magic is a parsed cell magic header.
type Magic struct {
	Name  string
	Model string
	Body  string
}

// ParseMagic splits a "%%name [model]" header line from the cell body.
func ParseMagic(source, name string) (Magic, bool) {
	source = strings.TrimLeft(source, " \t\r\n")
	header, body, _ := strings.Cut(source, "\n")
	fields := strings.Fields(header)
	if len(fields) == 0 || fields[0] != name {
		return Magic{}, false
	}
	m := Magic{Name: name, Body: strings.TrimSpace(body)}
	if len(fields) > 1 {
		m.Model = fields[1]
	}
	return m, true
}

// LLMKernel runs "%%ai" cells against an llm.Provider.
type LLMKernel struct {
	provider     llm.Provider
	magic        string
	systemPrompt string
	logger       *logging.Logger
	onProgress   func(cellID string, received int)

	wg sync.WaitGroup
}

// Option configures an LLMKernel.
type Option func(*LLMKernel)

// WithMagic changes the recognized magic name.
func WithMagic(magic string) Option {
	return func(k *LLMKernel) {
		if magic != "" {
			k.magic = magic
		}
	}
}

// WithSystemPrompt overrides the system message.
func WithSystemPrompt(prompt string) Option {
	return func(k *LLMKernel) {
		if prompt != "" {
			k.systemPrompt = prompt
		}
	}
}

// WithLogger sets the kernel logger.
func WithLogger(logger *logging.Logger) Option {
	return func(k *LLMKernel) {
		k.logger = logger
	}
}

// WithProgress registers a callback invoked with the number of answer bytes
// received so far while a completion streams.
func WithProgress(fn func(cellID string, received int)) Option {
	return func(k *LLMKernel) {
		k.onProgress = fn
	}
}

// NewLLMKernel creates a kernel backed by provider.
func NewLLMKernel(provider llm.Provider, opts ...Option) *LLMKernel {
	k := &LLMKernel{
		provider:     provider,
		magic:        DefaultMagic,
		systemPrompt: defaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Execute clears the cell's outputs and starts the completion in the
// background. It returns once the request has been started; the Markdown
// result is appended to the cell's outputs when the stream ends.
func (k *LLMKernel) Execute(ctx context.Context, cell *notebook.Cell) error {
	outputs := cell.Outputs()
	if outputs == nil {
		return fmt.Errorf("cell %s is not a code cell", cell.ID())
	}
	outputs.Clear()

	magic, ok := ParseMagic(cell.Source(), k.magic)
	if !ok {
		outputs.Append(&notebook.StreamRecord{
			Name: "stderr",
			Text: notebook.NewText(fmt.Sprintf("no code kernel attached; only %s cells can run\n", k.magic)),
		})
		return nil
	}
	if magic.Body == "" {
		outputs.Append(&notebook.ErrorRecord{EName: "UsageError", EValue: fmt.Sprintf("%s cell has no prompt", k.magic)})
		return nil
	}

	provider := llm.WithModel(k.provider, magic.Model)
	stream, err := provider.StreamCompletion(ctx, []*llm.Message{
		llm.NewSystemMessage(k.systemPrompt),
		llm.NewUserMessage(magic.Body),
	})
	if err != nil {
		k.logger.Errorf("cell %s: failed to start completion: %v", cell.ID(), err)
		outputs.Append(&notebook.ErrorRecord{EName: "LLMError", EValue: err.Error()})
		return nil
	}

	k.logger.Infof("cell %s: streaming completion from %s", cell.ID(), provider.GetModel())
	k.wg.Add(1)
	go k.collect(cell.ID(), outputs, stream)
	return nil
}

// Wait blocks until every started completion has finished.
func (k *LLMKernel) Wait() {
	k.wg.Wait()
}

func (k *LLMKernel) collect(cellID string, outputs *notebook.Outputs, stream <-chan *llm.StreamChunk) {
	defer k.wg.Done()

	var answer strings.Builder
	for chunk := range stream {
		if chunk.IsError() {
			k.logger.Errorf("cell %s: completion failed: %v", cellID, chunk.Error)
			outputs.Append(&notebook.ErrorRecord{EName: "LLMError", EValue: chunk.Error.Error()})
			return
		}
		if chunk.IsThinking() || chunk.Content == "" {
			continue
		}
		answer.WriteString(chunk.Content)
		if k.onProgress != nil {
			k.onProgress(cellID, answer.Len())
		}
	}

	text := answer.String()
	k.logger.Infof("cell %s: completion finished (%d bytes)", cellID, len(text))
	outputs.Append(&notebook.MimeBundleRecord{
		OutputType: notebook.OutputDisplayData,
		Data: map[string]notebook.Text{
			notebook.MIMEMarkdown: notebook.NewText(text),
			notebook.MIMEPlain:    notebook.NewText(text),
		},
	})
}
