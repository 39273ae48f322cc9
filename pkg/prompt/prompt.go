// Package prompt builds the source text of the worker cell that asks the AI
// kernel to document another cell.
package prompt

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Defaults used when no configuration overrides them.
const (
	DefaultMagic    = "%%ai"
	DefaultTemplate = "Write concise Markdown documentation for the following notebook code cell. " +
		"Start with a short heading, then explain what the code does as a bullet list. " +
		"Reply with Markdown only.\n\n{{source}}"
	DefaultMaxSourceTokens = 2000

	sourcePlaceholder = "{{source}}"
	truncationMarker  = "\n# ... (truncated)"
	encodingName      = "cl100k_base"
)

// Builder renders worker-cell prompts.
type Builder struct {
	Magic     string
	Model     string
	Template  string
	MaxTokens int

	counter TokenCounter
}

// TokenCounter truncates text to a token budget.
type TokenCounter interface {
	Truncate(text string, maxTokens int) (string, bool)
}

// NewBuilder creates a builder with defaults. The tiktoken encoding is
// loaded on first use unless WithCounter replaces it.
func NewBuilder() *Builder {
	return &Builder{
		Magic:     DefaultMagic,
		Template:  DefaultTemplate,
		MaxTokens: DefaultMaxSourceTokens,
	}
}

// WithCounter replaces the token counter.
func (b *Builder) WithCounter(counter TokenCounter) *Builder {
	b.counter = counter
	return b
}

// Build returns the worker cell source for documenting source: a magic
// header line (with the model when set) followed by the filled template.
func (b *Builder) Build(source string) string {
	source = strings.TrimSpace(source)
	if b.MaxTokens > 0 {
		counter := b.counter
		if counter == nil {
			counter = defaultCounter()
		}
		if cut, truncated := counter.Truncate(source, b.MaxTokens); truncated {
			source = cut + truncationMarker
		}
	}

	template := b.Template
	if template == "" {
		template = DefaultTemplate
	}
	body := strings.ReplaceAll(template, sourcePlaceholder, source)
	if !strings.Contains(template, sourcePlaceholder) {
		body = template + "\n\n" + source
	}

	magic := b.Magic
	if magic == "" {
		magic = DefaultMagic
	}
	header := magic
	if b.Model != "" {
		header += " " + b.Model
	}
	return header + "\n" + body
}

// tiktokenCounter truncates on cl100k_base token boundaries.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Truncate(text string, maxTokens int) (string, bool) {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false
	}
	return trimPartialRune(c.enc.Decode(tokens[:maxTokens])), true
}

// trimPartialRune drops an incomplete UTF-8 sequence left at the end of s
// when a token boundary falls inside a multi-byte character.
func trimPartialRune(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// RuneCounter approximates four runes per token. It is the fallback when
// the tiktoken encoding cannot be loaded.
type RuneCounter struct{}

func (RuneCounter) Truncate(text string, maxTokens int) (string, bool) {
	limit := maxTokens * 4
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]), true
}

var (
	counterOnce   sync.Once
	sharedCounter TokenCounter
)

// defaultCounter loads the tiktoken encoding once per process.
func defaultCounter() TokenCounter {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			sharedCounter = RuneCounter{}
			return
		}
		sharedCounter = &tiktokenCounter{enc: enc}
	})
	return sharedCounter
}
