package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/docshelper/pkg/harvest"
	"github.com/entrhq/docshelper/pkg/notes"
	"github.com/entrhq/docshelper/pkg/prompt"
)

const (
	// SectionIDNotes is the identifier for the note settings section
	SectionIDNotes = "notes"

	minHarvestTimeout = 100 * time.Millisecond
	maxHarvestTimeout = 10 * time.Minute
)

// NotesSection configures note insertion.
type NotesSection struct {
	Timeout         time.Duration
	Placeholder     string
	StubTemplate    string
	PromptTemplate  string
	Magic           string
	MaxSourceTokens int
	mu              sync.RWMutex
}

// NewNotesSection creates a notes section with default settings.
func NewNotesSection() *NotesSection {
	s := &NotesSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *NotesSection) ID() string {
	return SectionIDNotes
}

// Title returns the section title.
func (s *NotesSection) Title() string {
	return "Note Settings"
}

// Description returns the section description.
func (s *NotesSection) Description() string {
	return "Configure Markdown notes: the harvest timeout, placeholder and stub text, and the prompt sent to the %%ai kernel."
}

// Data returns the current configuration data.
func (s *NotesSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"timeout_ms":        s.Timeout.Milliseconds(),
		"placeholder":       s.Placeholder,
		"stub_template":     s.StubTemplate,
		"prompt_template":   s.PromptTemplate,
		"magic":             s.Magic,
		"max_source_tokens": s.MaxSourceTokens,
	}
}

// SetData updates the configuration from the provided data.
func (s *NotesSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "timeout_ms":
			ms, ok := toInt(value)
			if !ok {
				return fmt.Errorf("invalid value type for timeout_ms: expected number, got %T", value)
			}
			s.Timeout = time.Duration(ms) * time.Millisecond

		case "max_source_tokens":
			n, ok := toInt(value)
			if !ok {
				return fmt.Errorf("invalid value type for max_source_tokens: expected number, got %T", value)
			}
			s.MaxSourceTokens = n

		case "placeholder", "stub_template", "prompt_template", "magic":
			text, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
			}
			switch key {
			case "placeholder":
				s.Placeholder = text
			case "stub_template":
				s.StubTemplate = text
			case "prompt_template":
				s.PromptTemplate = text
			case "magic":
				s.Magic = text
			}

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *NotesSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Timeout < minHarvestTimeout || s.Timeout > maxHarvestTimeout {
		return fmt.Errorf("timeout_ms must be between %d and %d, got %d",
			minHarvestTimeout.Milliseconds(), maxHarvestTimeout.Milliseconds(), s.Timeout.Milliseconds())
	}
	if strings.TrimSpace(s.Placeholder) == "" {
		return fmt.Errorf("placeholder must not be blank")
	}
	if !strings.HasPrefix(s.Magic, "%%") || strings.ContainsAny(s.Magic, " \t\n") {
		return fmt.Errorf("magic must be a single %%%%name token, got %q", s.Magic)
	}
	if s.MaxSourceTokens < 0 {
		return fmt.Errorf("max_source_tokens must not be negative")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *NotesSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Timeout = harvest.DefaultTimeout
	s.Placeholder = notes.DefaultPlaceholder
	s.StubTemplate = notes.DefaultStubTemplate
	s.PromptTemplate = prompt.DefaultTemplate
	s.Magic = prompt.DefaultMagic
	s.MaxSourceTokens = prompt.DefaultMaxSourceTokens
}

// GetTimeout returns the harvest timeout.
func (s *NotesSection) GetTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Timeout
}

// SetTimeout sets the harvest timeout.
func (s *NotesSection) SetTimeout(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Timeout = timeout
}

// PromptBuilder returns a prompt builder using the configured template,
// magic and token budget. model is written after the magic when non-empty.
func (s *NotesSection) PromptBuilder(model string) *prompt.Builder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := prompt.NewBuilder()
	b.Magic = s.Magic
	b.Model = model
	b.Template = s.PromptTemplate
	b.MaxTokens = s.MaxSourceTokens
	return b
}

// OrchestratorOptions returns the note orchestrator options for this section.
func (s *NotesSection) OrchestratorOptions() []notes.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []notes.Option{
		notes.WithPlaceholder(s.Placeholder),
		notes.WithStubTemplate(s.StubTemplate),
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}
