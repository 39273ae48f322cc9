package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// An empty configPath uses ~/.docshelper/config.json.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)
	if err := manager.RegisterSection(NewLLMSection()); err != nil {
		return err
	}
	if err := manager.RegisterSection(NewNotesSection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetLLM returns the LLM settings section from global config.
// Returns nil if config is not initialized.
func GetLLM() *LLMSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDLLM)
	if !ok {
		return nil
	}
	llm, _ := section.(*LLMSection)
	return llm
}

// GetNotes returns the note settings section from global config.
// Returns defaults if config is not initialized.
func GetNotes() *NotesSection {
	if !IsInitialized() {
		return NewNotesSection()
	}
	section, ok := Global().GetSection(SectionIDNotes)
	if !ok {
		return NewNotesSection()
	}
	notes, ok := section.(*NotesSection)
	if !ok {
		return NewNotesSection()
	}
	return notes
}
