package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobalManager clears the global manager for the duration of a test.
func resetGlobalManager(t *testing.T) {
	t.Helper()
	reset := func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	}
	reset()
	t.Cleanup(reset)
}

func TestInitialize(t *testing.T) {
	resetGlobalManager(t)
	configPath := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, Initialize(configPath))
	assert.True(t, IsInitialized())

	ids := []string{}
	for _, s := range Global().GetSections() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{SectionIDLLM, SectionIDNotes}, ids)
	assert.NotNil(t, GetLLM())
	assert.Equal(t, 30*time.Second, GetNotes().GetTimeout())
}

func TestInitialize_Persistence(t *testing.T) {
	resetGlobalManager(t)
	configPath := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, Initialize(configPath))
	GetLLM().SetModel("gpt-4o-mini")
	GetNotes().SetTimeout(5 * time.Second)
	require.NoError(t, Global().SaveAll())

	resetGlobalManager(t)
	require.NoError(t, Initialize(configPath))

	assert.Equal(t, "gpt-4o-mini", GetLLM().GetModel())
	assert.Equal(t, 5*time.Second, GetNotes().GetTimeout())
}

func TestInitialize_InvalidFile(t *testing.T) {
	resetGlobalManager(t)
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"sections":{"notes":{"timeout_ms":"soon"}}}`), 0600))

	assert.Error(t, Initialize(configPath))
	assert.False(t, IsInitialized())
}

func TestGlobal_PanicsWhenUninitialized(t *testing.T) {
	resetGlobalManager(t)
	assert.Panics(t, func() { Global() })
	assert.Nil(t, GetLLM())
	assert.NotNil(t, GetNotes(), "notes fall back to defaults")
}

func TestGlobalConfig_ThreadSafety(t *testing.T) {
	resetGlobalManager(t)
	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "config.json")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = GetLLM().GetModel()
		}()
		go func() {
			defer wg.Done()
			GetNotes().SetTimeout(time.Second)
		}()
	}
	wg.Wait()
}
