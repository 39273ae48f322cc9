package kernel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/docshelper/pkg/llm"
	"github.com/entrhq/docshelper/pkg/notebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	model    string
	chunks   []*llm.StreamChunk
	startErr error

	mu       sync.Mutex
	requests [][]*llm.Message
	models   []string
}

func (m *mockProvider) StreamCompletion(_ context.Context, messages []*llm.Message) (<-chan *llm.StreamChunk, error) {
	m.mu.Lock()
	m.requests = append(m.requests, messages)
	m.models = append(m.models, m.model)
	m.mu.Unlock()

	if m.startErr != nil {
		return nil, m.startErr
	}
	ch := make(chan *llm.StreamChunk, len(m.chunks))
	for _, c := range m.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (m *mockProvider) Complete(ctx context.Context, messages []*llm.Message) (*llm.Message, error) {
	stream, err := m.StreamCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}
	content, err := llm.Collect(stream)
	return &llm.Message{Role: llm.RoleAssistant, Content: content}, err
}

func (m *mockProvider) GetModel() string { return m.model }

func (m *mockProvider) CloneWithModel(model string) llm.Provider {
	return &mockProvider{model: model, chunks: m.chunks, startErr: m.startErr}
}

func TestParseMagic(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Magic
		ok     bool
	}{
		{name: "bare", source: "%%ai\nexplain", want: Magic{Name: "%%ai", Body: "explain"}, ok: true},
		{name: "with model", source: "\n%%ai gpt-4o\n  explain\n", want: Magic{Name: "%%ai", Model: "gpt-4o", Body: "explain"}, ok: true},
		{name: "header only", source: "%%ai", want: Magic{Name: "%%ai"}, ok: true},
		{name: "python", source: "print(1)", ok: false},
		{name: "other magic", source: "%%bash\nls", ok: false},
		{name: "prefix collision", source: "%%aix\nhi", ok: false},
		{name: "empty", source: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMagic(tt.source, DefaultMagic)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func waitForLen(t *testing.T, outputs *notebook.Outputs, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return outputs.Len() >= n }, time.Second, 5*time.Millisecond)
}

func TestLLMKernel_DisplaysMarkdown(t *testing.T) {
	provider := &mockProvider{model: "base", chunks: []*llm.StreamChunk{
		{Content: "reasoning", Type: llm.ContentTypeThinking},
		{Content: "### Summary\n", Type: llm.ContentTypeMessage},
		{Content: "- does X", Type: llm.ContentTypeMessage},
		{Finished: true},
	}}

	var progress []int
	var mu sync.Mutex
	k := NewLLMKernel(provider, WithProgress(func(_ string, n int) {
		mu.Lock()
		progress = append(progress, n)
		mu.Unlock()
	}))

	cell := notebook.NewCell(notebook.KindCode, "%%ai\ndocument print(1)")
	cell.Outputs().Append(notebook.NewStdout("stale"))

	require.NoError(t, k.Execute(context.Background(), cell))
	k.Wait()

	outputs := cell.Outputs()
	require.Equal(t, 1, outputs.Len(), "previous outputs are cleared")
	bundle, ok := outputs.At(0).(*notebook.MimeBundleRecord)
	require.True(t, ok)
	md, ok := bundle.Entry(notebook.MIMEMarkdown)
	require.True(t, ok)
	assert.Equal(t, "### Summary\n- does X", md.Join())

	require.Len(t, provider.requests, 1)
	assert.Equal(t, llm.RoleSystem, provider.requests[0][0].Role)
	assert.Equal(t, "document print(1)", provider.requests[0][1].Content)

	mu.Lock()
	assert.Equal(t, []int{12, 20}, progress)
	mu.Unlock()
}

func TestLLMKernel_ModelOverride(t *testing.T) {
	provider := &mockProvider{model: "base", chunks: []*llm.StreamChunk{{Content: "ok"}}}
	k := NewLLMKernel(provider)

	cell := notebook.NewCell(notebook.KindCode, "%%ai other-model\nhi")
	require.NoError(t, k.Execute(context.Background(), cell))
	k.Wait()

	assert.Empty(t, provider.requests, "the override is served by a clone")
	waitForLen(t, cell.Outputs(), 1)
}

func TestLLMKernel_NonMagicCell(t *testing.T) {
	k := NewLLMKernel(&mockProvider{})
	cell := notebook.NewCell(notebook.KindCode, "print(1)")

	require.NoError(t, k.Execute(context.Background(), cell))

	stream, ok := cell.Outputs().At(0).(*notebook.StreamRecord)
	require.True(t, ok)
	assert.Equal(t, "stderr", stream.Name)
	assert.Contains(t, stream.Text.Join(), "%%ai")
}

func TestLLMKernel_EmptyPrompt(t *testing.T) {
	k := NewLLMKernel(&mockProvider{})
	cell := notebook.NewCell(notebook.KindCode, "%%ai\n   ")

	require.NoError(t, k.Execute(context.Background(), cell))

	_, ok := cell.Outputs().At(0).(*notebook.ErrorRecord)
	assert.True(t, ok)
}

func TestLLMKernel_StartError(t *testing.T) {
	k := NewLLMKernel(&mockProvider{startErr: errors.New("connection refused")})
	cell := notebook.NewCell(notebook.KindCode, "%%ai\nhi")

	require.NoError(t, k.Execute(context.Background(), cell))

	rec, ok := cell.Outputs().At(0).(*notebook.ErrorRecord)
	require.True(t, ok)
	assert.Equal(t, "LLMError", rec.EName)
	assert.Contains(t, rec.EValue, "connection refused")
}

func TestLLMKernel_StreamError(t *testing.T) {
	k := NewLLMKernel(&mockProvider{chunks: []*llm.StreamChunk{
		{Content: "partial"},
		{Error: errors.New("reset by peer")},
	}})
	cell := notebook.NewCell(notebook.KindCode, "%%ai\nhi")

	require.NoError(t, k.Execute(context.Background(), cell))
	k.Wait()

	require.Equal(t, 1, cell.Outputs().Len())
	_, ok := cell.Outputs().At(0).(*notebook.ErrorRecord)
	assert.True(t, ok)
}

func TestLLMKernel_MarkdownCell(t *testing.T) {
	k := NewLLMKernel(&mockProvider{})
	err := k.Execute(context.Background(), notebook.NewCell(notebook.KindMarkdown, "%%ai\nhi"))
	assert.Error(t, err)
}

func TestScriptedKernel(t *testing.T) {
	k := NewScriptedKernel(
		Step{Record: notebook.NewStdout("now")},
		Step{Delay: 10 * time.Millisecond, Record: notebook.NewStdout("later")},
	)
	cell := notebook.NewCell(notebook.KindCode, "x")

	require.NoError(t, k.Execute(context.Background(), cell))
	assert.Equal(t, 1, cell.Outputs().Len())

	k.Wait()
	assert.Equal(t, 2, cell.Outputs().Len())
	assert.Equal(t, []string{cell.ID()}, k.Executed())
}
