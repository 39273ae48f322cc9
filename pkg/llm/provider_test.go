package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockProvider struct {
	model string
}

func (m *mockProvider) StreamCompletion(context.Context, []*Message) (<-chan *StreamChunk, error) {
	return nil, nil
}

func (m *mockProvider) Complete(context.Context, []*Message) (*Message, error) {
	return nil, nil
}

func (m *mockProvider) GetModel() string { return m.model }

type cloningProvider struct{ mockProvider }

func (c *cloningProvider) CloneWithModel(model string) Provider {
	return &cloningProvider{mockProvider{model: model}}
}

func TestWithModel(t *testing.T) {
	plain := &mockProvider{model: "a"}
	assert.Same(t, plain, WithModel(plain, "b"), "providers without cloning are returned as-is")

	cloning := &cloningProvider{mockProvider{model: "a"}}
	assert.Same(t, cloning, WithModel(cloning, ""))
	assert.Same(t, cloning, WithModel(cloning, "a"))
	assert.Equal(t, "b", WithModel(cloning, "b").GetModel())
}

func TestCollect(t *testing.T) {
	stream := make(chan *StreamChunk, 4)
	stream <- &StreamChunk{Content: "plan", Type: ContentTypeThinking}
	stream <- &StreamChunk{Content: "Hel", Type: ContentTypeMessage}
	stream <- &StreamChunk{Content: "lo"}
	stream <- &StreamChunk{Finished: true}
	close(stream)

	content, err := Collect(stream)
	assert.NoError(t, err)
	assert.Equal(t, "Hello", content)
}

func TestCollect_Error(t *testing.T) {
	boom := errors.New("boom")
	stream := make(chan *StreamChunk, 2)
	stream <- &StreamChunk{Content: "partial"}
	stream <- &StreamChunk{Error: boom}
	close(stream)

	content, err := Collect(stream)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", content)
}
