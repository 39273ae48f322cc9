package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Defaults(t *testing.T) {
	b := NewBuilder().WithCounter(RuneCounter{})

	got := b.Build("  print(1)\n")

	assert.True(t, strings.HasPrefix(got, "%%ai\n"))
	assert.Contains(t, got, "Markdown documentation")
	assert.True(t, strings.HasSuffix(got, "print(1)"))
	assert.NotContains(t, got, sourcePlaceholder)
}

func TestBuild_ModelAndTemplate(t *testing.T) {
	b := NewBuilder().WithCounter(RuneCounter{})
	b.Model = "gpt-4o-mini"
	b.Template = "Explain:\n{{source}}\nThanks"

	assert.Equal(t, "%%ai gpt-4o-mini\nExplain:\nx = 1\nThanks", b.Build("x = 1"))
}

func TestBuild_TemplateWithoutPlaceholder(t *testing.T) {
	b := NewBuilder().WithCounter(RuneCounter{})
	b.Template = "Document this."

	assert.Equal(t, "%%ai\nDocument this.\n\nx = 1", b.Build("x = 1"))
}

func TestBuild_Truncates(t *testing.T) {
	b := NewBuilder().WithCounter(RuneCounter{})
	b.MaxTokens = 2
	b.Template = "{{source}}"

	got := b.Build("abcdefghijkl")

	assert.Equal(t, "%%ai\nabcdefgh"+truncationMarker, got)
}

func TestBuild_NoLimit(t *testing.T) {
	b := NewBuilder().WithCounter(RuneCounter{})
	b.MaxTokens = 0
	b.Template = "{{source}}"
	long := strings.Repeat("x", 10000)

	assert.Equal(t, "%%ai\n"+long, b.Build(long))
}

func TestRuneCounter(t *testing.T) {
	text, truncated := RuneCounter{}.Truncate("héllo wörld", 2)
	assert.True(t, truncated)
	assert.Equal(t, "héll", text[:len("héll")])
	assert.Equal(t, 8, len([]rune(text)))

	text, truncated = RuneCounter{}.Truncate("short", 10)
	assert.False(t, truncated)
	assert.Equal(t, "short", text)
}

func TestTrimPartialRune(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii", in: "abc", want: "abc"},
		{name: "complete multibyte", in: "naïve 日本", want: "naïve 日本"},
		{name: "cut after one byte", in: "data 日"[:6], want: "data "},
		{name: "cut after two bytes", in: "data 日"[:7], want: "data "},
		{name: "replacement char kept", in: "x�", want: "x�"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trimPartialRune(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
