package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "language tag", input: "```markdown\nHello\n```", want: "Hello"},
		{name: "bare fence", input: "```\n# Doc\n\n- a\n```", want: "# Doc\n\n- a"},
		{name: "surrounding whitespace", input: "\n  ```md\nHi\n```  \n", want: "Hi"},
		{name: "no fence", input: "Hello", want: "Hello"},
		{name: "no fence trimmed", input: "  Hello \n", want: "Hello"},
		{name: "only opening fence", input: "```md\nHello", want: "```md\nHello"},
		{name: "only closing fence", input: "Hello\n```", want: "Hello\n```"},
		{name: "single line", input: "```inline```", want: "inline"},
		{name: "bare backticks", input: "``````", want: ""},
		{name: "too short", input: "````", want: "````"},
		{name: "nested wrappers", input: "```\n```md\nX\n```\n```", want: "X"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripFences(got), "stripping twice equals stripping once")
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "atx heading", input: "### Summary\n- does X", want: "Summary"},
		{name: "heading with emphasis", input: "intro\n\n## The *load* step", want: "The load step"},
		{name: "setext heading", input: "Overview\n========\n\ntext", want: "Overview"},
		{name: "no heading", input: "\n\n  first line\nsecond", want: "first line"},
		{name: "code span", input: "# Uses `pandas`", want: "Uses pandas"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.input))
		})
	}
}
