package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feed(p *ThinkingParser, chunks ...string) (thinking, message string) {
	for _, c := range chunks {
		th, msg := p.Parse(c)
		if th != nil {
			thinking += th.Content
		}
		if msg != nil {
			message += msg.Content
		}
	}
	th, msg := p.Flush()
	if th != nil {
		thinking += th.Content
	}
	if msg != nil {
		message += msg.Content
	}
	return thinking, message
}

func TestThinkingParser(t *testing.T) {
	tests := []struct {
		name         string
		chunks       []string
		wantThinking string
		wantMessage  string
	}{
		{
			name:        "plain content",
			chunks:      []string{"### Summary\n", "- does X"},
			wantMessage: "### Summary\n- does X",
		},
		{
			name:         "thinking then answer",
			chunks:       []string{"<thinking>plan</thinking>## Doc"},
			wantThinking: "plan",
			wantMessage:  "## Doc",
		},
		{
			name:         "tags split across chunks",
			chunks:       []string{"<thin", "king>a < b", " and c > d</thi", "nking>", "answer"},
			wantThinking: "a < b and c > d",
			wantMessage:  "answer",
		},
		{
			name:        "comparison operators in answer",
			chunks:      []string{"if x<3 ", "and y>2 <"},
			wantMessage: "if x<3 and y>2 <",
		},
		{
			name:        "html-ish tag is kept",
			chunks:      []string{"<b>bold</b>"},
			wantMessage: "<b>bold</b>",
		},
		{
			name:         "unterminated thinking",
			chunks:       []string{"<thinking>never closed"},
			wantThinking: "never closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thinking, message := feed(NewThinkingParser(), tt.chunks...)
			assert.Equal(t, tt.wantThinking, thinking)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestThinkingParser_Reset(t *testing.T) {
	p := NewThinkingParser()
	p.Parse("<thinking>open")
	assert.True(t, p.IsInThinking())

	p.Reset()
	assert.False(t, p.IsInThinking())

	_, message := feed(p, "fresh")
	assert.Equal(t, "fresh", message)
}
