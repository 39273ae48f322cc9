// Package parser separates reasoning spans from answer text in streamed
// completions.
package parser

import (
	"strings"

	"github.com/entrhq/docshelper/pkg/llm"
)

const (
	openTag  = "<thinking>"
	closeTag = "</thinking>"
)

// ThinkingParser splits streamed content into <thinking> spans and answer
// text. Tags may be split across chunks; a trailing fragment that could
// still become a tag is held back until the next chunk or Flush.
type ThinkingParser struct {
	pending    string
	inThinking bool
}

// NewThinkingParser creates a new thinking parser.
func NewThinkingParser() *ThinkingParser {
	return &ThinkingParser{}
}

// Parse consumes a chunk and returns the thinking and message content it
// completes. Either result may be nil.
func (p *ThinkingParser) Parse(content string) (thinkingChunk, messageChunk *llm.StreamChunk) {
	var thinking, message strings.Builder
	data := p.pending + content
	p.pending = ""

	for data != "" {
		tag := openTag
		if p.inThinking {
			tag = closeTag
		}

		if idx := strings.Index(data, tag); idx >= 0 {
			p.emit(&thinking, &message, data[:idx])
			data = data[idx+len(tag):]
			p.inThinking = !p.inThinking
			continue
		}

		keep := partialSuffix(data, tag)
		p.emit(&thinking, &message, data[:len(data)-keep])
		p.pending = data[len(data)-keep:]
		break
	}

	return chunkOf(thinking.String(), llm.ContentTypeThinking), chunkOf(message.String(), llm.ContentTypeMessage)
}

// Flush returns content held back waiting for a possible tag.
func (p *ThinkingParser) Flush() (thinkingChunk, messageChunk *llm.StreamChunk) {
	rest := p.pending
	p.pending = ""
	if p.inThinking {
		return chunkOf(rest, llm.ContentTypeThinking), nil
	}
	return nil, chunkOf(rest, llm.ContentTypeMessage)
}

// IsInThinking reports whether the parser is inside a thinking span.
func (p *ThinkingParser) IsInThinking() bool {
	return p.inThinking
}

// Reset clears state for a new stream.
func (p *ThinkingParser) Reset() {
	p.pending = ""
	p.inThinking = false
}

func (p *ThinkingParser) emit(thinking, message *strings.Builder, s string) {
	if p.inThinking {
		thinking.WriteString(s)
	} else {
		message.WriteString(s)
	}
}

// partialSuffix returns the length of the longest suffix of s that is a
// proper prefix of tag.
func partialSuffix(s, tag string) int {
	max := len(tag) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}

func chunkOf(content string, kind llm.ContentType) *llm.StreamChunk {
	if content == "" {
		return nil
	}
	return &llm.StreamChunk{Content: content, Type: kind}
}
