// Package markdown normalizes generated Markdown before it lands in a cell.
package markdown

import (
	"strings"
)

const fence = "```"

// StripFences removes code fences wrapping the whole of s. The opening
// fence may carry a language tag ("```markdown"). Input that is not fenced
// on both ends is returned trimmed. Nested wrappers are peeled until none
// remains, so StripFences(StripFences(s)) == StripFences(s).
func StripFences(s string) string {
	current := strings.TrimSpace(s)
	for {
		next := stripOnce(current)
		if next == current {
			return next
		}
		current = next
	}
}

func stripOnce(trimmed string) string {
	if len(trimmed) < 2*len(fence) ||
		!strings.HasPrefix(trimmed, fence) ||
		!strings.HasSuffix(trimmed, fence) {
		return trimmed
	}

	inner := strings.TrimSuffix(trimmed, fence)

	// Drop the opening fence line including any language tag.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		inner = inner[nl+1:]
	} else {
		inner = strings.TrimPrefix(inner, fence)
	}

	return strings.TrimSpace(inner)
}
