package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/entrhq/docshelper/pkg/notebook"
)

const defaultLanguage = "python"

// highlighter renders code cell sources with terminal colors.
type highlighter struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

func newHighlighter(language string) *highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	return &highlighter{
		lexer:     chroma.Coalesce(lexer),
		formatter: formatter,
		style:     styles.Get("monokai"),
	}
}

// Highlight returns source with ANSI colors, or source unchanged when
// tokenizing fails.
func (h *highlighter) Highlight(source string) string {
	iterator, err := h.lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(b.String(), "\n")
}

// notebookLanguage reads the kernel language from notebook metadata.
func notebookLanguage(nb *notebook.Notebook) string {
	if info, ok := nb.Metadata["language_info"].(map[string]any); ok {
		if name, ok := info["name"].(string); ok && name != "" {
			return name
		}
	}
	if spec, ok := nb.Metadata["kernelspec"].(map[string]any); ok {
		if lang, ok := spec["language"].(string); ok && lang != "" {
			return lang
		}
	}
	return defaultLanguage
}
