// Package harvest pulls usable text out of a code cell's output collection,
// waiting for a bounded time when the output is still being produced.
package harvest

import (
	"strings"

	"github.com/entrhq/docshelper/pkg/notebook"
)

// mimePriority lists the mime-bundle entries consulted after stream text.
var mimePriority = []string{notebook.MIMEMarkdown, notebook.MIMEPlain}

// ExtractText returns the first non-blank text found in records, scanning
// from newest to oldest. Within one record stream text wins over
// text/markdown, which wins over text/plain. Blank payloads count as absent.
func ExtractText(records []notebook.Record) string {
	for i := len(records) - 1; i >= 0; i-- {
		if text := textOf(records[i]); text != "" {
			return text
		}
	}
	return ""
}

// ExtractFrom runs ExtractText on the current contents of outputs.
func ExtractFrom(outputs *notebook.Outputs) string {
	if outputs == nil {
		return ""
	}
	return ExtractText(outputs.Snapshot())
}

func textOf(rec notebook.Record) string {
	switch r := rec.(type) {
	case *notebook.StreamRecord:
		return trimmed(r.Text)
	case *notebook.MimeBundleRecord:
		for _, mime := range mimePriority {
			if t, ok := r.Entry(mime); ok {
				if text := trimmed(t); text != "" {
					return text
				}
			}
		}
	}
	return ""
}

func trimmed(t notebook.Text) string {
	return strings.TrimSpace(t.Join())
}
