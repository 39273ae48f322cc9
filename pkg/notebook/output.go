package notebook

import (
	"fmt"
	"strings"
)

// MIME keys recognized when harvesting text from a mime bundle, in priority order.
const (
	MIMEMarkdown = "text/markdown"
	MIMEPlain    = "text/plain"
)

// OutputType mirrors the nbformat output_type field.
type OutputType string

const (
	OutputStream        OutputType = "stream"
	OutputDisplayData   OutputType = "display_data"
	OutputExecuteResult OutputType = "execute_result"
	OutputError         OutputType = "error"
)

// Text is an output payload. Jupyter stores multi-line payloads either as a
// single string or as a list of fragments that must be concatenated.
type Text struct {
	Fragments []string
}

// NewText builds a single-string payload.
func NewText(s string) Text {
	return Text{Fragments: []string{s}}
}

// NewFragments builds a payload from ordered fragments.
func NewFragments(fragments ...string) Text {
	return Text{Fragments: fragments}
}

// Join concatenates all fragments.
func (t Text) Join() string {
	if len(t.Fragments) == 1 {
		return t.Fragments[0]
	}
	return strings.Join(t.Fragments, "")
}

// Record is a single output produced by executing a code cell.
// It is one of *StreamRecord, *MimeBundleRecord or *ErrorRecord.
type Record interface {
	Type() OutputType
	isRecord()
}

// StreamRecord is a chunk of stdout/stderr text.
type StreamRecord struct {
	Name string // "stdout" or "stderr"
	Text Text
}

// MimeBundleRecord is a rich display result keyed by MIME type.
type MimeBundleRecord struct {
	OutputType     OutputType // display_data or execute_result
	Data           map[string]Text
	ExecutionCount *int
}

// ErrorRecord reports a failed execution. It never carries harvestable text.
type ErrorRecord struct {
	EName     string
	EValue    string
	Traceback []string
}

func (*ErrorRecord) Type() OutputType { return OutputError }
func (*ErrorRecord) isRecord()        {}

// Error formats the record like a Python exception line.
func (r *ErrorRecord) Error() string {
	return fmt.Sprintf("%s: %s", r.EName, r.EValue)
}

func (*StreamRecord) Type() OutputType { return OutputStream }
func (*StreamRecord) isRecord()        {}

func (r *MimeBundleRecord) Type() OutputType {
	if r.OutputType == "" {
		return OutputDisplayData
	}
	return r.OutputType
}
func (*MimeBundleRecord) isRecord() {}

// Entry returns the payload stored under a MIME key.
func (r *MimeBundleRecord) Entry(mime string) (Text, bool) {
	if r.Data == nil {
		return Text{}, false
	}
	t, ok := r.Data[mime]
	return t, ok
}

// NewStdout creates a stdout stream record.
func NewStdout(fragments ...string) *StreamRecord {
	return &StreamRecord{Name: "stdout", Text: NewFragments(fragments...)}
}

// NewMarkdownResult creates a display_data record with a text/markdown entry.
func NewMarkdownResult(markdown string) *MimeBundleRecord {
	return &MimeBundleRecord{
		OutputType: OutputDisplayData,
		Data:       map[string]Text{MIMEMarkdown: NewText(markdown)},
	}
}

// DecodeRecord parses a loosely-typed nbformat output into a Record.
// Unrecognized shapes return ok=false; it never panics.
func DecodeRecord(raw map[string]any) (Record, bool) {
	if raw == nil {
		return nil, false
	}
	kind, _ := raw["output_type"].(string)
	if kind == "" {
		kind = string(inferType(raw))
	}

	switch OutputType(kind) {
	case OutputStream:
		text, ok := decodeText(raw["text"])
		if !ok {
			return nil, false
		}
		name, _ := raw["name"].(string)
		if name == "" {
			name = "stdout"
		}
		return &StreamRecord{Name: name, Text: text}, true

	case OutputDisplayData, OutputExecuteResult:
		data, ok := raw["data"].(map[string]any)
		if !ok {
			return nil, false
		}
		rec := &MimeBundleRecord{
			OutputType: OutputType(kind),
			Data:       make(map[string]Text, len(data)),
		}
		for mime, payload := range data {
			if text, ok := decodeText(payload); ok {
				rec.Data[mime] = text
			}
		}
		if n, ok := raw["execution_count"].(float64); ok {
			count := int(n)
			rec.ExecutionCount = &count
		}
		return rec, true

	case OutputError:
		ename, _ := raw["ename"].(string)
		evalue, _ := raw["evalue"].(string)
		if ename == "" && evalue == "" {
			return nil, false
		}
		rec := &ErrorRecord{EName: ename, EValue: evalue}
		if tb, ok := decodeText(raw["traceback"]); ok {
			rec.Traceback = tb.Fragments
		}
		return rec, true
	}

	return nil, false
}

// EncodeRecord converts a Record back into its nbformat representation.
func EncodeRecord(rec Record) map[string]any {
	switch r := rec.(type) {
	case *StreamRecord:
		return map[string]any{
			"output_type": string(OutputStream),
			"name":        r.Name,
			"text":        r.Text.Fragments,
		}
	case *MimeBundleRecord:
		data := make(map[string]any, len(r.Data))
		for mime, text := range r.Data {
			data[mime] = text.Fragments
		}
		out := map[string]any{
			"output_type": string(r.Type()),
			"data":        data,
			"metadata":    map[string]any{},
		}
		if r.Type() == OutputExecuteResult {
			if r.ExecutionCount != nil {
				out["execution_count"] = *r.ExecutionCount
			} else {
				out["execution_count"] = nil
			}
		}
		return out
	case *ErrorRecord:
		traceback := r.Traceback
		if traceback == nil {
			traceback = []string{}
		}
		return map[string]any{
			"output_type": string(OutputError),
			"ename":       r.EName,
			"evalue":      r.EValue,
			"traceback":   traceback,
		}
	}
	return nil
}

// inferType guesses the variant of an untagged output. A usable stream
// payload takes precedence over a mime bundle in the same object.
func inferType(raw map[string]any) OutputType {
	if text, ok := decodeText(raw["text"]); ok && strings.TrimSpace(text.Join()) != "" {
		return OutputStream
	}
	if _, ok := raw["data"].(map[string]any); ok {
		return OutputDisplayData
	}
	if _, ok := decodeText(raw["text"]); ok {
		return OutputStream
	}
	return ""
}

// decodeText accepts either a string or a list of strings.
func decodeText(v any) (Text, bool) {
	switch payload := v.(type) {
	case string:
		return NewText(payload), true
	case []string:
		return NewFragments(payload...), true
	case []any:
		fragments := make([]string, 0, len(payload))
		for _, item := range payload {
			s, ok := item.(string)
			if !ok {
				return Text{}, false
			}
			fragments = append(fragments, s)
		}
		return NewFragments(fragments...), true
	}
	return Text{}, false
}
