package notebook

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ipynbDocument is the nbformat 4 top-level document.
type ipynbDocument struct {
	Cells         []ipynbCell    `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

type ipynbCell struct {
	ID             string            `json:"id,omitempty"`
	CellType       string            `json:"cell_type"`
	Metadata       map[string]any    `json:"metadata"`
	Source         json.RawMessage   `json:"source"`
	Outputs        *[]map[string]any `json:"outputs,omitempty"`
	ExecutionCount json.RawMessage   `json:"execution_count,omitempty"`
}

// nullCount keeps execution_count present on code cells that never ran.
var nullCount = json.RawMessage("null")

// Load reads an nbformat 4 notebook. Cells without an id get a fresh one and
// outputs with unrecognized shapes are dropped.
func Load(r io.Reader) (*Notebook, error) {
	var doc ipynbDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode notebook: %w", err)
	}
	if doc.NBFormat != 0 && doc.NBFormat < 4 {
		return nil, fmt.Errorf("unsupported nbformat %d", doc.NBFormat)
	}

	cells := make([]*Cell, 0, len(doc.Cells))
	for i, raw := range doc.Cells {
		source, err := decodeSource(raw.Source)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		id := raw.ID
		if id == "" {
			id = uuid.New().String()
		}
		cell := newCellWithID(id, CellKind(raw.CellType), source)
		if raw.Metadata != nil {
			cell.Metadata = raw.Metadata
		}
		if count, ok := decodeExecutionCount(raw.ExecutionCount); ok {
			cell.SetExecutionCount(count)
		}
		if out := cell.Outputs(); out != nil {
			for _, o := range derefOutputs(raw.Outputs) {
				if rec, ok := DecodeRecord(o); ok {
					out.records = append(out.records, rec)
				}
			}
		}
		cells = append(cells, cell)
	}

	nb := New(cells...)
	if doc.Metadata != nil {
		nb.Metadata = doc.Metadata
	}
	return nb, nil
}

// Save writes the notebook as nbformat 4.5 JSON.
func Save(w io.Writer, nb *Notebook) error {
	doc := ipynbDocument{
		Metadata:      nb.Metadata,
		NBFormat:      4,
		NBFormatMinor: 5,
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}

	for _, cell := range nb.Cells() {
		source, err := json.Marshal(splitLines(cell.Source()))
		if err != nil {
			return fmt.Errorf("failed to encode cell %s: %w", cell.ID(), err)
		}
		raw := ipynbCell{
			ID:       cell.ID(),
			CellType: string(cell.Kind()),
			Metadata: cell.Metadata,
			Source:   source,
		}
		if raw.Metadata == nil {
			raw.Metadata = map[string]any{}
		}
		if out := cell.Outputs(); out != nil {
			outputs := make([]map[string]any, 0, out.Len())
			for _, rec := range out.Snapshot() {
				if encoded := EncodeRecord(rec); encoded != nil {
					outputs = append(outputs, encoded)
				}
			}
			raw.Outputs = &outputs
		}
		if cell.Kind() == KindCode {
			raw.ExecutionCount = nullCount
			if count, ok := cell.ExecutionCount(); ok {
				raw.ExecutionCount = json.RawMessage(strconv.Itoa(count))
			}
		}
		doc.Cells = append(doc.Cells, raw)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode notebook: %w", err)
	}
	return nil
}

// LoadFile reads a notebook from disk.
func LoadFile(path string) (*Notebook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open notebook: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// SaveFile writes a notebook to disk atomically.
func SaveFile(path string, nb *Notebook) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create notebook directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp notebook file: %w", err)
	}

	if err := Save(file, nb); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// decodeExecutionCount accepts an integer; null or anything else means unset.
func decodeExecutionCount(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var count *int
	if err := json.Unmarshal(raw, &count); err != nil || count == nil {
		return 0, false
	}
	return *count, true
}

func derefOutputs(outputs *[]map[string]any) []map[string]any {
	if outputs == nil {
		return nil
	}
	return *outputs
}

func decodeSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("source must be a string or list of strings: %w", err)
	}
	return strings.Join(lines, ""), nil
}

// splitLines splits s the way nbformat stores multi-line text: every
// element but the last keeps its trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
