package headless

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/docshelper/pkg/notebook"
)

// Target is a code cell picked for documentation, identified by id and by
// its index at selection time.
type Target struct {
	CellID string
	Index  int
}

// CellSelector matches code cells against source globs and explicit indices.
type CellSelector struct {
	include []glob.Glob
	skip    []glob.Glob
	indices map[int]bool
}

// NewCellSelector compiles the selection patterns.
func NewCellSelector(cfg SelectionConfig) (*CellSelector, error) {
	include, err := compileAll(cfg.Cells)
	if err != nil {
		return nil, fmt.Errorf("invalid cell pattern: %w", err)
	}
	skip, err := compileAll(cfg.Skip)
	if err != nil {
		return nil, fmt.Errorf("invalid skip pattern: %w", err)
	}

	indices := make(map[int]bool, len(cfg.Indices))
	for _, i := range cfg.Indices {
		indices[i] = true
	}

	return &CellSelector{include: include, skip: skip, indices: indices}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("'%s': %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// Matches reports whether the cell at index i is selected.
func (s *CellSelector) Matches(i int, cell *notebook.Cell) bool {
	source, ok := selectable(cell)
	if !ok || s.skipped(source) {
		return false
	}

	if len(s.include) == 0 && len(s.indices) == 0 {
		return true
	}
	if s.indices[i] {
		return true
	}
	for _, g := range s.include {
		if g.Match(source) {
			return true
		}
	}
	return false
}

// selectable returns the trimmed source of a non-empty code cell.
func selectable(cell *notebook.Cell) (string, bool) {
	if cell == nil || cell.Kind() != notebook.KindCode {
		return "", false
	}
	source := strings.TrimSpace(cell.Source())
	return source, source != ""
}

// skipped reports whether a skip pattern matches source. Skip patterns
// take precedence over indices and include patterns.
func (s *CellSelector) skipped(source string) bool {
	for _, g := range s.skip {
		if g.Match(source) {
			return true
		}
	}
	return false
}

// Select returns the selected cells in notebook order.
func (s *CellSelector) Select(nb *notebook.Notebook) []Target {
	var targets []Target
	for i, cell := range nb.Cells() {
		if s.Matches(i, cell) {
			targets = append(targets, Target{CellID: cell.ID(), Index: i})
		}
	}
	return targets
}

// Unmatched returns listed indices that do not name a non-empty code cell.
func (s *CellSelector) Unmatched(nb *notebook.Notebook) []int {
	var missing []int
	for i := range s.indices {
		if _, ok := selectable(nb.Cell(i)); !ok {
			missing = append(missing, i)
		}
	}
	sort.Ints(missing)
	return missing
}

// Skipped returns listed indices whose cell a skip pattern excluded.
func (s *CellSelector) Skipped(nb *notebook.Notebook) []int {
	var skipped []int
	for i := range s.indices {
		if source, ok := selectable(nb.Cell(i)); ok && s.skipped(source) {
			skipped = append(skipped, i)
		}
	}
	sort.Ints(skipped)
	return skipped
}
