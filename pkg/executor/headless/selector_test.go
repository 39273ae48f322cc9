package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/docshelper/pkg/notebook"
)

func sampleNotebook() *notebook.Notebook {
	return notebook.New(
		notebook.NewCell(notebook.KindCode, "import pandas as pd"),
		notebook.NewCell(notebook.KindMarkdown, "# Load"),
		notebook.NewCell(notebook.KindCode, "df = pd.read_csv('data.csv')"),
		notebook.NewCell(notebook.KindCode, "   "),
		notebook.NewCell(notebook.KindCode, "token = 'secret'\nprint(token)"),
	)
}

func indices(targets []Target) []int {
	out := make([]int, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.Index)
	}
	return out
}

func TestCellSelector_Select(t *testing.T) {
	tests := []struct {
		name string
		cfg  SelectionConfig
		want []int
	}{
		{
			name: "everything by default",
			want: []int{0, 2, 4},
		},
		{
			name: "source glob",
			cfg:  SelectionConfig{Cells: []string{"import *"}},
			want: []int{0},
		},
		{
			name: "glob spans lines",
			cfg:  SelectionConfig{Cells: []string{"*print(*)"}},
			want: []int{4},
		},
		{
			name: "indices and globs combine",
			cfg:  SelectionConfig{Cells: []string{"df = *"}, Indices: []int{0}},
			want: []int{0, 2},
		},
		{
			name: "skip wins over index",
			cfg:  SelectionConfig{Indices: []int{0, 4}, Skip: []string{"*secret*"}},
			want: []int{0},
		},
		{
			name: "skip without include",
			cfg:  SelectionConfig{Skip: []string{"import *"}},
			want: []int{2, 4},
		},
		{
			name: "markdown and blank cells are never selected",
			cfg:  SelectionConfig{Indices: []int{1, 3}},
			want: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector, err := NewCellSelector(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, indices(selector.Select(sampleNotebook())))
		})
	}
}

func TestCellSelector_TargetsCarryIDs(t *testing.T) {
	nb := sampleNotebook()
	selector, err := NewCellSelector(SelectionConfig{})
	require.NoError(t, err)

	for _, target := range selector.Select(nb) {
		assert.Equal(t, target.Index, nb.IndexOf(target.CellID))
	}
}

func TestCellSelector_Unmatched(t *testing.T) {
	selector, err := NewCellSelector(SelectionConfig{Indices: []int{9, 2, 1}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 9}, selector.Unmatched(sampleNotebook()))
	assert.Empty(t, selector.Skipped(sampleNotebook()))
}

func TestCellSelector_SkippedIndices(t *testing.T) {
	selector, err := NewCellSelector(SelectionConfig{
		Indices: []int{4, 3, 0},
		Skip:    []string{"*secret*"},
	})
	require.NoError(t, err)

	nb := sampleNotebook()
	assert.Equal(t, []int{4}, selector.Skipped(nb))
	assert.Equal(t, []int{3}, selector.Unmatched(nb), "a skipped cell is not reported as missing")
	assert.Equal(t, []int{0}, indices(selector.Select(nb)))
}

func TestCellSelector_InvalidPattern(t *testing.T) {
	_, err := NewCellSelector(SelectionConfig{Cells: []string{"[unclosed"}})
	assert.Error(t, err)

	_, err = NewCellSelector(SelectionConfig{Skip: []string{"[unclosed"}})
	assert.Error(t, err)
}
