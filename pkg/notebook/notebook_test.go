package notebook

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotebook_InsertShiftsLaterCells(t *testing.T) {
	a := NewCell(KindCode, "a")
	b := NewCell(KindCode, "b")
	nb := New(a, b)

	require.Equal(t, 1, nb.IndexOf(b.ID()))

	inserted := NewCell(KindMarkdown, "note")
	nb.InsertAt(0, inserted)

	assert.Equal(t, 0, nb.IndexOf(inserted.ID()))
	assert.Equal(t, 1, nb.IndexOf(a.ID()))
	assert.Equal(t, 2, nb.IndexOf(b.ID()))
	assert.Equal(t, -1, nb.IndexOf("missing"))
}

func TestNotebook_RemoveAtKeepsActiveInRange(t *testing.T) {
	a := NewCell(KindCode, "a")
	b := NewCell(KindCode, "b")
	nb := New(a, b)
	nb.SetActiveIndex(1)

	removed, ok := nb.RemoveAt(1)
	require.True(t, ok)
	assert.Same(t, b, removed)
	assert.Equal(t, 0, nb.ActiveIndex())

	_, ok = nb.RemoveAt(5)
	assert.False(t, ok)

	nb.RemoveAt(0)
	assert.Equal(t, -1, nb.ActiveIndex())
	assert.Nil(t, nb.ActiveCell())
}

func TestNotebook_Select(t *testing.T) {
	a := NewCell(KindCode, "a")
	b := NewCell(KindMarkdown, "b")
	nb := New(a, b)

	assert.True(t, nb.Select(b.ID()))
	assert.Same(t, b, nb.ActiveCell())
	assert.False(t, nb.Select("nope"))
	assert.Same(t, b, nb.ActiveCell())
}

func TestCell_SetKindManagesOutputs(t *testing.T) {
	c := NewCell(KindMarkdown, "")
	assert.Nil(t, c.Outputs())

	c.SetKind(KindCode)
	require.NotNil(t, c.Outputs())

	c.SetKind(KindMarkdown)
	assert.Nil(t, c.Outputs())
}

func TestOutputs_SubscribeAndCancel(t *testing.T) {
	out := NewOutputs()
	calls := 0
	cancel := out.Subscribe(func(*Outputs) { calls++ })
	assert.Equal(t, 1, out.Observers())

	out.Append(NewStdout("x"))
	assert.Equal(t, 1, calls)

	cancel()
	cancel()
	assert.Equal(t, 0, out.Observers())

	out.Append(NewStdout("y"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, out.Len())
}

func TestOutputs_CallbackMayReadCollection(t *testing.T) {
	out := NewOutputs()
	var seen int
	cancel := out.Subscribe(func(o *Outputs) { seen = o.Len() })
	defer cancel()

	out.Append(NewStdout("a"), NewStdout("b"))
	assert.Equal(t, 2, seen)
	assert.Nil(t, out.At(2))
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		wantOK   bool
		wantType OutputType
	}{
		{
			name:     "stream with string text",
			raw:      map[string]any{"output_type": "stream", "name": "stdout", "text": "hi"},
			wantOK:   true,
			wantType: OutputStream,
		},
		{
			name:     "stream with fragments",
			raw:      map[string]any{"output_type": "stream", "text": []any{"Hel", "lo"}},
			wantOK:   true,
			wantType: OutputStream,
		},
		{
			name:     "display data",
			raw:      map[string]any{"output_type": "display_data", "data": map[string]any{"text/markdown": "# T"}},
			wantOK:   true,
			wantType: OutputDisplayData,
		},
		{
			name:     "execute result",
			raw:      map[string]any{"output_type": "execute_result", "data": map[string]any{"text/plain": "1"}, "execution_count": float64(3)},
			wantOK:   true,
			wantType: OutputExecuteResult,
		},
		{
			name:     "error output",
			raw:      map[string]any{"output_type": "error", "ename": "ValueError", "evalue": "bad", "traceback": []any{"line 1"}},
			wantOK:   true,
			wantType: OutputError,
		},
		{name: "nil", raw: nil},
		{name: "unknown type", raw: map[string]any{"output_type": "widget"}},
		{name: "stream with number", raw: map[string]any{"output_type": "stream", "text": 42}},
		{name: "stream with mixed fragments", raw: map[string]any{"output_type": "stream", "text": []any{"a", 1}}},
		{name: "bundle without data", raw: map[string]any{"output_type": "display_data"}},
		{name: "empty error", raw: map[string]any{"output_type": "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := DecodeRecord(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, rec)
				return
			}
			assert.Equal(t, tt.wantType, rec.Type())
		})
	}
}

func TestDecodeRecord_FragmentsJoin(t *testing.T) {
	rec, ok := DecodeRecord(map[string]any{"output_type": "stream", "text": []any{"Hel", "lo"}})
	require.True(t, ok)
	stream, ok := rec.(*StreamRecord)
	require.True(t, ok)
	assert.Equal(t, "Hello", stream.Text.Join())
}

func TestErrorRecord(t *testing.T) {
	rec, ok := DecodeRecord(map[string]any{"output_type": "error", "ename": "KeyError", "evalue": "'x'"})
	require.True(t, ok)
	errRec, ok := rec.(*ErrorRecord)
	require.True(t, ok)
	assert.Equal(t, "KeyError: 'x'", errRec.Error())

	encoded := EncodeRecord(errRec)
	assert.Equal(t, "error", encoded["output_type"])
	assert.Equal(t, []string{}, encoded["traceback"])
}

func TestLoadSave_RoundTrip(t *testing.T) {
	const doc = `{
 "cells": [
  {"cell_type": "markdown", "id": "m1", "metadata": {}, "source": ["# Title\n", "body"]},
  {"cell_type": "code", "id": "c1", "metadata": {}, "source": "print(1)", "execution_count": 7,
   "outputs": [
    {"output_type": "stream", "name": "stdout", "text": ["1\n"]},
    {"output_type": "weird"}
   ]},
  {"cell_type": "code", "metadata": {}, "source": [], "outputs": []}
 ],
 "metadata": {"kernelspec": {"name": "python3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`

	nb, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 3, nb.Len())

	assert.Equal(t, "m1", nb.Cell(0).ID())
	assert.Equal(t, "# Title\nbody", nb.Cell(0).Source())
	assert.Equal(t, KindCode, nb.Cell(1).Kind())
	assert.Equal(t, 1, nb.Cell(1).Outputs().Len(), "unknown output shapes are dropped")
	assert.NotEmpty(t, nb.Cell(2).ID(), "missing ids are generated")

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, nb))

	reloaded, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, 3, reloaded.Len())
	assert.Equal(t, nb.Cell(0).Source(), reloaded.Cell(0).Source())
	assert.Equal(t, nb.Cell(2).ID(), reloaded.Cell(2).ID())
	assert.Equal(t, "python3", reloaded.Metadata["kernelspec"].(map[string]any)["name"])

	stream, ok := reloaded.Cell(1).Outputs().At(0).(*StreamRecord)
	require.True(t, ok)
	assert.Equal(t, "1\n", stream.Text.Join())

	count, ok := reloaded.Cell(1).ExecutionCount()
	assert.True(t, ok)
	assert.Equal(t, 7, count)
	_, ok = reloaded.Cell(2).ExecutionCount()
	assert.False(t, ok)
}

func TestSave_ExecutionCountField(t *testing.T) {
	ran := NewCell(KindCode, "x = 1")
	ran.SetExecutionCount(3)
	nb := New(NewCell(KindMarkdown, "# Notes"), ran, NewCell(KindCode, "y = 2"))

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, nb))

	var doc struct {
		Cells []map[string]any `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Cells, 3)

	assert.NotContains(t, doc.Cells[0], "execution_count", "markdown cells carry no counter")
	assert.Equal(t, float64(3), doc.Cells[1]["execution_count"])
	value, present := doc.Cells[2]["execution_count"]
	assert.True(t, present, "code cells always carry the key")
	assert.Nil(t, value)
}

func TestCell_ExecutionCountFollowsKind(t *testing.T) {
	cell := NewCell(KindCode, "x = 1")
	cell.SetExecutionCount(2)
	cell.SetKind(KindMarkdown)
	_, ok := cell.ExecutionCount()
	assert.False(t, ok)

	cell.SetExecutionCount(5)
	_, ok = cell.ExecutionCount()
	assert.False(t, ok, "ignored on markdown cells")
}

func TestLoad_RejectsOldFormat(t *testing.T) {
	_, err := Load(strings.NewReader(`{"cells": [], "nbformat": 3}`))
	assert.Error(t, err)
}

func TestSaveFile_Atomic(t *testing.T) {
	path := t.TempDir() + "/nb/out.ipynb"
	nb := New(NewCell(KindCode, "x = 1\ny = 2\n"))

	require.NoError(t, SaveFile(path, nb))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\ny = 2\n", loaded.Cell(0).Source())
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{}, splitLines(""))
	assert.Equal(t, []string{"a"}, splitLines("a"))
	assert.Equal(t, []string{"a\n", "b"}, splitLines("a\nb"))
	assert.Equal(t, []string{"a\n"}, splitLines("a\n"))
}
