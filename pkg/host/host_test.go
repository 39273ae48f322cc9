package host

import (
	"context"
	"errors"
	"testing"

	"github.com/entrhq/docshelper/pkg/notebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	ran []string
	err error
}

func (r *recordingRunner) Execute(_ context.Context, cell *notebook.Cell) error {
	r.ran = append(r.ran, cell.ID())
	return r.err
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	calls := 0
	run := func(context.Context) error { calls++; return nil }

	require.NoError(t, r.Register(Command{ID: "b", Label: "Bravo", Palette: true, Run: run}))
	require.NoError(t, r.Register(Command{ID: "a", Label: "Alpha", Palette: true, Run: run}))
	require.NoError(t, r.Register(Command{ID: "hidden", Label: "Hidden", Run: run}))

	assert.Error(t, r.Register(Command{ID: "a", Label: "Again", Run: run}))
	assert.Error(t, r.Register(Command{ID: "c"}))
	assert.True(t, r.Has("hidden"))

	require.NoError(t, r.Execute(context.Background(), "a"))
	assert.Equal(t, 1, calls)

	err := r.Execute(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrUnknownCommand))

	palette := r.Palette()
	require.Len(t, palette, 2)
	assert.Equal(t, "Alpha", palette[0].Label)
	assert.Equal(t, "Bravo", palette[1].Label)
}

func TestToolbar_AttachIsIdempotentByName(t *testing.T) {
	tb := NewToolbar()
	assert.True(t, tb.Attach("ai", ToolbarItem{Label: "AI", CommandID: "x"}))
	assert.False(t, tb.Attach("ai", ToolbarItem{Label: "Other", CommandID: "y"}))
	assert.True(t, tb.Attach("run", ToolbarItem{Label: "Run", CommandID: CmdRunCell}))

	item, ok := tb.Item("ai")
	require.True(t, ok)
	assert.Equal(t, "AI", item.Label)
	assert.Len(t, tb.Items(), 2)
}

func TestApp_NoPanel(t *testing.T) {
	app := NewApp(nil)
	assert.Nil(t, app.CurrentPanel())
	err := app.Execute(context.Background(), CmdInsertCellAbove)
	assert.True(t, errors.Is(err, ErrNoPanel))
}

func TestApp_InsertCommands(t *testing.T) {
	a := notebook.NewCell(notebook.KindCode, "a")
	b := notebook.NewCell(notebook.KindCode, "b")
	nb := notebook.New(a, b)
	nb.Select(b.ID())

	app := NewApp(nil)
	app.AddPanel("nb", "nb.ipynb", nb)
	ctx := context.Background()

	require.NoError(t, app.Execute(ctx, CmdInsertCellAbove))
	assert.Equal(t, 3, nb.Len())
	assert.Equal(t, 1, nb.ActiveIndex())
	assert.Equal(t, 2, nb.IndexOf(b.ID()))
	assert.Equal(t, notebook.KindCode, nb.ActiveCell().Kind())

	require.NoError(t, app.Execute(ctx, CmdInsertCellBelow))
	assert.Equal(t, 4, nb.Len())
	assert.Equal(t, 2, nb.ActiveIndex())
	assert.Equal(t, 3, nb.IndexOf(b.ID()))
}

func TestApp_InsertIntoEmptyNotebook(t *testing.T) {
	nb := notebook.New()
	app := NewApp(nil)
	app.AddPanel("empty", "", nb)

	require.NoError(t, app.Execute(context.Background(), CmdInsertCellAbove))
	assert.Equal(t, 1, nb.Len())
	assert.Equal(t, 0, nb.ActiveIndex())
}

func TestApp_ChangeKindEditAndDelete(t *testing.T) {
	c := notebook.NewCell(notebook.KindCode, "x")
	nb := notebook.New(c)
	app := NewApp(nil)
	app.AddPanel("nb", "", nb)
	ctx := context.Background()

	require.NoError(t, app.Execute(ctx, CmdChangeCellToMarkdown))
	assert.Equal(t, notebook.KindMarkdown, c.Kind())
	assert.Nil(t, c.Outputs())

	require.NoError(t, app.Execute(ctx, CmdEnterEditMode))
	assert.Equal(t, notebook.ModeEdit, nb.Mode())

	require.NoError(t, app.Execute(ctx, CmdChangeCellToCode))
	assert.NotNil(t, c.Outputs())

	require.NoError(t, app.Execute(ctx, CmdDeleteCell))
	assert.Equal(t, 0, nb.Len())
	assert.Equal(t, notebook.ModeCommand, nb.Mode())

	assert.Error(t, app.Execute(ctx, CmdDeleteCell))
	assert.Error(t, app.Execute(ctx, CmdEnterEditMode))
}

func TestApp_RunCell(t *testing.T) {
	code := notebook.NewCell(notebook.KindCode, "print(1)")
	md := notebook.NewCell(notebook.KindMarkdown, "# hi")
	nb := notebook.New(code, md)

	runner := &recordingRunner{}
	app := NewApp(runner)
	app.AddPanel("nb", "", nb)
	ctx := context.Background()

	nb.SetMode(notebook.ModeEdit)
	require.NoError(t, app.Execute(ctx, CmdRunCell))
	assert.Equal(t, []string{code.ID()}, runner.ran)
	assert.Equal(t, notebook.ModeCommand, nb.Mode())

	nb.Select(md.ID())
	require.NoError(t, app.Execute(ctx, CmdRunCell))
	assert.Len(t, runner.ran, 1, "markdown cells render without the runner")

	runner.err = errors.New("kernel died")
	nb.Select(code.ID())
	assert.Error(t, app.Execute(ctx, CmdRunCell))
}

func TestApp_RunCellWithoutRunner(t *testing.T) {
	app := NewApp(nil)
	app.AddPanel("nb", "", notebook.New(notebook.NewCell(notebook.KindCode, "x")))
	assert.Error(t, app.Execute(context.Background(), CmdRunCell))
}

func TestApp_PanelsAndHooks(t *testing.T) {
	app := NewApp(nil)
	first := app.AddPanel("first", "", notebook.New())

	var seen []string
	app.OnPanelAdded(func(p *Panel) { seen = append(seen, p.Name) })
	assert.Equal(t, []string{"first"}, seen, "hooks apply to existing panels")

	second := app.AddPanel("second", "", notebook.New())
	assert.Equal(t, []string{"first", "second"}, seen)
	assert.Same(t, second, app.CurrentPanel())

	assert.True(t, app.Activate("first"))
	assert.Same(t, first, app.CurrentPanel())
	assert.False(t, app.Activate("third"))
	assert.Len(t, app.Panels(), 2)
}
