package notes

import (
	"context"
	"errors"

	"github.com/entrhq/docshelper/pkg/host"
)

// Command identifiers and labels of the note commands.
const (
	CmdInsertNote = "docshelper:insert-note"
	CmdAIMarkdown = "docshelper:ai-markdown"

	LabelInsertNote = "Insert Markdown Note"
	LabelAIMarkdown = "AI: Markdown"

	// ToolbarButton is the stable name of the AI note toolbar button.
	ToolbarButton = "docshelper-ai-markdown"
)

// RegisterCommands adds the note commands to the app's palette and attaches
// the AI note button to the toolbar of every current and future panel.
func (o *Orchestrator) RegisterCommands(app *host.App) error {
	commands := []host.Command{
		{
			ID:      CmdInsertNote,
			Label:   LabelInsertNote,
			Palette: true,
			Run:     o.InsertNote,
		},
		{
			ID:      CmdAIMarkdown,
			Label:   LabelAIMarkdown,
			Palette: true,
			Run: func(ctx context.Context) error {
				_, err := o.InsertAINote(ctx)
				if errors.Is(err, ErrBusy) {
					return nil
				}
				return err
			},
		},
	}
	for _, cmd := range commands {
		if err := app.Commands().Register(cmd); err != nil {
			return err
		}
	}

	app.OnPanelAdded(func(p *host.Panel) {
		if p.Toolbar.Attach(ToolbarButton, host.ToolbarItem{Label: LabelAIMarkdown, CommandID: CmdAIMarkdown}) {
			o.logger.Debugf("attached %s button to %s", LabelAIMarkdown, p.Name)
		}
	})
	return nil
}
