package host

import (
	"sync"

	"github.com/entrhq/docshelper/pkg/notebook"
)

// ToolbarItem is a button bound to a command.
type ToolbarItem struct {
	Label     string
	CommandID string
}

// Toolbar is an ordered set of uniquely named items.
type Toolbar struct {
	mu    sync.RWMutex
	names []string
	items map[string]ToolbarItem
}

// NewToolbar creates an empty toolbar.
func NewToolbar() *Toolbar {
	return &Toolbar{items: make(map[string]ToolbarItem)}
}

// Attach adds item under name unless an item with that name already exists.
// It reports whether the item was added.
func (t *Toolbar) Attach(name string, item ToolbarItem) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.items[name]; exists {
		return false
	}
	t.names = append(t.names, name)
	t.items[name] = item
	return true
}

// Item returns the item attached under name.
func (t *Toolbar) Item(name string) (ToolbarItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[name]
	return item, ok
}

// Items returns the attached items in attachment order.
func (t *Toolbar) Items() []ToolbarItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	items := make([]ToolbarItem, 0, len(t.names))
	for _, name := range t.names {
		items = append(items, t.items[name])
	}
	return items
}

// Panel is an open notebook document.
type Panel struct {
	Name     string
	Path     string
	Notebook *notebook.Notebook
	Toolbar  *Toolbar
}

// PanelHook runs for every panel added to the app, including panels that
// existed before the hook was installed.
type PanelHook func(p *Panel)
