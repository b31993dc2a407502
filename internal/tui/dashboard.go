package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ item model.Item }

func (i listItem) Title() string       { return i.item.Title }
func (i listItem) Description() string { return i.item.Description }
func (i listItem) FilterValue() string { return i.item.Title + " " + i.item.Description }

// single line per item: title, then the description muted
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	title := it.item.Title
	prefix := strings.Repeat(" ", lipgloss.Width(t.SymCursor))
	if index == m.Index() {
		prefix = t.Accent.Render(t.SymCursor)
		title = t.Title.Render(title)
	}
	fmt.Fprintf(w, "%s%s  %s", prefix, title, t.Muted.Render(it.item.Description))
}

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{item: it})
	}
	return out
}

type keyMap struct {
	Add, Edit, Delete, Refresh, Logout, Quit key.Binding
}

var keys = keyMap{
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Refresh, k.Logout}
}

func newItemList(width, height int) list.Model {
	t := ui.Current()
	l := list.New(nil, itemDelegate{}, width, height)
	l.Title = t.Title.Render("Items")
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings
	// q is handled by the dashboard so quitting goes through one place
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

// itemForm is the add/edit modal.
type itemForm struct {
	editing bool
	title   textinput.Model
	desc    textinput.Model
	onDesc  bool
}

func newItemForm(editing bool, title, desc string) itemForm {
	f := itemForm{
		editing: editing,
		title:   newInput("Title", false),
		desc:    newInput("Description", false),
	}
	f.title.SetValue(title)
	f.desc.SetValue(desc)
	f.title.CursorEnd()
	f.desc.CursorEnd()
	f.title.Focus()
	return f
}

func (f *itemForm) toggle() tea.Cmd {
	f.onDesc = !f.onDesc
	if f.onDesc {
		f.title.Blur()
		return f.desc.Focus()
	}
	f.desc.Blur()
	return f.title.Focus()
}

func (f *itemForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.onDesc {
		f.desc, cmd = f.desc.Update(msg)
	} else {
		f.title, cmd = f.title.Update(msg)
	}
	return cmd
}

func (f itemForm) view(saving bool) string {
	t := ui.Current()
	heading := "Add new item"
	if f.editing {
		heading = "Edit item"
	}
	if saving {
		heading += "  " + t.Muted.Render("saving...")
	}
	box := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
	body := strings.Join([]string{
		t.Title.Render(heading),
		f.title.View(),
		f.desc.View(),
		t.Help.Render("enter save · tab switch field · esc cancel"),
	}, "\n")
	return box.Render(body)
}
