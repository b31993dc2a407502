package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/itemdash/internal/model"
)

// EmptyListText is shown in place of rows when there are no items.
const EmptyListText = "No items"

// Panel frames lines using the current theme.
func Panel(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// ItemTable renders items as a numbered No / Title / Description table.
func ItemTable(items []model.Item) string {
	t := Current()
	header := []string{"No", "ID", "Title", "Description"}
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{fmt.Sprint(i + 1), string(it.ID), it.Title, it.Description})
	}

	widths := make([]int, len(header))
	for c, h := range header {
		widths[c] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for c, cell := range r {
			if w := lipgloss.Width(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	pad := func(s string, w int) string {
		if vis := lipgloss.Width(s); vis < w {
			return s + strings.Repeat(" ", w-vis)
		}
		return s
	}
	line := func(cells []string) string {
		out := make([]string, len(cells))
		for c, cell := range cells {
			out[c] = pad(cell, widths[c])
		}
		return strings.Join(out, "  ")
	}

	lines := []string{t.Title.Render(line(header))}
	if len(rows) == 0 {
		lines = append(lines, t.Muted.Render(EmptyListText))
	}
	for _, r := range rows {
		lines = append(lines, line(r))
	}
	lines = append(lines, t.Muted.Render(fmt.Sprintf("%d item(s)", len(items))))
	return Panel(lines)
}
