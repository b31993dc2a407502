package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Makepad-fr/itemdash/internal/model"
)

func TestItemTable(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	out := ItemTable([]model.Item{
		{ID: "1", Title: "A", Description: "B"},
		{ID: "2", Title: "Groceries", Description: "milk, eggs"},
	})
	for _, want := range []string{"Title", "Description", "Groceries", "milk, eggs", "2 item(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, EmptyListText) {
		t.Errorf("non-empty table should not show %q", EmptyListText)
	}
}

func TestItemTable_Empty(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	out := ItemTable(nil)
	if !strings.Contains(out, EmptyListText) {
		t.Errorf("empty table should show %q:\n%s", EmptyListText, out)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("classic")
	for _, name := range Themes() {
		SetTheme(name)
		if got := Current().Name; got != name {
			t.Errorf("SetTheme(%q): Current().Name = %q", name, got)
		}
	}
	SetTheme("unknown")
	if got := Current().Name; got != "classic" {
		t.Errorf("unknown theme fell back to %q, want classic", got)
	}
}

func TestStatusLines(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	OK(&buf, "saved")
	Warn(&buf, "careful")
	Fail(&buf, "broken")

	want := "ok saved\n! careful\nx broken\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
