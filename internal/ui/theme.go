package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent  lipgloss.Style
	Success, Warn, Error  lipgloss.Style
	Selected, Help, Input lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	SymSuccess, SymInfo, SymWarn, SymError, SymCursor string
}

var (
	mu      sync.RWMutex
	current = classic()
)

var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

func classic() Theme {
	return Theme{
		Name:        "classic",
		Title:       lipgloss.NewStyle().Bold(true),
		Muted:       lipgloss.NewStyle().Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warn:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Help:        lipgloss.NewStyle().Faint(true),
		Input:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
		SymSuccess:  "✔", SymInfo: "•", SymWarn: "!", SymError: "✖", SymCursor: "> ",
	}
}

func neon() Theme {
	t := classic()
	t.Name = "neon"
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	t.Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	t.Input = t.Accent
	t.BorderColor = lipgloss.Color("13")
	t.SymCursor = "▸ "
	return t
}

func mono() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:  "mono",
		Title: plain, Muted: plain, Accent: plain,
		Success: plain, Warn: plain, Error: plain,
		Selected: plain, Help: plain, Input: plain,
		Border:      asciiBorder,
		BorderColor: lipgloss.NoColor{},
		SymSuccess:  "ok", SymInfo: "-", SymWarn: "!", SymError: "x", SymCursor: "> ",
	}
}

// SetTheme switches the palette. Unknown names fall back to classic.
func SetTheme(name string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(name) {
	case "neon":
		current = neon()
	case "mono":
		current = mono()
	default:
		current = classic()
	}
}

// Current returns the active theme.
func Current() Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Themes lists the accepted theme names.
func Themes() []string { return []string{"classic", "neon", "mono"} }
