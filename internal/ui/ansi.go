package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// OK, Warn and Fail print one themed status line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymSuccess+" "+msg))
}

func Info(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Accent.Render(t.SymInfo+" "+msg))
}

func Warn(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Warn.Render(t.SymWarn+" "+msg))
}

func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymError+" "+msg))
}

// Hint prints a muted follow-up line.
func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Muted.Render(msg))
}

// TermSize returns the terminal size, 80x24 when stdout is not a terminal.
func TermSize() (int, int) {
	w, h := 80, 24
	if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 && th > 0 {
		w, h = tw, th
	}
	return w, h
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
