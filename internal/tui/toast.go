package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdash/internal/notify"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

// maxToasts bounds how many notices are drawn at once; older ones stay
// queued until they expire.
const maxToasts = 4

type toast struct {
	id     int
	notice notify.Notice
}

type toastMsg struct{ notice notify.Notice }

type toastExpiredMsg struct{ id int }

// waitForNotice blocks on the queue and turns the next notice into a msg.
func waitForNotice(q *notify.Queue) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-q.C()
		if !ok {
			return nil
		}
		return toastMsg{notice: n}
	}
}

func expireAfter(id int, ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m *Model) pushToast(n notify.Notice) int {
	m.nextToast++
	m.toasts = append(m.toasts, toast{id: m.nextToast, notice: n})
	return m.nextToast
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

func renderToasts(toasts []toast) string {
	if len(toasts) == 0 {
		return ""
	}
	if len(toasts) > maxToasts {
		toasts = toasts[len(toasts)-maxToasts:]
	}
	t := ui.Current()
	lines := make([]string, 0, len(toasts))
	for _, to := range toasts {
		n := to.notice
		switch n.Severity {
		case notify.Success:
			lines = append(lines, t.Success.Render(t.SymSuccess+" "+n.Message))
		case notify.Warning:
			lines = append(lines, t.Warn.Render(t.SymWarn+" "+n.Message))
		case notify.Error:
			lines = append(lines, t.Error.Render(t.SymError+" "+n.Message))
		default:
			lines = append(lines, t.Accent.Render(t.SymInfo+" "+n.Message))
		}
	}
	return strings.Join(lines, "\n")
}
