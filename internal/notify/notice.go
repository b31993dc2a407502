// Package notify carries user-facing notices (toasts) away from the flow
// that raised them. Sending a notice never blocks the sender and never
// changes its control flow.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Makepad-fr/itemdash/internal/ui"
)

// Severity of a notice.
type Severity int

const (
	Success Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Notice is a single user-facing message.
type Notice struct {
	Severity Severity
	Message  string
	Time     time.Time
}

// Notifier accepts notices.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// Send stamps and delivers a notice. A nil notifier is allowed.
func Send(n Notifier, sev Severity, msg string) {
	if n == nil {
		return
	}
	n.Notify(Notice{Severity: sev, Message: msg, Time: time.Now()})
}

// Printer writes notices as themed status lines. Success and info go to
// Out, warnings and errors to Err.
type Printer struct {
	Out, Err io.Writer
	mu       sync.Mutex
}

func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut}
}

func (p *Printer) Notify(n Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch n.Severity {
	case Success:
		ui.OK(p.Out, n.Message)
	case Warning:
		ui.Warn(p.Err, n.Message)
	case Error:
		ui.Fail(p.Err, n.Message)
	default:
		ui.Info(p.Out, n.Message)
	}
}

// Recorder keeps every notice it receives. Used in tests and by the CLI
// to tell whether a flow already reported its failure.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Count returns how many notices of sev were recorded.
func (r *Recorder) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, no := range r.notices {
		if no.Severity == sev {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
