package notify

import (
	"runtime/debug"
	"sync"

	"github.com/Makepad-fr/itemdash/internal/logging"
)

// Channel fans a notice out to every registered sink, in registration
// order. A panicking sink is recovered and logged so the rest still
// receive the notice.
type Channel struct {
	mu    sync.RWMutex
	sinks []Notifier
	log   *logging.Logger
}

func NewChannel(log *logging.Logger, sinks ...Notifier) *Channel {
	return &Channel{sinks: sinks, log: logging.OrNop(log)}
}

// Add registers another sink.
func (c *Channel) Add(sink Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, sink)
}

func (c *Channel) Notify(n Notice) {
	c.mu.RLock()
	sinks := make([]Notifier, len(c.sinks))
	copy(sinks, c.sinks)
	c.mu.RUnlock()

	c.log.Debug("notice", "severity", n.Severity.String(), "message", n.Message)
	for _, s := range sinks {
		c.safeCall(s, n)
	}
}

func (c *Channel) safeCall(s Notifier, n Notice) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("notice sink panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	s.Notify(n)
}

// Queue is a bounded, non-blocking sink read by the TUI. When the buffer
// is full the notice is dropped rather than stalling the sender.
type Queue struct {
	ch chan Notice
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 16
	}
	return &Queue{ch: make(chan Notice, size)}
}

func (q *Queue) Notify(n Notice) {
	select {
	case q.ch <- n:
	default:
	}
}

// C is the receive side.
func (q *Queue) C() <-chan Notice { return q.ch }
