package tui

import (
	"sync"

	"github.com/Makepad-fr/itemdash/internal/flow"
)

// router records where a flow asked to go. Flows run inside tea.Cmd
// goroutines, so the screen switch itself happens later in Update.
type router struct {
	mu    sync.Mutex
	route flow.Route
	moved bool
}

func (r *router) Navigate(to flow.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route, r.moved = to, true
}

// take returns the pending route and resets it.
func (r *router) take() (flow.Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	to, ok := r.route, r.moved
	r.moved = false
	return to, ok
}
