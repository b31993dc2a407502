// Package flow holds the client-side state machines behind every screen:
// authentication, the item list, the add/edit form and deletion.
//
// Each flow performs at most one network call at a time. Starting an
// action while the previous one is still in flight returns ErrBusy
// instead of issuing a duplicate request. Every failure is reported as a
// notice and also returned, so callers can decide on an exit code; no
// error escapes a flow as a panic.
package flow

import (
	"errors"
	"strings"
)

// ErrBusy is returned when an action is started while the same flow is
// already waiting on the network.
var ErrBusy = errors.New("action already in progress")

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// ErrNoDraft is returned by Save when the form is not open.
var ErrNoDraft = errors.New("no draft open")

// ValidationError is a local input problem. It never reaches the network.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Route is a navigation target.
type Route string

const (
	RouteLogin     Route = "login"
	RouteRegister  Route = "register"
	RouteDashboard Route = "dashboard"
)

// Navigator moves the UI to another screen.
type Navigator interface {
	Navigate(Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }

var noNav = NavigatorFunc(func(Route) {})

// Confirmer asks the user a yes/no question and waits for the answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(string) bool

func (f ConfirmFunc) Confirm(p string) bool { return f(p) }

// AlwaysConfirm answers yes without asking. Used when the UI already
// collected the answer (the TUI prompt, or --yes on the CLI).
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })
