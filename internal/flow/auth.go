package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/Makepad-fr/itemdash/internal/logging"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/notify"
)

const (
	msgLoginRequired    = "Email and password are required"
	msgLoginOK          = "Logged in"
	msgLoginFailed      = "Invalid email or password"
	msgRegisterRequired = "Username, email and password are required"
	msgRegisterOK       = "Registered, please log in"
	msgRegisterFailed   = "Registration failed, the email may already be registered"
	msgSessionSave      = "Logged in, but the session could not be saved"
	msgLoggedOut        = "Logged out"
	msgLogoutFailed     = "Could not remove the stored session"
)

// AuthGateway is the part of the API the auth flow needs.
type AuthGateway interface {
	Login(ctx context.Context, creds model.Credentials) (string, error)
	Register(ctx context.Context, reg model.Registration) error
}

// TokenStore is where a successful login puts its token.
type TokenStore interface {
	SetToken(token string) error
	Clear() error
}

// Auth drives the login, register and logout screens.
type Auth struct {
	gw     AuthGateway
	tokens TokenStore
	notes  notify.Notifier
	nav    Navigator
	log    *logging.Logger

	mu    sync.Mutex
	state AuthState
}

// NewAuth wires the auth flow. notes, nav and log may be nil.
func NewAuth(gw AuthGateway, tokens TokenStore, notes notify.Notifier, nav Navigator, log *logging.Logger) *Auth {
	if notes == nil {
		notes = notify.Discard
	}
	if nav == nil {
		nav = noNav
	}
	return &Auth{
		gw:     gw,
		tokens: tokens,
		notes:  notes,
		nav:    nav,
		log:    logging.OrNop(log).WithFlow("auth"),
	}
}

// State returns the outcome of the latest submission.
func (a *Auth) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// begin moves to submitting unless a submission is in flight or the
// input is invalid. A validation failure ends in AuthFailed.
func (a *Auth) begin(invalid *ValidationError) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AuthSubmitting {
		return ErrBusy
	}
	if invalid != nil {
		a.state = AuthFailed
		return invalid
	}
	a.state = AuthSubmitting
	return nil
}

func (a *Auth) finish(s AuthState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Login submits credentials. On success the token is stored and the UI
// is sent to the dashboard. Any transport failure is reported as invalid
// credentials: a network error and a rejected password look the same.
func (a *Auth) Login(ctx context.Context, creds model.Credentials) error {
	var invalid *ValidationError
	if blank(creds.Email) || blank(creds.Password) {
		invalid = &ValidationError{Fields: []string{"email", "password"}, Message: msgLoginRequired}
	}
	if err := a.begin(invalid); err != nil {
		if !errors.Is(err, ErrBusy) {
			notify.Send(a.notes, notify.Warning, invalid.Message)
		}
		return err
	}

	token, err := a.gw.Login(ctx, creds)
	if err != nil {
		a.finish(AuthFailed)
		a.log.Warn("login failed", "email", creds.Email, "error", err)
		notify.Send(a.notes, notify.Error, msgLoginFailed)
		return err
	}
	if err := a.tokens.SetToken(token); err != nil {
		a.finish(AuthFailed)
		a.log.Error("store token", "error", err)
		notify.Send(a.notes, notify.Error, msgSessionSave)
		return err
	}

	a.finish(AuthSucceeded)
	a.log.Info("logged in", "email", creds.Email)
	notify.Send(a.notes, notify.Success, msgLoginOK)
	a.nav.Navigate(RouteDashboard)
	return nil
}

// Register creates an account and sends the UI to the login screen.
// It does not log the user in.
func (a *Auth) Register(ctx context.Context, reg model.Registration) error {
	var invalid *ValidationError
	if blank(reg.Username) || blank(reg.Email) || blank(reg.Password) {
		invalid = &ValidationError{Fields: []string{"username", "email", "password"}, Message: msgRegisterRequired}
	}
	if err := a.begin(invalid); err != nil {
		if !errors.Is(err, ErrBusy) {
			notify.Send(a.notes, notify.Warning, invalid.Message)
		}
		return err
	}

	if err := a.gw.Register(ctx, reg); err != nil {
		a.finish(AuthFailed)
		a.log.Warn("register failed", "email", reg.Email, "error", err)
		notify.Send(a.notes, notify.Error, msgRegisterFailed)
		return err
	}

	a.finish(AuthSucceeded)
	a.log.Info("registered", "email", reg.Email)
	notify.Send(a.notes, notify.Success, msgRegisterOK)
	a.nav.Navigate(RouteLogin)
	return nil
}

// Logout forgets the stored token and returns to the login screen.
func (a *Auth) Logout() error {
	if err := a.tokens.Clear(); err != nil {
		a.log.Error("clear token", "error", err)
		notify.Send(a.notes, notify.Error, msgLogoutFailed)
		return err
	}
	a.finish(AuthIdle)
	notify.Send(a.notes, notify.Info, msgLoggedOut)
	a.nav.Navigate(RouteLogin)
	return nil
}
