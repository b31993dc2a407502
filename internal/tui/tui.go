// Package tui is the interactive dashboard: sign-in and registration
// screens, the item list with its add/edit modal and delete prompt, and
// a stack of expiring notices.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdash/internal/flow"
	"github.com/Makepad-fr/itemdash/internal/logging"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/notify"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

// Gateway is everything the dashboard asks of the API.
type Gateway interface {
	flow.AuthGateway
	flow.ItemGateway
}

// Config wires the program.
type Config struct {
	Gateway Gateway
	Tokens  flow.TokenStore
	// Sinks receive every notice in addition to the toast stack.
	Sinks    []notify.Notifier
	Logger   *logging.Logger
	ToastTTL time.Duration
	// LoggedIn starts on the dashboard instead of the sign-in screen.
	LoggedIn bool
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

type authDoneMsg struct {
	kind  flow.Route
	email string
	route flow.Route
	moved bool
	err   error
}

type loadedMsg struct{ err error }
type savedMsg struct{ err error }
type deletedMsg struct{ err error }

// Model is the Bubble Tea model.
type Model struct {
	auth  *flow.Auth
	dash  *flow.Dashboard
	nav   *router
	queue *notify.Queue
	ttl   time.Duration
	log   *logging.Logger

	screen   flow.Route
	login    authForm
	register authForm
	status   string

	list   list.Model
	mode   mode
	form   itemForm
	saving bool
	prompt string

	toasts    []toast
	nextToast int

	width, height int
}

// New builds the model and the flows behind it.
func New(cfg Config) Model {
	log := logging.OrNop(cfg.Logger).With("component", "tui")
	ttl := cfg.ToastTTL
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	nav := &router{}
	queue := notify.NewQueue(32)
	notes := notify.NewChannel(log, append([]notify.Notifier{queue}, cfg.Sinks...)...)

	w, h := ui.TermSize()
	m := Model{
		auth:     flow.NewAuth(cfg.Gateway, cfg.Tokens, notes, nav, log),
		dash:     flow.NewDashboard(cfg.Gateway, notes, log),
		nav:      nav,
		queue:    queue,
		ttl:      ttl,
		log:      log,
		screen:   flow.RouteLogin,
		login:    newLoginForm(),
		register: newRegisterForm(),
		width:    w,
		height:   h,
	}
	m.list = newItemList(w-4, m.listHeight())
	if cfg.LoggedIn {
		m.screen = flow.RouteDashboard
	}
	return m
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(cfg Config) error {
	_, err := tea.NewProgram(New(cfg), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForNotice(m.queue)}
	if m.screen == flow.RouteDashboard {
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) listHeight() int {
	h := m.height - 8
	if m.mode == modeForm {
		h -= 5
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) resize() {
	m.list.SetSize(m.width-4, m.listHeight())
}

func (m Model) loadCmd() tea.Cmd {
	dash := m.dash
	return func() tea.Msg { return loadedMsg{err: dash.Load(context.Background())} }
}

func (m Model) saveCmd() tea.Cmd {
	dash := m.dash
	return func() tea.Msg { return savedMsg{err: dash.Save(context.Background())} }
}

func (m Model) deleteCmd() tea.Cmd {
	dash := m.dash
	return func() tea.Msg { return deletedMsg{err: dash.ResolveDelete(context.Background(), true)} }
}

func (m Model) loginCmd(creds model.Credentials) tea.Cmd {
	auth, nav := m.auth, m.nav
	return func() tea.Msg {
		err := auth.Login(context.Background(), creds)
		to, moved := nav.take()
		return authDoneMsg{kind: flow.RouteLogin, email: creds.Email, route: to, moved: moved, err: err}
	}
}

func (m Model) registerCmd(reg model.Registration) tea.Cmd {
	auth, nav := m.auth, m.nav
	return func() tea.Msg {
		err := auth.Register(context.Background(), reg)
		to, moved := nav.take()
		return authDoneMsg{kind: flow.RouteRegister, email: reg.Email, route: to, moved: moved, err: err}
	}
}

func (m *Model) syncList() tea.Cmd {
	items := m.dash.Items()
	m.list.Title = ui.Current().Title.Render("Items") + "  " + ui.Current().Muted.Render(plural(len(items)))
	return m.list.SetItems(toListItems(items))
}

func plural(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// goTo switches screens after a flow navigated.
func (m *Model) goTo(to flow.Route) tea.Cmd {
	m.screen = to
	m.mode = modeList
	m.status = ""
	switch to {
	case flow.RouteDashboard:
		m.login = newLoginForm()
		return m.loadCmd()
	case flow.RouteLogin:
		m.login = newLoginForm()
		m.dash.Reset()
		m.prompt = ""
		m.list.SetItems(nil)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case toastMsg:
		id := m.pushToast(msg.notice)
		return m, tea.Batch(waitForNotice(m.queue), expireAfter(id, m.ttl))

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case authDoneMsg:
		m.status = ""
		if msg.err != nil || !msg.moved {
			return m, nil
		}
		cmd := m.goTo(msg.route)
		if msg.kind == flow.RouteRegister {
			m.register = newRegisterForm()
			m.login.inputs[0].SetValue(msg.email)
			cmd = tea.Batch(cmd, m.login.setFocus(1))
		}
		return m, cmd

	case loadedMsg:
		m.status = ""
		return m, m.syncList()

	case savedMsg:
		m.saving = false
		if !m.dash.ModalOpen() {
			m.mode = modeList
			m.resize()
		}
		return m, m.syncList()

	case deletedMsg:
		m.mode = modeList
		m.prompt = ""
		return m, m.syncList()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case flow.RouteLogin, flow.RouteRegister:
			return m.updateAuth(msg)
		default:
			return m.updateDashboard(msg)
		}
	}

	if m.screen == flow.RouteDashboard && m.mode == modeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) activeForm() *authForm {
	if m.screen == flow.RouteRegister {
		return &m.register
	}
	return &m.login
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.activeForm()
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+r":
		if m.screen == flow.RouteLogin {
			m.screen = flow.RouteRegister
		} else {
			m.screen = flow.RouteLogin
		}
		m.status = ""
		return m, nil
	case "tab", "down":
		return m, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return m, f.setFocus(f.focus - 1)
	case "enter":
		if f.focus < len(f.inputs)-1 {
			return m, f.setFocus(f.focus + 1)
		}
		if m.screen == flow.RouteRegister {
			m.status = "Creating account..."
			return m, m.registerCmd(f.registration())
		}
		m.status = "Signing in..."
		return m, m.loginCmd(f.credentials())
	}
	return m, f.update(msg)
}

func (m Model) selected() (model.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return it.item, true
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}

	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit), msg.Type == tea.KeyEsc && m.list.FilterState() == list.Unfiltered:
		return m, tea.Quit

	case key.Matches(msg, keys.Add):
		if err := m.dash.OpenNew(); err != nil {
			return m, nil
		}
		m.form = newItemForm(false, "", "")
		m.mode = modeForm
		m.resize()
		return m, nil

	case key.Matches(msg, keys.Edit):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.dash.Edit(it); err != nil {
			return m, nil
		}
		m.form = newItemForm(true, it.Title, it.Description)
		m.mode = modeForm
		m.resize()
		return m, nil

	case key.Matches(msg, keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		prompt, err := m.dash.RequestDelete(it.ID)
		if err != nil {
			return m, nil
		}
		m.prompt = prompt
		m.mode = modeConfirm
		return m, nil

	case key.Matches(msg, keys.Refresh):
		m.status = "Loading..."
		return m, m.loadCmd()

	case key.Matches(msg, keys.Logout):
		if err := m.auth.Logout(); err != nil {
			return m, nil
		}
		if to, ok := m.nav.take(); ok {
			return m, m.goTo(to)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if err := m.dash.Cancel(); errors.Is(err, flow.ErrBusy) {
			return m, nil
		}
		m.mode = modeList
		m.resize()
		return m, nil
	case "tab", "shift+tab":
		return m, m.form.toggle()
	case "enter":
		if err := m.dash.UpdateDraft(m.form.title.Value(), m.form.desc.Value()); err != nil {
			return m, nil
		}
		m.saving = true
		return m, m.saveCmd()
	}
	return m, m.form.update(msg)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.prompt = "Deleting..."
		return m, m.deleteCmd()
	case "n", "N", "esc":
		_ = m.dash.ResolveDelete(context.Background(), false)
		m.mode = modeList
		m.prompt = ""
	}
	return m, nil
}

func (m Model) View() string {
	t := ui.Current()
	var body string
	switch m.screen {
	case flow.RouteLogin:
		body = m.login.view(m.status)
	case flow.RouteRegister:
		body = m.register.view(m.status)
	default:
		parts := []string{m.list.View()}
		switch {
		case m.dash.ListState() == flow.ListLoading || m.status != "":
			parts = append(parts, t.Muted.Render("Loading..."))
		case m.dash.ListState() == flow.ListReady && len(m.list.Items()) == 0:
			parts = append(parts, t.Muted.Render(ui.EmptyListText+", press a to add one"))
		}
		switch m.mode {
		case modeForm:
			parts = append(parts, m.form.view(m.saving))
		case modeConfirm:
			parts = append(parts, t.Warn.Render(m.prompt)+"  "+t.Help.Render("y/n"))
		}
		body = strings.Join(parts, "\n")
	}
	if toasts := renderToasts(m.toasts); toasts != "" {
		body += "\n\n" + toasts
	}
	return ui.Panel([]string{body})
}
