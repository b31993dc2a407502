package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdash/internal/flow"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

// authForm is the login or register screen: a column of inputs with one
// focused at a time.
type authForm struct {
	kind   flow.Route
	labels []string
	inputs []textinput.Model
	focus  int
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func newLoginForm() authForm {
	f := authForm{
		kind:   flow.RouteLogin,
		labels: []string{"Email", "Password"},
		inputs: []textinput.Model{newInput("you@example.com", false), newInput("password", true)},
	}
	f.inputs[0].Focus()
	return f
}

func newRegisterForm() authForm {
	f := authForm{
		kind:   flow.RouteRegister,
		labels: []string{"Username", "Email", "Password"},
		inputs: []textinput.Model{newInput("username", false), newInput("you@example.com", false), newInput("password", true)},
	}
	f.inputs[0].Focus()
	return f
}

func (f *authForm) setFocus(i int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f authForm) value(i int) string { return f.inputs[i].Value() }

func (f authForm) credentials() model.Credentials {
	return model.Credentials{Email: strings.TrimSpace(f.value(0)), Password: f.value(1)}
}

func (f authForm) registration() model.Registration {
	return model.Registration{
		Username: strings.TrimSpace(f.value(0)),
		Email:    strings.TrimSpace(f.value(1)),
		Password: f.value(2),
	}
}

func (f authForm) view(status string) string {
	t := ui.Current()
	title := "Sign in"
	switchHint := "ctrl+r register"
	if f.kind == flow.RouteRegister {
		title = "Create account"
		switchHint = "ctrl+r back to sign in"
	}
	lines := []string{t.Title.Render(title), ""}
	for i, in := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			label = t.Accent.Render(label)
		} else {
			label = t.Muted.Render(label)
		}
		lines = append(lines, label, in.View(), "")
	}
	if status != "" {
		lines = append(lines, t.Muted.Render(status))
	}
	lines = append(lines, t.Help.Render("enter submit · tab next · "+switchHint+" · esc quit"))
	return strings.Join(lines, "\n")
}
