package tui

import (
	"context"
	"strings"

	"tareas-cli/internal/auth"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loginFocusEmail = iota
	loginFocusPassword
)

// loginForm is the sign-in / sign-up screen state.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int

	createMode bool
	reveal     bool
	busy       bool
	errMsg     string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "correo@ejemplo.com"
	email.Prompt = ""
	email.CharLimit = 254
	email.Focus()

	pw := textinput.New()
	pw.Placeholder = "contraseña"
	pw.Prompt = ""
	pw.CharLimit = 128
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	return loginForm{email: email, password: pw}
}

func (f *loginForm) title() string {
	if f.createMode {
		return "Crear cuenta"
	}
	return "Iniciar sesión"
}

func (f *loginForm) setFocus(i int) {
	f.focus = i
	if i == loginFocusEmail {
		f.email.Focus()
		f.password.Blur()
		return
	}
	f.password.Focus()
	f.email.Blur()
}

func (f *loginForm) toggleReveal() {
	f.reveal = !f.reveal
	if f.reveal {
		f.password.EchoMode = textinput.EchoNormal
	} else {
		f.password.EchoMode = textinput.EchoPassword
	}
}

// reset clears the form after a successful sign-in or a sign-out.
func (f *loginForm) reset() {
	createMode := f.createMode
	*f = newLoginForm()
	f.createMode = createMode
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.login
	if f.busy {
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		if f.focus == loginFocusEmail {
			f.setFocus(loginFocusPassword)
		} else {
			f.setFocus(loginFocusEmail)
		}
		return m, nil
	case "ctrl+n":
		f.createMode = !f.createMode
		f.errMsg = ""
		return m, nil
	case "ctrl+r":
		f.toggleReveal()
		return m, nil
	case "ctrl+t":
		m.theme.Toggle()
		return m, nil
	case "enter":
		if f.focus == loginFocusEmail {
			f.setFocus(loginFocusPassword)
			return m, nil
		}
		return m.submitLogin()
	}

	var cmd tea.Cmd
	if f.focus == loginFocusEmail {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return m, cmd
}

func (m appModel) submitLogin() (tea.Model, tea.Cmd) {
	f := &m.login
	email := strings.TrimSpace(f.email.Value())
	password := f.password.Value()
	if err := auth.ValidateForm(email, password); err != nil {
		f.errMsg = auth.Message(err)
		return m, nil
	}
	f.errMsg = ""
	f.busy = true
	return m, authCmd(m.auth, f.createMode, email, password)
}

// authCmd runs the authentication call off the update loop; its single result message is
// the continuation.
func authCmd(svc auth.Service, create bool, email, password string) tea.Cmd {
	return func() tea.Msg {
		if svc == nil {
			return authDoneMsg{created: create, email: email, err: &auth.Error{Kind: auth.KindOther}}
		}
		ctx := context.Background()
		var (
			id  string
			err error
		)
		if create {
			id, err = svc.SignUp(ctx, email, password)
		} else {
			id, err = svc.SignIn(ctx, email, password)
		}
		return authDoneMsg{created: create, userID: id, email: email, err: err}
	}
}

func signOutCmd(svc auth.Service) tea.Cmd {
	return func() tea.Msg {
		if svc == nil {
			return signOutDoneMsg{}
		}
		return signOutDoneMsg{err: svc.SignOut(context.Background())}
	}
}
