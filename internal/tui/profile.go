package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/domain"
)

type profileState int

const (
	psNormal profileState = iota
	psEdit
	psPassword
	psImage
)

type profField int

const (
	profName profField = iota
	profLastName
	profEmail
	profPhone
	profUsername
	numProfFields
)

var profLabels = [numProfFields]string{"name", "last name", "email", "phone", "username"}

type profileModel struct {
	profile *state.Profile
	ctx     context.Context

	snap   state.ProfileSnapshot
	pstate profileState

	inputs [numProfFields]textinput.Model
	focus  profField

	password textinput.Model
	confirm  textinput.Model
	pwFocus  int // 0 = password, 1 = confirm

	imageInput textinput.Model

	loading   bool
	statusMsg string
	width     int
	height    int
}

type profileLoadedMsg struct {
	snap state.ProfileSnapshot
	err  error
}

type profileSavedMsg struct {
	serverMsg string
	err       error
}

// logoutRequestedMsg asks the app to tear the session down.
type logoutRequestedMsg struct{}

func newProfileModel(profile *state.Profile) profileModel {
	m := profileModel{profile: profile, ctx: context.Background(), loading: true}
	for f := profField(0); f < numProfFields; f++ {
		ti := textinput.New()
		ti.CharLimit = maxInputLen
		ti.Prompt = ""
		m.inputs[f] = ti
	}
	m.password = textinput.New()
	m.password.Prompt = ""
	m.password.EchoMode = textinput.EchoPassword
	m.confirm = textinput.New()
	m.confirm.Prompt = ""
	m.confirm.EchoMode = textinput.EchoPassword
	m.imageInput = textinput.New()
	m.imageInput.Prompt = ""
	m.imageInput.Placeholder = "path/to/avatar.jpg"
	return m
}

func (m profileModel) load(force bool) tea.Cmd {
	profile := m.profile
	ctx := m.ctx
	return func() tea.Msg {
		err := profile.FetchUserData(ctx, force)
		return profileLoadedMsg{snap: profile.Snapshot(), err: err}
	}
}

func (m profileModel) Init() tea.Cmd {
	return m.load(false)
}

func (m profileModel) editing() bool {
	return m.pstate != psNormal
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		m.snap = msg.snap
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("error: %v", msg.err)
		}
		return m, nil

	case profileSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("update failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = msg.serverMsg
		if m.statusMsg == "" {
			m.statusMsg = "profile updated"
		}
		m.pstate = psNormal
		m.snap = m.profile.Snapshot()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.pstate {
		case psEdit:
			return m.updateEdit(msg)
		case psPassword:
			return m.updatePassword(msg)
		case psImage:
			return m.updateImage(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m profileModel) updateNormal(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	m.statusMsg = ""
	switch msg.String() {
	case "e":
		if m.snap.User == nil {
			return m, nil
		}
		u := m.snap.User
		m.inputs[profName].SetValue(u.Name)
		m.inputs[profLastName].SetValue(u.LastName)
		m.inputs[profEmail].SetValue(u.Email)
		m.inputs[profPhone].SetValue(u.Phone)
		m.inputs[profUsername].SetValue(u.Username)
		m.pstate = psEdit
		m = m.setFocus(profName)
		return m, textinput.Blink
	case "p":
		if m.snap.User == nil {
			return m, nil
		}
		m.password.SetValue("")
		m.confirm.SetValue("")
		m.pwFocus = 0
		m.password.Focus()
		m.confirm.Blur()
		m.pstate = psPassword
		return m, textinput.Blink
	case "i":
		if m.snap.User == nil {
			return m, nil
		}
		m.imageInput.SetValue("")
		m.imageInput.Focus()
		m.pstate = psImage
		return m, textinput.Blink
	case "L":
		return m, func() tea.Msg { return logoutRequestedMsg{} }
	case "r":
		m.loading = true
		return m, m.load(true)
	}
	return m, nil
}

func (m profileModel) setFocus(f profField) profileModel {
	m.focus = f
	for i := profField(0); i < numProfFields; i++ {
		if i == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m profileModel) updateEdit(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	m.statusMsg = ""
	switch msg.String() {
	case "esc":
		m.pstate = psNormal
		return m, nil
	case "ctrl+s":
		return m.submitEdit()
	case "tab", "down", "enter":
		return m.setFocus((m.focus + 1) % numProfFields), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus - 1 + numProfFields) % numProfFields), nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m profileModel) submitEdit() (profileModel, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[profName].Value())
	lastName := strings.TrimSpace(m.inputs[profLastName].Value())
	email := strings.TrimSpace(m.inputs[profEmail].Value())
	phone := strings.TrimSpace(m.inputs[profPhone].Value())
	username := strings.TrimSpace(m.inputs[profUsername].Value())

	switch {
	case name == "":
		m.statusMsg = "name is required"
		return m, nil
	case lastName == "":
		m.statusMsg = "last name is required"
		return m, nil
	case !domain.ValidEmail(email):
		m.statusMsg = "a valid email is required"
		return m, nil
	case !domain.ValidPhone(phone):
		m.statusMsg = "phone must be exactly 10 digits"
		return m, nil
	case !domain.ValidUsername(username):
		m.statusMsg = "username must be 8-12 characters"
		return m, nil
	}

	fields := map[string]any{
		"name":      name,
		"last_name": lastName,
		"email":     email,
		"phone":     phone,
		"username":  username,
	}
	profile := m.profile
	ctx := m.ctx
	return m, func() tea.Msg {
		serverMsg, err := profile.UpdateUserData(ctx, fields)
		return profileSavedMsg{serverMsg: serverMsg, err: err}
	}
}

func (m profileModel) updatePassword(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	m.statusMsg = ""
	switch msg.String() {
	case "esc":
		m.pstate = psNormal
		return m, nil
	case "ctrl+s":
		return m.submitPassword()
	case "tab", "down", "enter", "shift+tab", "up":
		m.pwFocus = 1 - m.pwFocus
		if m.pwFocus == 0 {
			m.password.Focus()
			m.confirm.Blur()
		} else {
			m.password.Blur()
			m.confirm.Focus()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.pwFocus == 0 {
		m.password, cmd = m.password.Update(msg)
	} else {
		m.confirm, cmd = m.confirm.Update(msg)
	}
	return m, cmd
}

// submitPassword requires the confirmation to match before any request
// goes out.
func (m profileModel) submitPassword() (profileModel, tea.Cmd) {
	pw := m.password.Value()
	if len(pw) < domain.MinPasswordLen {
		m.statusMsg = "password must be at least 8 characters"
		return m, nil
	}
	if pw != m.confirm.Value() {
		m.statusMsg = "passwords do not match"
		return m, nil
	}
	profile := m.profile
	ctx := m.ctx
	return m, func() tea.Msg {
		serverMsg, err := profile.UpdateUserData(ctx, map[string]any{"password": pw})
		return profileSavedMsg{serverMsg: serverMsg, err: err}
	}
}

func (m profileModel) updateImage(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	m.statusMsg = ""
	switch msg.String() {
	case "esc":
		m.pstate = psNormal
		return m, nil
	case "enter", "ctrl+s":
		path := strings.TrimSpace(m.imageInput.Value())
		if !domain.ValidImagePath(path) {
			m.statusMsg = "image must be a JPG, JPEG, PNG or GIF file"
			return m, nil
		}
		profile := m.profile
		ctx := m.ctx
		return m, func() tea.Msg {
			serverMsg, err := profile.UpdateUserImage(ctx, path)
			return profileSavedMsg{serverMsg: serverMsg, err: err}
		}
	}
	var cmd tea.Cmd
	m.imageInput, cmd = m.imageInput.Update(msg)
	return m, cmd
}

// helpKeys returns the help bar entries for the current profile state.
func (m profileModel) helpKeys() string {
	switch m.pstate {
	case psEdit:
		return helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
	case psPassword:
		return helpEntry("tab", "confirm") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
	case psImage:
		return helpEntry("enter", "save") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("e", "edit") + "  " + helpEntry("p", "password") + "  " + helpEntry("i", "image") + "  " + helpEntry("L", "logout") + "  " + helpEntry("q", "quit")
}

func (m profileModel) View() string {
	var b strings.Builder
	b.WriteString(" " + badgeStyle.Render("PROFILE") + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.snap.User == nil {
		if m.loading {
			b.WriteString(" " + dimStyle.Render("loading..."))
		} else {
			b.WriteString(" " + dimStyle.Render("not logged in -- run: tradepost login"))
		}
		return b.String()
	}

	switch m.pstate {
	case psEdit:
		b.WriteString(m.viewEdit())
	case psPassword:
		b.WriteString(m.viewPassword())
	case psImage:
		b.WriteString(" " + metaStyle.Render("new image") + "  " + m.imageInput.View() + "\n")
	default:
		b.WriteString(m.viewProfile())
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + okStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m profileModel) viewProfile() string {
	u := m.snap.User
	var b strings.Builder

	b.WriteString(" " + selectedStyle.Render(strings.TrimSpace(u.Name+" "+u.LastName)) + "  " + metaStyle.Render("@"+u.Username) + "\n")
	b.WriteString(" " + starStyle.Render(formatRating(u.Rating)) + "  " + metaStyle.Render(fmt.Sprintf("%d trades", u.TradesCount)) + "\n\n")

	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%-10s", "email")) + normalStyle.Render(u.Email) + "\n")
	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%-10s", "phone")) + normalStyle.Render(u.Phone) + "\n")
	if u.Image != "" {
		b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%-10s", "image")) + metaStyle.Render(u.Image) + "\n")
	}
	return b.String()
}

func (m profileModel) viewEdit() string {
	var b strings.Builder
	for f := profField(0); f < numProfFields; f++ {
		cursor := " "
		style := metaStyle
		if f == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(fmt.Sprintf("%-10s", profLabels[f])), m.inputs[f].View())
	}
	return b.String()
}

func (m profileModel) viewPassword() string {
	var b strings.Builder
	cursor := [2]string{" ", " "}
	cursor[m.pwFocus] = ">"
	fmt.Fprintf(&b, " %s %s %s\n", cursor[0], metaStyle.Render(fmt.Sprintf("%-10s", "password")), m.password.View())
	fmt.Fprintf(&b, " %s %s %s\n", cursor[1], metaStyle.Render(fmt.Sprintf("%-10s", "confirm")), m.confirm.View())
	return b.String()
}
