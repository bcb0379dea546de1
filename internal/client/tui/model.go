// Package tui renders the users client as a bubbletea program. All state
// lives in the controller; the model only tracks focus, the list cursor
// and a pending delete confirmation.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/geocoder89/usershub/internal/client/controller"
)

// focus slots 0..3 are the form inputs, in controller.Field order.
const listSlot = 4

var fieldOrder = [...]controller.Field{
	controller.FieldName,
	controller.FieldEmail,
	controller.FieldAge,
	controller.FieldCity,
}

var placeholders = [...]string{"Name", "Email", "Age", "City"}

// stateChangedMsg is delivered whenever the controller mutates its state.
type stateChangedMsg struct{}

type Model struct {
	ctx     context.Context
	ctrl    *controller.Controller
	keys    KeyMap
	changes chan struct{}

	inputs    [4]textinput.Model
	focus     int
	cursor    int
	confirmID string
	width     int
}

// NewModel wires a model to ctrl. Controller notifications are coalesced
// into one pending stateChangedMsg.
func NewModel(ctx context.Context, ctrl *controller.Controller) Model {
	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		keys:    DefaultKeyMap,
		changes: make(chan struct{}, 1),
	}

	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Prompt = ""
		in.CharLimit = 120
		m.inputs[i] = in
	}

	m.inputs[0].Focus()

	changes := m.changes
	ctrl.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForChanges(m.changes),
		textinput.Blink,
		m.run(m.ctrl.Start),
	)
}

// listenForChanges blocks until the controller reports a change.
func listenForChanges(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-changes
		if !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// run performs a blocking controller call off the update loop. The
// result reaches the model through the change channel.
func (m Model) run(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.syncFromState()
		return m, listenForChanges(m.changes)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// cursor blink and friends
	if m.focus < listSlot {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.confirmID != "" {
		return m.handleConfirmKeys(msg)
	}

	state := m.ctrl.State()

	switch {
	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focus + 1) % (listSlot + 1))
		return m, nil

	case key.Matches(msg, m.keys.PrevField):
		m.setFocus((m.focus + listSlot) % (listSlot + 1))
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if state.Editing() {
			m.ctrl.CancelEdit()
			m.syncFromState()
		}
		return m, nil
	}

	if m.focus == listSlot {
		return m.handleListKeys(msg, state)
	}

	if key.Matches(msg, m.keys.Submit) {
		// busy is claimed here, before the command goroutine starts
		if run := m.ctrl.BeginSubmit(); run != nil {
			return m, m.run(run)
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	if after := m.inputs[m.focus].Value(); after != before {
		m.ctrl.SetField(fieldOrder[m.focus], after)
	}

	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg, state controller.State) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.QuitList):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(state.Records)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Refresh):
		if !state.Busy {
			return m, m.run(m.ctrl.Refresh)
		}

	case key.Matches(msg, m.keys.Edit):
		if m.cursor < len(state.Records) {
			m.ctrl.BeginEdit(state.Records[m.cursor])
			m.syncFromState()
			m.setFocus(0)
		}

	case key.Matches(msg, m.keys.Delete):
		if !state.Busy && m.cursor < len(state.Records) {
			m.confirmID = state.Records[m.cursor].ID
		}
	}

	return m, nil
}

// handleConfirmKeys answers the delete prompt. Every other key is
// swallowed while it is open.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.confirmID
		m.confirmID = ""

		// the person already answered the prompt
		if run := m.ctrl.BeginRemove(id, func(string) bool { return true }); run != nil {
			return m, m.run(run)
		}
		return m, nil

	case key.Matches(msg, m.keys.Deny):
		m.confirmID = ""
	}

	return m, nil
}

func (m *Model) setFocus(slot int) {
	m.focus = slot

	for i := range m.inputs {
		if i == slot {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// syncFromState copies the controller draft into the inputs and keeps the
// list cursor in range.
func (m *Model) syncFromState() {
	state := m.ctrl.State()

	for i, f := range fieldOrder {
		if v := state.Draft.Get(f); m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
		}
	}

	if m.cursor >= len(state.Records) {
		m.cursor = max(len(state.Records)-1, 0)
	}
}

func (m Model) View() string {
	state := m.ctrl.State()

	var b strings.Builder

	b.WriteString(headerStyle.Render("Users"))
	b.WriteString("\n")

	switch state.StatusKind {
	case controller.StatusSuccess:
		b.WriteString(successStyle.Render(state.Status))
	case controller.StatusError:
		b.WriteString(errorStyle.Render(state.Status))
	}
	b.WriteString("\n")

	b.WriteString(m.viewForm(state))
	b.WriteString("\n")
	b.WriteString(m.viewList(state))
	b.WriteString("\n")

	if m.confirmID != "" {
		b.WriteString(confirmStyle.Render(controller.DeletePrompt + " (y/n)"))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(m.helpLine(state)))

	return b.String()
}

func (m Model) viewForm(state controller.State) string {
	var b strings.Builder

	title := "Add New User"
	if state.Editing() {
		title = "Update User"
	}
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")

	for i := range m.inputs {
		b.WriteString(labelStyle.Render(placeholders[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	label := "Create User"
	if state.Editing() {
		label = "Update User"
	}

	if state.Busy {
		b.WriteString(buttonBusyStyle.Render("Processing..."))
	} else {
		b.WriteString(buttonStyle.Render(label))
	}

	if state.Editing() {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("Cancel (esc)"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewList(state controller.State) string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Users List (%d)", len(state.Records))))
	b.WriteString("\n")

	switch {
	case state.Busy:
		b.WriteString("Loading...\n")

	case len(state.Records) == 0:
		b.WriteString(dimStyle.Render("No users found. Create your first user!"))
		b.WriteString("\n")

	default:
		for i, u := range state.Records {
			style := cardStyle
			if m.focus == listSlot && i == m.cursor {
				style = selectedCardStyle
			}

			card := fmt.Sprintf("%s\nEmail: %s\nAge: %d  City: %s\nCreated: %s",
				u.Name, u.Email, u.Age, u.City, u.CreatedAt.Local().Format("2006-01-02"))
			b.WriteString(style.Render(card))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) helpLine(state controller.State) string {
	if m.focus == listSlot {
		return "↑/↓ select • e edit • d delete • r refresh • tab form • q quit"
	}

	help := "tab next field • enter submit"
	if state.Editing() {
		help += " • esc cancel"
	}
	return help + " • ctrl+c quit"
}
