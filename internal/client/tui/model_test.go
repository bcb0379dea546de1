package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/geocoder89/usershub/internal/client/api"
	"github.com/geocoder89/usershub/internal/client/controller"
	"github.com/geocoder89/usershub/internal/clock"
	"github.com/geocoder89/usershub/internal/domain/user"
)

// memoryAPI is a minimal in-process server stand-in.
type memoryAPI struct {
	mu      sync.Mutex
	records []user.User
	deletes int
}

func (a *memoryAPI) List(context.Context) ([]user.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]user.User{}, a.records...), nil
}

func (a *memoryAPI) Create(_ context.Context, p api.Payload) (user.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := user.User{ID: p.Name, Name: p.Name, Email: p.Email, Age: p.Age, City: p.City, CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	a.records = append(a.records, u)
	return u, nil
}

func (a *memoryAPI) Update(_ context.Context, id string, p api.Payload) (user.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.records {
		if a.records[i].ID == id {
			a.records[i].Name, a.records[i].Email, a.records[i].Age, a.records[i].City = p.Name, p.Email, p.Age, p.City
			return a.records[i], nil
		}
	}
	return user.User{}, &api.ResponseError{Status: 404, Message: "User not found"}
}

func (a *memoryAPI) Delete(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deletes++
	for i := range a.records {
		if a.records[i].ID == id {
			a.records = append(a.records[:i], a.records[i+1:]...)
			return nil
		}
	}
	return &api.ResponseError{Status: 404, Message: "User not found"}
}

func testModel(t *testing.T, records ...user.User) (Model, *memoryAPI) {
	t.Helper()

	backend := &memoryAPI{records: records}
	ctrl := controller.New(backend, clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctrl.Start(context.Background())

	m := NewModel(context.Background(), ctrl)
	m.syncFromState()

	return m, backend
}

// press feeds keys through Update. Commands only run for keys that
// dispatch controller work; text input commands are cursor blinks.
func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()

	for _, msg := range msgs {
		updated, cmd := m.Update(msg)
		m = updated.(Model)

		if cmd != nil && dispatches(msg) {
			cmd()
		}
		m.syncFromState()
	}

	return m
}

func dispatches(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", "y", "r":
		return true
	}
	return false
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestEmptyListView(t *testing.T) {
	m, _ := testModel(t)

	view := m.View()
	for _, want := range []string{"Add New User", "Create User", "Users List (0)", "No users found. Create your first user!"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestCreateThroughForm(t *testing.T) {
	m, backend := testModel(t)

	m = press(t, m,
		typeText("Ana"), tab,
		typeText("ana@x.com"), tab,
		typeText("30"), tab,
		typeText("Rome"), enter,
	)

	if len(backend.records) != 1 || backend.records[0].Age != 30 {
		t.Fatalf("expected one created record, got %+v", backend.records)
	}

	view := m.View()
	if !strings.Contains(view, "User created successfully!") {
		t.Fatalf("expected success status:\n%s", view)
	}
	if !strings.Contains(view, "Users List (1)") || !strings.Contains(view, "ana@x.com") {
		t.Fatalf("expected record in list:\n%s", view)
	}

	// form is cleared after a successful submit
	for i := range m.inputs {
		if m.inputs[i].Value() != "" {
			t.Fatalf("input %d not cleared: %q", i, m.inputs[i].Value())
		}
	}
}

func TestSecondEnterWhileSubmittingIsIgnored(t *testing.T) {
	m, backend := testModel(t)

	m = press(t, m,
		typeText("Ana"), tab,
		typeText("ana@x.com"), tab,
		typeText("30"), tab,
		typeText("Rome"),
	)

	updated, first := m.Update(enter)
	m = updated.(Model)
	if first == nil {
		t.Fatalf("expected the first enter to dispatch a submit")
	}
	if !strings.Contains(m.View(), "Processing...") {
		t.Fatalf("expected busy form after the first enter:\n%s", m.View())
	}

	updated, second := m.Update(enter)
	m = updated.(Model)
	if second != nil {
		t.Fatalf("second enter must not dispatch while the first is pending")
	}

	first()
	m.syncFromState()

	if len(backend.records) != 1 {
		t.Fatalf("expected exactly one created record, got %d", len(backend.records))
	}
	if strings.Contains(m.View(), "Processing...") {
		t.Fatalf("busy flag left set after the submit finished")
	}
}

func TestDeleteWhilePendingIsIgnored(t *testing.T) {
	m, backend := testModel(t,
		user.User{ID: "1", Name: "Ana", Email: "ana@x.com", Age: 30, City: "Rome"},
		user.User{ID: "2", Name: "Bo", Email: "bo@x.com", Age: 41, City: "Oslo"},
	)

	m = press(t, m, tab, tab, tab, tab, typeText("d"))

	updated, first := m.Update(typeText("y"))
	m = updated.(Model)
	if first == nil {
		t.Fatalf("expected confirm to dispatch a delete")
	}

	m = press(t, m, down, typeText("d"))
	if strings.Contains(m.View(), controller.DeletePrompt) {
		t.Fatalf("no new delete prompt while a delete is pending")
	}

	first()

	if backend.deletes != 1 || len(backend.records) != 1 {
		t.Fatalf("expected one delete, deletes=%d records=%d", backend.deletes, len(backend.records))
	}
}

func TestEditFromList(t *testing.T) {
	m, backend := testModel(t,
		user.User{ID: "1", Name: "Ana", Email: "ana@x.com", Age: 30, City: "Rome"},
		user.User{ID: "2", Name: "Bo", Email: "bo@x.com", Age: 40, City: "Oslo"},
	)

	// focus the list: four tabs past the inputs
	m = press(t, m, tab, tab, tab, tab, down, typeText("e"))

	if m.focus != 0 {
		t.Fatalf("edit should move focus to the form, got %d", m.focus)
	}
	if m.inputs[0].Value() != "Bo" || m.inputs[2].Value() != "40" {
		t.Fatalf("draft not loaded into inputs: %q %q", m.inputs[0].Value(), m.inputs[2].Value())
	}
	if !strings.Contains(m.View(), "Update User") {
		t.Fatalf("expected update title")
	}

	m = press(t, m, tab, tab, tea.KeyMsg{Type: tea.KeyBackspace}, typeText("1"), enter)

	if backend.records[1].Age != 41 {
		t.Fatalf("expected age 41, got %d", backend.records[1].Age)
	}
	if !strings.Contains(m.View(), "User updated successfully!") {
		t.Fatalf("expected update status")
	}
}

func TestCancelEditClearsForm(t *testing.T) {
	m, _ := testModel(t, user.User{ID: "1", Name: "Ana", Email: "ana@x.com", Age: 30, City: "Rome"})

	m = press(t, m, tab, tab, tab, tab, typeText("e"), esc)

	if m.ctrl.State().Editing() {
		t.Fatalf("esc should cancel editing")
	}
	if m.inputs[0].Value() != "" {
		t.Fatalf("form should be empty after cancel")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, backend := testModel(t, user.User{ID: "1", Name: "Ana", Email: "ana@x.com", Age: 30, City: "Rome"})

	m = press(t, m, tab, tab, tab, tab, typeText("d"))

	if !strings.Contains(m.View(), controller.DeletePrompt) {
		t.Fatalf("expected confirmation prompt")
	}

	m = press(t, m, typeText("n"))
	if backend.deletes != 0 {
		t.Fatalf("declined delete must not reach the api")
	}

	m = press(t, m, typeText("d"), typeText("y"))
	if backend.deletes != 1 || len(backend.records) != 0 {
		t.Fatalf("expected record deleted, deletes=%d records=%d", backend.deletes, len(backend.records))
	}
	if !strings.Contains(m.View(), "User deleted successfully!") {
		t.Fatalf("expected delete status")
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := testModel(t)

	// q types into the form
	m = press(t, m, typeText("q"))
	if m.inputs[0].Value() != "q" {
		t.Fatalf("q in the form should be text, got %q", m.inputs[0].Value())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("ctrl+c should quit")
	}

	m = press(t, m, esc, tab, tab, tab, tab)
	_, cmd = m.Update(typeText("q"))
	if cmd == nil {
		t.Fatalf("q in the list should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q in the list should quit")
	}
}

func TestStateChangeRelistens(t *testing.T) {
	m, _ := testModel(t)

	m.ctrl.SetField(controller.FieldName, "Zed")

	updated, cmd := m.Update(stateChangedMsg{})
	m = updated.(Model)

	if m.inputs[0].Value() != "Zed" {
		t.Fatalf("input not synced: %q", m.inputs[0].Value())
	}
	if cmd == nil {
		t.Fatalf("expected the model to keep listening for changes")
	}
}
