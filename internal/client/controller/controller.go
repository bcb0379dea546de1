// Package controller holds the client's view state and turns every user
// action into API calls plus a status message. Methods never return errors;
// each failure ends up in State.Status.
package controller

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/usershub/internal/client/api"
	"github.com/geocoder89/usershub/internal/clock"
	"github.com/geocoder89/usershub/internal/domain/user"
)

const (
	// StatusTTL is how long a status message stays visible.
	StatusTTL = 3 * time.Second

	DeletePrompt = "Are you sure you want to delete this user?"

	msgCreated = "User created successfully!"
	msgUpdated = "User updated successfully!"
	msgDeleted = "User deleted successfully!"

	errFetching = "Error fetching users: "
	errCreating = "Error creating user: "
	errUpdating = "Error updating user: "
	errDeleting = "Error deleting user: "
)

// API is what the controller needs from the server. *api.Client
// satisfies it.
type API interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, p api.Payload) (user.User, error)
	Update(ctx context.Context, id string, p api.Payload) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the person a yes/no question.
type Confirmer func(prompt string) bool

type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldAge
	FieldCity
)

// Draft is the form content exactly as typed.
type Draft struct {
	Name  string
	Email string
	Age   string
	City  string
}

func (d Draft) Get(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldAge:
		return d.Age
	case FieldCity:
		return d.City
	}
	return ""
}

func (d *Draft) set(f Field, v string) {
	switch f {
	case FieldName:
		d.Name = v
	case FieldEmail:
		d.Email = v
	case FieldAge:
		d.Age = v
	case FieldCity:
		d.City = v
	}
}

type State struct {
	Records    []user.User
	Draft      Draft
	EditingID  string
	Busy       bool
	Status     string
	StatusKind StatusKind
}

// Editing reports whether the form targets an existing record.
func (s State) Editing() bool { return s.EditingID != "" }

type Controller struct {
	api   API
	clock clock.Clock

	mu          sync.Mutex
	state       State
	onChange    func()
	statusTimer *clock.Timer
	statusGen   uint64
	inflight    int
}

func New(a API, c clock.Clock) *Controller {
	if c == nil {
		c = clock.Real()
	}

	return &Controller{
		api:   a,
		clock: c,
		state: State{Records: []user.User{}},
	}
}

// OnChange registers fn to run after every state change, including the
// timed status clear. fn runs without the controller lock held.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Records = append([]user.User(nil), c.state.Records...)

	return s
}

func (c *Controller) Start(ctx context.Context) {
	c.Refresh(ctx)
}

func (c *Controller) Refresh(ctx context.Context) {
	c.update(func(*State) { c.beginLocked() })

	records, err := c.api.List(ctx)

	c.update(func(s *State) {
		c.endLocked()

		if err != nil {
			c.setStatusLocked(errFetching + api.Message(err))
			return
		}

		if records == nil {
			records = []user.User{}
		}
		s.Records = records
	})
}

// Submit creates a record from the draft, or updates the record being
// edited. It does nothing while another call is in flight.
func (c *Controller) Submit(ctx context.Context) {
	if run := c.BeginSubmit(); run != nil {
		run(ctx)
	}
}

// BeginSubmit checks the draft and marks the controller busy before
// returning the call that sends it. It returns nil when the draft is
// rejected or another call is in flight.
func (c *Controller) BeginSubmit() func(ctx context.Context) {
	var (
		editingID string
		payload   api.Payload
		ok        bool
	)

	c.update(func(s *State) {
		if c.inflight > 0 {
			return
		}

		editingID = s.EditingID

		var problem string
		payload, problem = checkDraft(s.Draft)

		if problem != "" {
			c.setStatusLocked(failurePrefix(editingID) + problem)
			return
		}

		ok = true
		c.beginLocked()
	})

	if !ok {
		return nil
	}

	return func(ctx context.Context) {
		var err error

		if editingID != "" {
			_, err = c.api.Update(ctx, editingID, payload)
		} else {
			_, err = c.api.Create(ctx, payload)
		}

		c.update(func(s *State) {
			c.endLocked()

			if err != nil {
				c.setStatusLocked(failurePrefix(editingID) + api.Message(err))
				return
			}

			if editingID != "" {
				c.setStatusLocked(msgUpdated)
			} else {
				c.setStatusLocked(msgCreated)
			}

			s.Draft = Draft{}
			s.EditingID = ""
		})

		if err == nil {
			c.Refresh(ctx)
		}
	}
}

// BeginEdit loads record into the form.
func (c *Controller) BeginEdit(record user.User) {
	c.update(func(s *State) {
		s.Draft = Draft{
			Name:  record.Name,
			Email: record.Email,
			Age:   strconv.Itoa(record.Age),
			City:  record.City,
		}
		s.EditingID = record.ID
	})
}

func (c *Controller) CancelEdit() {
	c.update(func(s *State) {
		s.Draft = Draft{}
		s.EditingID = ""
	})
}

func (c *Controller) SetField(f Field, value string) {
	c.update(func(s *State) { s.Draft.set(f, value) })
}

// Remove deletes id once confirm agrees. A nil confirm counts as no.
func (c *Controller) Remove(ctx context.Context, id string, confirm Confirmer) {
	if run := c.BeginRemove(id, confirm); run != nil {
		run(ctx)
	}
}

// BeginRemove asks confirm, then marks the controller busy before
// returning the call that deletes id. It returns nil when the person
// declines or another call is in flight.
func (c *Controller) BeginRemove(id string, confirm Confirmer) func(ctx context.Context) {
	if confirm == nil || !confirm(DeletePrompt) {
		return nil
	}

	var ok bool

	c.update(func(*State) {
		if c.inflight > 0 {
			return
		}
		ok = true
		c.beginLocked()
	})

	if !ok {
		return nil
	}

	return func(ctx context.Context) {
		err := c.api.Delete(ctx, id)

		c.update(func(s *State) {
			c.endLocked()

			if err != nil {
				c.setStatusLocked(errDeleting + api.Message(err))
				return
			}

			c.setStatusLocked(msgDeleted)

			// a deleted record can't stay in the form
			if s.EditingID == id {
				s.Draft = Draft{}
				s.EditingID = ""
			}
		})

		if err == nil {
			c.Refresh(ctx)
		}
	}
}

// beginLocked and endLocked count calls in flight. Busy stays set until
// the last one finishes. Caller holds mu.
func (c *Controller) beginLocked() {
	c.inflight++
	c.state.Busy = true
}

func (c *Controller) endLocked() {
	c.inflight--
	c.state.Busy = c.inflight > 0
}

// update applies fn under the lock and notifies afterwards.
func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// setStatusLocked shows msg and restarts the clear timer. Caller holds mu.
func (c *Controller) setStatusLocked(msg string) {
	c.state.Status = msg
	c.state.StatusKind = kindOf(msg)

	c.statusTimer.Stop()
	c.statusGen++
	gen := c.statusGen

	c.statusTimer = c.clock.AfterFunc(StatusTTL, func() {
		c.clearStatus(gen)
	})
}

func (c *Controller) clearStatus(gen uint64) {
	c.mu.Lock()

	// a newer status owns the screen
	if gen != c.statusGen {
		c.mu.Unlock()
		return
	}

	c.state.Status = ""
	c.state.StatusKind = StatusNone
	c.statusTimer = nil
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func kindOf(msg string) StatusKind {
	switch {
	case msg == "":
		return StatusNone
	case strings.Contains(msg, "Error"):
		return StatusError
	default:
		return StatusSuccess
	}
}

func failurePrefix(editingID string) string {
	if editingID != "" {
		return errUpdating
	}
	return errCreating
}

// checkDraft applies the form constraints: every field present and age a
// whole number in 1..120.
func checkDraft(d Draft) (api.Payload, string) {
	name := strings.TrimSpace(d.Name)
	email := strings.TrimSpace(d.Email)
	ageText := strings.TrimSpace(d.Age)
	city := strings.TrimSpace(d.City)

	switch {
	case name == "":
		return api.Payload{}, "name is required"
	case email == "":
		return api.Payload{}, "email is required"
	case ageText == "":
		return api.Payload{}, "age is required"
	case city == "":
		return api.Payload{}, "city is required"
	}

	age, err := strconv.Atoi(ageText)

	if err != nil || age < 1 || age > 120 {
		return api.Payload{}, "age must be a whole number between 1 and 120"
	}

	return api.Payload{Name: name, Email: email, Age: age, City: city}, ""
}
