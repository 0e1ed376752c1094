// Package form implements the create/edit/view/delete dialog for users.
//
// The dialog is a small state machine. Its state travels in the query string
// (?modal=edit&id=...), so every page render can rebuild it.
package form

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/pregled/internal/model"
)

// ErrInvalidDraft is returned by Submit when required fields are missing or
// malformed. No store call is made in that case.
var ErrInvalidDraft = errors.New("invalid user form")

// State of the dialog.
type State int

const (
	Closed State = iota
	Creating
	Editing
	Viewing
	ConfirmingDelete
)

// String returns the query-string name of the state.
func (s State) String() string {
	switch s {
	case Creating:
		return "create"
	case Editing:
		return "edit"
	case Viewing:
		return "view"
	case ConfirmingDelete:
		return "delete"
	default:
		return ""
	}
}

// Draft is the editable, string-typed copy of a user.
type Draft struct {
	FirstName   string
	LastName    string
	Age         string
	Gender      string
	Email       string
	Phone       string
	DateOfBirth string
	Role        string
}

// Field names as used by the HTML form and in FieldErrors.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldAge         = "age"
	FieldGender      = "gender"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldDateOfBirth = "dateOfBirth"
	FieldRole        = "role"
)

// FieldErrors maps a field name to its problem.
type FieldErrors map[string]string

// DraftFrom copies u into a draft, converting numbers to strings.
func DraftFrom(u model.User) Draft {
	age := ""
	if u.Age > 0 {
		age = strconv.Itoa(u.Age)
	}
	return Draft{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Age:         age,
		Gender:      u.Gender,
		Email:       u.Email,
		Phone:       u.Phone,
		DateOfBirth: u.DateOfBirth,
		Role:        u.Role,
	}
}

// ParseDraft reads a draft from submitted form values.
func ParseDraft(v url.Values) Draft {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return Draft{
		FirstName:   get(FieldFirstName),
		LastName:    get(FieldLastName),
		Age:         get(FieldAge),
		Gender:      get(FieldGender),
		Email:       get(FieldEmail),
		Phone:       get(FieldPhone),
		DateOfBirth: get(FieldDateOfBirth),
		Role:        strings.ToLower(get(FieldRole)),
	}
}

// Validate checks that every field is present and well formed.
func (d Draft) Validate() FieldErrors {
	errs := FieldErrors{}
	required := []struct{ name, value string }{
		{FieldFirstName, d.FirstName},
		{FieldLastName, d.LastName},
		{FieldAge, d.Age},
		{FieldGender, d.Gender},
		{FieldEmail, d.Email},
		{FieldPhone, d.Phone},
		{FieldDateOfBirth, d.DateOfBirth},
		{FieldRole, d.Role},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs[f.name] = "This field is required."
		}
	}

	if _, ok := errs[FieldAge]; !ok {
		if n, err := strconv.Atoi(d.Age); err != nil || n < 1 {
			errs[FieldAge] = "Age must be a whole number of at least 1."
		}
	}
	if _, ok := errs[FieldEmail]; !ok {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			errs[FieldEmail] = "Enter a valid email address."
		}
	}
	if _, ok := errs[FieldDateOfBirth]; !ok {
		if _, err := time.Parse(model.DateLayout, d.DateOfBirth); err != nil {
			errs[FieldDateOfBirth] = "Use the YYYY-MM-DD format."
		}
	}
	if _, ok := errs[FieldRole]; !ok && !model.ValidRole(d.Role) {
		errs[FieldRole] = "Choose admin, manager or user."
	}
	return errs
}

// User converts a valid draft into a user with the given id.
func (d Draft) User(id model.ID) (model.User, error) {
	age, err := strconv.Atoi(d.Age)
	if err != nil {
		return model.User{}, fmt.Errorf("parsing age: %w", err)
	}
	return model.User{
		ID:          id,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Age:         age,
		Gender:      d.Gender,
		Email:       d.Email,
		Phone:       d.Phone,
		DateOfBirth: d.DateOfBirth,
		Role:        d.Role,
	}, nil
}

// Submitter persists users created or edited through the dialog.
type Submitter interface {
	AddUser(ctx context.Context, u model.User) (model.User, error)
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
}

// Deleter removes users confirmed in the dialog.
type Deleter interface {
	DeleteUser(ctx context.Context, id model.ID) error
}

// Modal is the dialog state.
type Modal struct {
	State     State
	EditingID model.ID
	Draft     Draft
	Errors    FieldErrors

	// Subject is the user being viewed, edited or deleted.
	Subject *model.User

	// Message is a form-level error, such as a rejected request.
	Message string
}

// Open reports whether the dialog is visible.
func (m *Modal) Open() bool { return m.State != Closed }

// IsEdit reports whether the dialog edits an existing user.
func (m *Modal) IsEdit() bool { return m.State == Editing }

// OpenCreate shows an empty create form.
func (m *Modal) OpenCreate() {
	*m = Modal{State: Creating, Errors: FieldErrors{}}
}

// OpenEdit shows the edit form pre-filled from u.
func (m *Modal) OpenEdit(u model.User) {
	*m = Modal{State: Editing, EditingID: u.ID, Draft: DraftFrom(u), Errors: FieldErrors{}, Subject: &u}
}

// OpenView shows u read-only.
func (m *Modal) OpenView(u model.User) {
	*m = Modal{State: Viewing, Subject: &u}
}

// OpenDelete asks for confirmation before deleting u.
func (m *Modal) OpenDelete(u model.User) {
	*m = Modal{State: ConfirmingDelete, EditingID: u.ID, Subject: &u}
}

// Close hides the dialog and discards the draft.
func (m *Modal) Close() {
	*m = Modal{}
}

// Submit validates d and creates or updates the user. The dialog closes on
// success. On any failure it stays open with the draft intact so the user can
// retry without re-entering data.
func (m *Modal) Submit(ctx context.Context, s Submitter, d Draft) error {
	if m.State != Creating && m.State != Editing {
		return fmt.Errorf("submit in state %q", m.State)
	}
	m.Draft = d
	m.Message = ""
	m.Errors = d.Validate()
	if len(m.Errors) > 0 {
		return ErrInvalidDraft
	}

	u, err := d.User(m.EditingID)
	if err != nil {
		m.Errors[FieldAge] = "Age must be a whole number of at least 1."
		return ErrInvalidDraft
	}

	if m.State == Editing {
		_, err = s.UpdateUser(ctx, u)
	} else {
		_, err = s.AddUser(ctx, u)
	}
	if err != nil {
		m.Message = err.Error()
		return err
	}

	m.Close()
	return nil
}

// ConfirmDelete deletes the subject when confirmed. Declining closes the
// dialog without touching the store.
func (m *Modal) ConfirmDelete(ctx context.Context, d Deleter, confirmed bool) error {
	if m.State != ConfirmingDelete {
		return fmt.Errorf("delete in state %q", m.State)
	}
	if !confirmed {
		m.Close()
		return nil
	}
	if err := d.DeleteUser(ctx, m.EditingID); err != nil {
		m.Message = err.Error()
		return err
	}
	m.Close()
	return nil
}

// Lookup finds a user by id.
type Lookup func(id model.ID) (model.User, bool)

// FromQuery rebuilds the dialog from query values. Unknown states and ids
// that no longer exist yield a closed dialog.
func FromQuery(v url.Values, lookup Lookup) Modal {
	var m Modal
	state := v.Get("modal")
	if state == Creating.String() {
		m.OpenCreate()
		return m
	}

	id := model.ID(strings.TrimSpace(v.Get("id")))
	if id == "" {
		return m
	}
	u, ok := lookup(id)
	if !ok {
		return m
	}
	switch state {
	case Editing.String():
		m.OpenEdit(u)
	case Viewing.String():
		m.OpenView(u)
	case ConfirmingDelete.String():
		m.OpenDelete(u)
	}
	return m
}
