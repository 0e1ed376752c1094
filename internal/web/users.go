package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/pregled/internal/form"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/paging"
	"github.com/erazemk/pregled/internal/store"
	"github.com/erazemk/pregled/internal/table"
)

// UsersData is the data for the users page and its dialog.
type UsersData struct {
	ListData
	Modal      form.Modal
	CanEdit    bool
	FormAction string
	CloseURL   string
	Genders    []string
	Roles      []string
}

// CreateURL opens the empty create dialog.
func (d *UsersData) CreateURL() string {
	return d.Query.ModalURL(form.Creating, "")
}

// EditURL opens the edit dialog for id.
func (d *UsersData) EditURL(id model.ID) string {
	return d.Query.ModalURL(form.Editing, id)
}

// UsersPage handles GET /users. The dialog state comes from the query
// string; operators who cannot edit only ever get the read-only view.
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := parseListQuery("/users", v)
	modal := form.FromQuery(v, s.App.User)

	if !GetWebClaims(r.Context()).CanEdit() {
		switch modal.State {
		case form.Creating:
			modal.Close()
		case form.Editing, form.ConfirmingDelete:
			modal.OpenView(*modal.Subject)
		}
	}

	s.renderUsers(w, r, http.StatusOK, q, modal)
}

// UserCreateSubmit handles POST /users.
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q := parseListQuery("/users", r.PostForm)

	var modal form.Modal
	modal.OpenCreate()
	draft := form.ParseDraft(r.PostForm)
	if err := modal.Submit(r.Context(), s.App, draft); err != nil {
		s.failUserForm(w, r, q, modal, err)
		return
	}

	setFlash(w, "success", "Created "+draft.FirstName+" "+draft.LastName+".")
	http.Redirect(w, r, q.URL(), http.StatusSeeOther)
}

// UserUpdateSubmit handles POST /users/{id}.
func (s *Server) UserUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q := parseListQuery("/users", r.PostForm)

	u, ok := s.App.User(model.ID(r.PathValue("id")))
	if !ok {
		s.userGone(w, r, q)
		return
	}

	var modal form.Modal
	modal.OpenEdit(u)
	draft := form.ParseDraft(r.PostForm)
	if err := modal.Submit(r.Context(), s.App, draft); err != nil {
		s.failUserForm(w, r, q, modal, err)
		return
	}

	setFlash(w, "success", "Saved "+draft.FirstName+" "+draft.LastName+".")
	http.Redirect(w, r, q.URL(), http.StatusSeeOther)
}

// UserDeleteSubmit handles POST /users/{id}/delete. Only confirm=yes
// deletes; anything else closes the dialog without touching the store.
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q := parseListQuery("/users", r.PostForm)

	u, ok := s.App.User(model.ID(r.PathValue("id")))
	if !ok {
		s.userGone(w, r, q)
		return
	}

	confirmed := r.PostForm.Get("confirm") == "yes"
	var modal form.Modal
	modal.OpenDelete(u)
	if err := modal.ConfirmDelete(r.Context(), s.App, confirmed); err != nil {
		s.failUserForm(w, r, q, modal, err)
		return
	}

	if confirmed {
		setFlash(w, "success", "Deleted "+u.FullName()+".")
	}
	http.Redirect(w, r, q.URL(), http.StatusSeeOther)
}

// failUserForm re-renders the page with the dialog still open so nothing
// typed is lost.
func (s *Server) failUserForm(w http.ResponseWriter, r *http.Request, q listQuery, modal form.Modal, err error) {
	status := http.StatusBadGateway
	var svcErr *store.ServiceError
	switch {
	case errors.Is(err, form.ErrInvalidDraft):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrUserNotFound):
		status = http.StatusNotFound
		modal.Message = "This user no longer exists."
	case errors.As(err, &svcErr):
		if svcErr.Status >= 400 && svcErr.Status < 500 {
			status = svcErr.Status
		}
		modal.Message = svcErr.Error()
	default:
		slog.Error("user mutation failed", "state", modal.State.String(), "error", err)
		modal.Message = "The user store is unavailable. Try again."
	}
	s.renderUsers(w, r, status, q, modal)
}

func (s *Server) userGone(w http.ResponseWriter, r *http.Request, q listQuery) {
	data := s.usersData(w, r, q, form.Modal{})
	data.Error = "This user no longer exists."
	s.Templates.Render(w, http.StatusNotFound, "users.html", data)
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, status int, q listQuery, modal form.Modal) {
	s.Templates.Render(w, status, "users.html", s.usersData(w, r, q, modal))
}

func (s *Server) usersData(w http.ResponseWriter, r *http.Request, q listQuery, modal form.Modal) *UsersData {
	canEdit := GetWebClaims(r.Context()).CanEdit()
	cols := userColumns()

	rows := paging.Filter(s.App.Users(), q.Search, func(u model.User) string { return u.FirstName })
	rows = table.SortRows(rows, cols, q.Sort)
	page := paging.NewPage(len(rows), q.Page, s.UserPageSize)
	q.Page = page.Number

	actions := &table.Actions[model.User]{
		View: func(u model.User) string { return q.ModalURL(form.Viewing, u.ID) },
	}
	if canEdit {
		actions.Edit = func(u model.User) string { return q.ModalURL(form.Editing, u.ID) }
		actions.Delete = func(u model.User) string { return q.ModalURL(form.ConfirmingDelete, u.ID) }
	}

	status := s.App.UserStatus()
	empty := "No users match your search."
	if status.Count == 0 {
		empty = "No data available."
	}

	return &UsersData{
		ListData: ListData{
			PageData: s.page(w, r, "Users", TabUsers),
			Query:    q,
			Page:     page,
			Status:   status,
			Table: table.Render(paging.Paginate(rows, page.Number, page.Size), cols, table.Options[model.User]{
				EmptyMessage: empty,
				Actions:      actions,
				RowHref:      func(u model.User) string { return q.ModalURL(form.Viewing, u.ID) },
				Sort:         q.Sort,
				SortURL:      q.SortURL,
			}),
		},
		Modal:      modal,
		CanEdit:    canEdit,
		FormAction: formAction(modal),
		CloseURL:   q.URL(),
		Genders:    model.Genders,
		Roles:      model.Roles,
	}
}

func formAction(m form.Modal) string {
	switch m.State {
	case form.Creating:
		return "/users"
	case form.Editing:
		return "/users/" + url.PathEscape(m.EditingID.String())
	case form.ConfirmingDelete:
		return "/users/" + url.PathEscape(m.EditingID.String()) + "/delete"
	default:
		return ""
	}
}
