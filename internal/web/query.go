package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/pregled/internal/form"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/table"
)

// listQuery is the search, sort and page state of a list page. It travels
// in the query string so links and redirects can carry it.
type listQuery struct {
	Path   string
	Search string
	Page   int
	Sort   table.Sort
}

func parseListQuery(path string, v url.Values) listQuery {
	page, err := strconv.Atoi(v.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return listQuery{
		Path:   path,
		Search: strings.TrimSpace(v.Get("q")),
		Page:   page,
		Sort:   table.ParseSort(v),
	}
}

func (q listQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	q.Sort.Apply(v)
	return v
}

func (q listQuery) build(v url.Values) string {
	if len(v) == 0 {
		return q.Path
	}
	return q.Path + "?" + v.Encode()
}

// URL returns the link to the list in its current state.
func (q listQuery) URL() string {
	return q.build(q.values())
}

// PageURL returns the link to page n.
func (q listQuery) PageURL(n int) string {
	q.Page = n
	return q.URL()
}

// SortURL returns the link that applies s, starting again from page one.
func (q listQuery) SortURL(s table.Sort) string {
	q.Sort = s
	q.Page = 1
	return q.URL()
}

// ModalURL returns the link that opens the dialog in state for id.
func (q listQuery) ModalURL(state form.State, id model.ID) string {
	v := q.values()
	v.Set("modal", state.String())
	if id != "" {
		v.Set("id", id.String())
	}
	return q.build(v)
}

// Hidden returns the list state as form fields, so a POST can redirect back
// to the same view.
func (q listQuery) Hidden() map[string]string {
	out := make(map[string]string)
	for k, vs := range q.values() {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
