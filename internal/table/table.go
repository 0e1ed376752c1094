// Package table turns a row collection and an ordered list of column
// descriptors into a renderable view.
package table

import (
	"html/template"
)

// ActionsKey is the reserved key of the row actions column.
const ActionsKey = "actions"

// DefaultEmptyMessage is shown when there are no rows.
const DefaultEmptyMessage = "No results."

// Column describes one table column for rows of type T. Columns are rendered
// in slice order.
type Column[T any] struct {
	Key    string
	Header string

	// HeaderFunc, when set, replaces the static Header label.
	HeaderFunc func() template.HTML

	// Value reads the column's field from a row. It is used for plain cells
	// when Render is nil.
	Value func(T) string

	// Render produces the cell content. It must escape row data.
	Render func(T) template.HTML

	// Compare orders two rows by this column. Columns without Compare are
	// not sortable.
	Compare func(a, b T) int
}

// Sortable reports whether the column can be sorted.
func (c Column[T]) Sortable() bool { return c.Compare != nil }

// Actions builds the links of an injected actions column. A nil builder
// omits that action.
type Actions[T any] struct {
	View   func(T) string
	Edit   func(T) string
	Delete func(T) string
}

func (a *Actions[T]) enabled() bool {
	return a != nil && (a.View != nil || a.Edit != nil || a.Delete != nil)
}

// Options controls rendering.
type Options[T any] struct {
	EmptyMessage string
	Actions      *Actions[T]

	// RowHref returns the link a row click navigates to.
	RowHref func(T) string

	// Sort is the active sort. SortURL builds header links for a sort.
	Sort    Sort
	SortURL func(Sort) string
}

// View is the rendered table handed to templates.
type View struct {
	Empty        bool
	EmptyMessage string
	Headers      []Header
	Rows         []Row
}

// Header is one header cell.
type Header struct {
	Key      string
	Label    template.HTML
	Sortable bool
	Active   bool
	Desc     bool
	Href     string
}

// Row is one body row.
type Row struct {
	Href  string
	Cells []Cell
}

// Cell is one body cell. Action cells hold buttons whose clicks must not
// reach the row.
type Cell struct {
	Key     string
	Content template.HTML
	Action  bool
}

// Render builds the view for rows. When opts.Actions is set and no column
// uses ActionsKey, an actions column is appended.
func Render[T any](rows []T, cols []Column[T], opts Options[T]) View {
	msg := opts.EmptyMessage
	if msg == "" {
		msg = DefaultEmptyMessage
	}
	if len(rows) == 0 {
		return View{Empty: true, EmptyMessage: msg}
	}

	cols = WithActions(cols, opts.Actions)

	v := View{
		EmptyMessage: msg,
		Headers:      make([]Header, len(cols)),
		Rows:         make([]Row, len(rows)),
	}

	for i, c := range cols {
		h := Header{Key: c.Key, Label: template.HTML(template.HTMLEscapeString(c.Header))}
		if c.HeaderFunc != nil {
			h.Label = c.HeaderFunc()
		}
		if c.Sortable() {
			h.Sortable = true
			h.Active = opts.Sort.Key == c.Key
			h.Desc = h.Active && opts.Sort.Desc
			if opts.SortURL != nil {
				h.Href = opts.SortURL(opts.Sort.Toggle(c.Key))
			}
		}
		v.Headers[i] = h
	}

	for i, r := range rows {
		row := Row{Cells: make([]Cell, len(cols))}
		if opts.RowHref != nil {
			row.Href = opts.RowHref(r)
		}
		for j, c := range cols {
			row.Cells[j] = Cell{
				Key:     c.Key,
				Content: cellContent(c, r),
				Action:  c.Key == ActionsKey,
			}
		}
		v.Rows[i] = row
	}
	return v
}

// WithActions returns cols with an actions column appended, unless actions
// is empty or the caller already supplied a column with ActionsKey.
func WithActions[T any](cols []Column[T], actions *Actions[T]) []Column[T] {
	if !actions.enabled() {
		return cols
	}
	for _, c := range cols {
		if c.Key == ActionsKey {
			return cols
		}
	}
	out := make([]Column[T], len(cols), len(cols)+1)
	copy(out, cols)
	return append(out, Column[T]{
		Key:    ActionsKey,
		Render: actions.render,
	})
}

func cellContent[T any](c Column[T], row T) template.HTML {
	switch {
	case c.Render != nil:
		return c.Render(row)
	case c.Value != nil:
		return template.HTML(template.HTMLEscapeString(c.Value(row)))
	default:
		return ""
	}
}

func (a *Actions[T]) render(row T) template.HTML {
	var html template.HTML
	if a.View != nil {
		html += Button(a.View(row), "View", "view")
	}
	if a.Edit != nil {
		html += Button(a.Edit(row), "Edit", "edit")
	}
	if a.Delete != nil {
		html += Button(a.Delete(row), "Delete", "delete")
	}
	return `<div class="actions">` + html + `</div>`
}

// Button renders an action link. The data-action attribute marks it for the
// click handler that keeps action clicks away from the row.
func Button(href, label, kind string) template.HTML {
	return template.HTML(`<a class="btn btn-` + template.HTMLEscapeString(kind) +
		`" data-action="` + template.HTMLEscapeString(kind) +
		`" href="` + template.HTMLEscapeString(href) + `">` +
		template.HTMLEscapeString(label) + `</a>`)
}

// Text escapes s as cell content.
func Text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

// Span wraps escaped text in a span with the given class.
func Span(class, s string) template.HTML {
	return template.HTML(`<span class="` + template.HTMLEscapeString(class) + `">` +
		template.HTMLEscapeString(s) + `</span>`)
}
