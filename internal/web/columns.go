package web

import (
	"html/template"
	"net/url"
	"strconv"

	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/table"
)

func productURL(id model.ID) string {
	return "/products/" + url.PathEscape(id.String())
}

func thumbnailURL(id model.ID) string {
	return productURL(id) + "/thumbnail"
}

func productColumns() []table.Column[model.Product] {
	return []table.Column[model.Product]{
		{
			Key: "thumbnail",
			Render: func(p model.Product) template.HTML {
				if p.Thumbnail == "" {
					return `<span class="thumb thumb-empty"></span>`
				}
				return template.HTML(`<img class="thumb" loading="lazy" alt="" src="` +
					template.HTMLEscapeString(thumbnailURL(p.ID)) + `">`)
			},
		},
		{
			Key:     "title",
			Header:  "Title",
			Value:   func(p model.Product) string { return p.Title },
			Compare: table.CompareFold(func(p model.Product) string { return p.Title }),
		},
		{
			Key:     "category",
			Header:  "Category",
			Value:   func(p model.Product) string { return p.Category },
			Compare: table.CompareFold(func(p model.Product) string { return p.Category }),
		},
		{
			Key:     "price",
			Header:  "Price",
			Render:  func(p model.Product) template.HTML { return table.Span("num", money(p.Price)) },
			Compare: table.CompareBy(func(p model.Product) float64 { return p.Price }),
		},
		{
			Key:     "stock",
			Header:  "Stock",
			Render:  func(p model.Product) template.HTML { return table.Span("num", strconv.Itoa(p.Stock)) },
			Compare: table.CompareBy(func(p model.Product) int { return p.Stock }),
		},
		{
			Key:     "rating",
			Header:  "Rating",
			Render:  func(p model.Product) template.HTML { return table.Span("stars", stars(p.Rating)) },
			Compare: table.CompareBy(func(p model.Product) float64 { return p.Rating }),
		},
		{
			Key:    "availability",
			Header: "Availability",
			Render: func(p model.Product) template.HTML {
				return table.Span("badge "+availabilityClass(p.AvailabilityStatus), p.AvailabilityStatus)
			},
			Compare: table.CompareBy(func(p model.Product) string { return p.AvailabilityStatus }),
		},
	}
}

func userColumns() []table.Column[model.User] {
	return []table.Column[model.User]{
		{
			Key:     "name",
			Header:  "Name",
			Value:   func(u model.User) string { return u.FullName() },
			Compare: table.CompareFold(func(u model.User) string { return u.FullName() }),
		},
		{
			Key:     "email",
			Header:  "Email",
			Value:   func(u model.User) string { return u.Email },
			Compare: table.CompareFold(func(u model.User) string { return u.Email }),
		},
		{
			Key:     "age",
			Header:  "Age",
			Render:  func(u model.User) template.HTML { return table.Span("num", strconv.Itoa(u.Age)) },
			Compare: table.CompareBy(func(u model.User) int { return u.Age }),
		},
		{
			Key:    "gender",
			Header: "Gender",
			Value:  func(u model.User) string { return u.Gender },
		},
		{
			Key:    "phone",
			Header: "Phone",
			Value:  func(u model.User) string { return u.Phone },
		},
		{
			Key:    "role",
			Header: "Role",
			Render: func(u model.User) template.HTML {
				return table.Span("badge role-"+u.Role, u.Role)
			},
			Compare: table.CompareBy(func(u model.User) string { return u.Role }),
		},
	}
}

// pickColumns returns the named columns, in the order given, without sorting.
func pickColumns[T any](cols []table.Column[T], keys ...string) []table.Column[T] {
	out := make([]table.Column[T], 0, len(keys))
	for _, k := range keys {
		for _, c := range cols {
			if c.Key == k {
				c.Compare = nil
				out = append(out, c)
				break
			}
		}
	}
	return out
}
