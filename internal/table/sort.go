package table

import (
	"cmp"
	"net/url"
	"slices"
	"strings"
)

// Sort is the active sort key and direction. The zero value means insertion
// order.
type Sort struct {
	Key  string
	Desc bool
}

// Toggle returns the sort after clicking the header of key: the same key
// flips direction, a new key starts ascending.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key {
		return Sort{Key: key, Desc: !s.Desc}
	}
	return Sort{Key: key}
}

// Dir returns "asc" or "desc".
func (s Sort) Dir() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Apply writes the sort to query values.
func (s Sort) Apply(v url.Values) {
	if s.Key == "" {
		v.Del("sort")
		v.Del("dir")
		return
	}
	v.Set("sort", s.Key)
	v.Set("dir", s.Dir())
}

// ParseSort reads "sort" and "dir" from query values.
func ParseSort(v url.Values) Sort {
	return Sort{
		Key:  strings.TrimSpace(v.Get("sort")),
		Desc: strings.EqualFold(v.Get("dir"), "desc"),
	}
}

// SortRows returns a sorted copy of rows. Equal rows keep their relative
// order. Unknown or unsortable keys return the rows in their original order.
func SortRows[T any](rows []T, cols []Column[T], s Sort) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	if s.Key == "" {
		return out
	}
	idx := slices.IndexFunc(cols, func(c Column[T]) bool { return c.Key == s.Key })
	if idx < 0 || !cols[idx].Sortable() {
		return out
	}
	compare := cols[idx].Compare
	slices.SortStableFunc(out, func(a, b T) int {
		if s.Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

// CompareBy builds a Compare function from a key accessor.
func CompareBy[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// CompareFold builds a case-insensitive Compare function for strings.
func CompareFold[T any](key func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}
