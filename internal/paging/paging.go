// Package paging slices and filters in-memory collections for display.
//
// All functions are pure: they never modify their inputs and always return a
// freshly allocated slice.
package paging

import "strings"

// Paginate returns the 1-based page of items with the given page size. Pages
// outside the collection yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 || len(items) == 0 {
		return []T{}
	}
	// Compare page indices rather than offsets so huge page numbers cannot
	// overflow the multiplication.
	if page-1 > (len(items)-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	n := min(size, len(items)-start)
	out := make([]T, n)
	copy(out, items[start:start+n])
	return out
}

// Filter keeps the items whose field contains term, ignoring case. A blank
// term keeps everything.
func Filter[T any](items []T, term string, field func(T) string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(field(it)), term) {
			out = append(out, it)
		}
	}
	return out
}

// TotalPages returns the number of pages needed for n items. An empty
// collection still has one (empty) page.
func TotalPages(n, size int) int {
	if size < 1 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Clamp limits page to [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	return max(1, min(page, total))
}

// Page describes the current position within a paginated collection.
type Page struct {
	Number int // 1-based
	Total  int
	Size   int
	Count  int // items in the whole (filtered) collection
}

// NewPage clamps the requested page number to the collection.
func NewPage(count, page, size int) Page {
	total := TotalPages(count, size)
	return Page{
		Number: Clamp(page, total),
		Total:  total,
		Size:   size,
		Count:  count,
	}
}

// Show reports whether pagination controls should be rendered.
func (p Page) Show() bool { return p.Total > 1 }

// HasPrev reports whether there is a previous page.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether there is a next page.
func (p Page) HasNext() bool { return p.Number < p.Total }

// Prev returns the previous page number.
func (p Page) Prev() int { return max(1, p.Number-1) }

// Next returns the next page number.
func (p Page) Next() int { return min(p.Total, p.Number+1) }

// Numbers lists every page number.
func (p Page) Numbers() []int {
	nums := make([]int, p.Total)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// First returns the 1-based index of the first item on the page, or 0 when
// the collection is empty.
func (p Page) First() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

// Last returns the 1-based index of the last item on the page.
func (p Page) Last() int {
	return min(p.Number*p.Size, p.Count)
}
