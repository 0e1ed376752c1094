package paging

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}

func TestPaginateLength(t *testing.T) {
	for n := 0; n <= 23; n++ {
		items := seq(n)
		for size := 1; size <= 9; size++ {
			for page := 0; page <= 6; page++ {
				got := Paginate(items, page, size)

				want := 0
				if page >= 1 {
					want = min(size, max(0, n-(page-1)*size))
				}
				require.Lenf(t, got, want, "n=%d page=%d size=%d", n, page, size)

				// Contiguous and in order.
				for i := range got {
					assert.Equal(t, (page-1)*size+i+1, got[i])
				}
			}
		}
	}
}

func TestPaginateScenario(t *testing.T) {
	users := seq(10)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, Paginate(users, 1, 8))
	assert.Equal(t, []int{9, 10}, Paginate(users, 2, 8))
	assert.Empty(t, Paginate(users, 3, 8))
	assert.Equal(t, 2, TotalPages(len(users), 8))
}

func TestPaginateHugePage(t *testing.T) {
	items := seq(10)
	assert.Empty(t, Paginate(items, math.MaxInt, 2))
	assert.Empty(t, Paginate(items, math.MaxInt/2+2, 2))
	assert.Equal(t, items, Paginate(items, 1, math.MaxInt))
	assert.Empty(t, Paginate(items, 2, math.MaxInt))
}

func TestPaginateDoesNotAlias(t *testing.T) {
	items := seq(5)
	page := Paginate(items, 1, 3)
	page[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestFilter(t *testing.T) {
	names := []string{"Ada", "adam", "Grace", "Linus", "BARBARA", ""}
	id := func(s string) string { return s }

	for _, term := range []string{"ad", "A", "ra", "zzz", "Us"} {
		got := Filter(names, term, id)
		in := make(map[string]bool)
		for _, g := range got {
			in[g] = true
			assert.Containsf(t, strings.ToLower(g), strings.ToLower(term), "term %q", term)
		}
		for _, n := range names {
			if !in[n] {
				assert.NotContainsf(t, strings.ToLower(n), strings.ToLower(term), "term %q", term)
			}
		}
	}

	assert.Equal(t, names, Filter(names, "", id))
	assert.Equal(t, names, Filter(names, "   ", id))
}

func TestFilterDoesNotMutate(t *testing.T) {
	names := []string{"b", "a", "c"}
	all := Filter(names, "", func(s string) string { return s })
	all[0] = "z"
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestTotalPagesAndClamp(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 8))
	assert.Equal(t, 1, TotalPages(8, 8))
	assert.Equal(t, 2, TotalPages(9, 8))
	assert.Equal(t, 1, TotalPages(5, 0))

	assert.Equal(t, 1, Clamp(0, 3))
	assert.Equal(t, 3, Clamp(7, 3))
	assert.Equal(t, 2, Clamp(2, 3))
	assert.Equal(t, 1, Clamp(4, 0))
}

func TestPage(t *testing.T) {
	p := NewPage(10, 5, 8)
	assert.Equal(t, 2, p.Number, "clamped to last page")
	assert.True(t, p.Show())
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
	assert.Equal(t, []int{1, 2}, p.Numbers())
	assert.Equal(t, 9, p.First())
	assert.Equal(t, 10, p.Last())

	single := NewPage(3, 1, 8)
	assert.False(t, single.Show(), fmt.Sprintf("%+v", single))

	empty := NewPage(0, 1, 8)
	assert.False(t, empty.Show())
	assert.Equal(t, 0, empty.First())
	assert.Equal(t, 0, empty.Last())
}
