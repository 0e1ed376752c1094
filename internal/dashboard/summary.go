// Package dashboard derives the figures shown on the dashboard tab.
package dashboard

import (
	"cmp"
	"slices"

	"github.com/erazemk/pregled/internal/model"
)

// TopCategories is how many categories the revenue chart shows.
const TopCategories = 6

// CategoryRevenue is one bar of the revenue chart.
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Share    float64 `json:"share"` // percent of the largest bar, 0-100
}

// Summary holds the dashboard figures.
type Summary struct {
	TotalProducts int               `json:"totalProducts"`
	TotalUsers    int               `json:"totalUsers"`
	TotalRevenue  float64           `json:"totalRevenue"`
	AverageRating float64           `json:"averageRating"`
	Categories    []CategoryRevenue `json:"categories"`

	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`

	Roles map[string]int `json:"roles"`
}

// Summarize computes the dashboard figures for the given collections.
func Summarize(products []model.Product, users []model.User) Summary {
	s := Summary{
		TotalProducts: len(products),
		TotalUsers:    len(users),
		TotalRevenue:  TotalRevenue(products),
		Categories:    RevenueByCategory(products, TopCategories),
		Roles:         make(map[string]int),
	}

	var ratings float64
	for _, p := range products {
		ratings += p.Rating
		switch p.AvailabilityStatus {
		case model.AvailabilityInStock:
			s.InStock++
		case model.AvailabilityLowStock:
			s.LowStock++
		default:
			s.OutOfStock++
		}
	}
	if len(products) > 0 {
		s.AverageRating = ratings / float64(len(products))
	}

	for _, u := range users {
		s.Roles[u.Role]++
	}
	return s
}

// TotalRevenue sums price times stock over all products.
func TotalRevenue(products []model.Product) float64 {
	var total float64
	for _, p := range products {
		total += p.Revenue()
	}
	return total
}

// RevenueByCategory groups revenue by category, sorted by revenue descending
// (ties by name), truncated to limit entries. A limit below 1 keeps all.
func RevenueByCategory(products []model.Product, limit int) []CategoryRevenue {
	totals := make(map[string]float64)
	for _, p := range products {
		totals[p.Category] += p.Revenue()
	}

	out := make([]CategoryRevenue, 0, len(totals))
	for c, r := range totals {
		out = append(out, CategoryRevenue{Category: c, Revenue: r})
	}
	slices.SortFunc(out, func(a, b CategoryRevenue) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	if len(out) > 0 && out[0].Revenue > 0 {
		top := out[0].Revenue
		for i := range out {
			out[i].Share = out[i].Revenue / top * 100
		}
	}
	return out
}
