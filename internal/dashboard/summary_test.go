package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/pregled/internal/model"
)

func product(category string, price float64, stock int) model.Product {
	return model.Product{
		Category:           category,
		Price:              price,
		Stock:              stock,
		Rating:             4,
		AvailabilityStatus: model.AvailabilityFor(stock),
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Zero(t, s.TotalProducts)
	assert.Zero(t, s.TotalUsers)
	assert.Zero(t, s.TotalRevenue)
	assert.Zero(t, s.AverageRating)
	assert.Empty(t, s.Categories)
}

func TestSummarize(t *testing.T) {
	products := []model.Product{
		product("beauty", 10, 5),
		product("beauty", 2, 50),
		product("laptops", 1000, 2),
		product("groceries", 1, 0),
	}
	users := []model.User{{Role: model.RoleAdmin}, {Role: model.RoleUser}, {Role: model.RoleUser}}

	s := Summarize(products, users)
	assert.Equal(t, 4, s.TotalProducts)
	assert.Equal(t, 3, s.TotalUsers)
	assert.InDelta(t, 2150.0, s.TotalRevenue, 1e-9)
	assert.InDelta(t, 4.0, s.AverageRating, 1e-9)
	assert.Equal(t, 1, s.InStock)
	assert.Equal(t, 2, s.LowStock)
	assert.Equal(t, 1, s.OutOfStock)
	assert.Equal(t, 2, s.Roles[model.RoleUser])

	require.Len(t, s.Categories, 3)
	assert.Equal(t, "laptops", s.Categories[0].Category)
	assert.InDelta(t, 100.0, s.Categories[0].Share, 1e-9)
	assert.Equal(t, "beauty", s.Categories[1].Category)
	assert.InDelta(t, 150.0, s.Categories[1].Revenue, 1e-9)
	assert.Equal(t, "groceries", s.Categories[2].Category)
	assert.Zero(t, s.Categories[2].Revenue)
}

func TestRevenueByCategoryTopSix(t *testing.T) {
	var products []model.Product
	for i, c := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		products = append(products, product(c, float64(i+1), 1))
	}

	got := RevenueByCategory(products, TopCategories)
	require.Len(t, got, 6)
	assert.Equal(t, "h", got[0].Category)
	assert.Equal(t, "c", got[5].Category)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Revenue, got[i].Revenue)
	}

	assert.Len(t, RevenueByCategory(products, 0), 8)
}

func TestRevenueByCategoryTiesByName(t *testing.T) {
	got := RevenueByCategory([]model.Product{product("b", 1, 1), product("a", 1, 1)}, 0)
	assert.Equal(t, "a", got[0].Category)
	assert.Equal(t, "b", got[1].Category)
}
