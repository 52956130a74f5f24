package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"farmstore/internal/models"
)

func sampleProducts() []models.Product {
	inactive := false
	return []models.Product{
		{ID: "1", Name: "Pommes rouges", Category: "Fruits"},
		{ID: "2", Name: "Poivre", Category: "Épices"},
		{ID: "3", Name: "Pommes vertes", Category: "Fruits", IsActive: &inactive},
		{ID: "4", Name: "Bananes", Category: "fruits"},
	}
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestVisibleHidesInactive(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "4"}, ids(Visible(sampleProducts(), Filter{})))
}

func TestVisibleFiltersCategoryAndSearch(t *testing.T) {
	assert.Equal(t, []string{"1", "4"}, ids(Visible(sampleProducts(), Filter{Category: "Fruits"})))
	assert.Equal(t, []string{"1"}, ids(Visible(sampleProducts(), Filter{Search: "pom"})))
}

func TestPage(t *testing.T) {
	products := sampleProducts()
	assert.Equal(t, []string{"3", "4"}, ids(Page(products, 2, 2)))
	assert.Empty(t, Page(products, 5, 2))
	assert.Len(t, Page(products, 0, 0), 4)
}

func TestCategoriesGroupsCaseInsensitively(t *testing.T) {
	categories := Categories(sampleProducts())
	assert.Equal(t, []models.Category{
		{Name: "Fruits", ProductCount: 2},
		{Name: "Épices", ProductCount: 1},
	}, categories)
}
