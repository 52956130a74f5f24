package catalog

import (
	"strings"

	"farmstore/internal/models"
)

type Filter struct {
	Category string
	Search   string
}

// Visible keeps the active products matching the filter, in catalog order.
func Visible(products []models.Product, f Filter) []models.Product {
	category := strings.ToLower(strings.TrimSpace(f.Category))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.Active() {
			continue
		}
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Page slices products for 1-based page numbers. Out of range pages are empty.
func Page(products []models.Product, page, limit int64) []models.Product {
	if page < 1 || limit < 1 {
		return products
	}
	start := (page - 1) * limit
	if start >= int64(len(products)) {
		return []models.Product{}
	}
	end := start + limit
	if end > int64(len(products)) {
		end = int64(len(products))
	}
	return products[start:end]
}

// Categories counts active products per category. Names are grouped case
// insensitively and keep the spelling first seen, in catalog order.
func Categories(products []models.Product) []models.Category {
	index := make(map[string]int)
	out := make([]models.Category, 0)
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		if !p.Active() || name == "" {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			out[i].ProductCount++
			continue
		}
		index[key] = len(out)
		out = append(out, models.Category{Name: name, ProductCount: 1})
	}
	return out
}
