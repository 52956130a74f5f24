package models

// Category is derived from the catalog: one entry per distinct product
// category among active products.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
