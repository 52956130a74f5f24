package handlers

import (
	"farmstore/internal/models"
	"farmstore/internal/pricing"
	"farmstore/internal/session"
)

type productView struct {
	models.Product
	PriceLabel       string `json:"priceLabel"`
	DisplayUnit      string `json:"displayUnit"`
	HasVariantChoice bool   `json:"hasVariantChoice"`
	InCart           bool   `json:"inCart"`
}

// newProductView prices variant products from their cheapest unit.
func newProductView(p models.Product, currency pricing.Currency, s *session.Session) productView {
	var shown *models.ProductVariant
	for i := range p.Variants {
		if shown == nil || p.Variants[i].Price < shown.Price {
			shown = &p.Variants[i]
		}
	}

	view := productView{
		Product:          p,
		PriceLabel:       pricing.FormatPrice(models.EffectiveUnitPrice(p, shown), currency),
		DisplayUnit:      models.EffectiveUnit(p, shown),
		HasVariantChoice: p.HasVariantChoice(),
	}
	if s != nil {
		view.InCart = s.Cart.HasProduct(p.ID)
	}
	return view
}

func productViews(products []models.Product, currency pricing.Currency, s *session.Session) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p, currency, s))
	}
	return views
}
