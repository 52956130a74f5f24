package models

// CartItem keeps the full product snapshot taken when the line was added so
// the cart renders without refetching the catalog.
type CartItem struct {
	Product         Product         `json:"product"`
	Quantity        int             `json:"quantity"`
	SelectedVariant *ProductVariant `json:"selectedVariant,omitempty"`
}

// LineKey identifies a cart line. Unit is empty for lines added without a
// variant, so two variants of the same product are two distinct lines.
type LineKey struct {
	ProductID string
	Unit      string
}

func KeyFor(productID, unit string) LineKey {
	return LineKey{ProductID: productID, Unit: unit}
}

func (i CartItem) Key() LineKey {
	if i.SelectedVariant == nil {
		return LineKey{ProductID: i.Product.ID}
	}
	return LineKey{ProductID: i.Product.ID, Unit: i.SelectedVariant.Unit}
}

func (i CartItem) UnitPrice() float64 {
	return EffectiveUnitPrice(i.Product, i.SelectedVariant)
}

func (i CartItem) UnitLabel() string {
	return EffectiveUnit(i.Product, i.SelectedVariant)
}

func (i CartItem) MinQuantity() int {
	return EffectiveMinQuantity(i.Product, i.SelectedVariant)
}

func (i CartItem) Subtotal() float64 {
	return i.UnitPrice() * float64(i.Quantity)
}
