package models

import (
	"encoding/json"
	"strings"
)

// DefaultUnitLabel is shown when neither the variant nor the product names a unit.
const DefaultUnitLabel = "unité"

// ProductVariant is one purchasable unit of a product. Price is per single
// unit, not pre-multiplied by MinOrderQuantity.
type ProductVariant struct {
	Unit             string  `json:"unit"`
	Price            float64 `json:"price"`
	MinOrderQuantity int     `json:"minOrderQuantity"`
	Description      string  `json:"description,omitempty"`
}

// Product mirrors the catalog record. Price, Unit and MinOrderQuantity only
// apply when Variants is empty (legacy single-unit records).
type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Description      string           `json:"description"`
	Image            string           `json:"image"`
	Stock            int              `json:"stock"`
	DeliveryPrice    *float64         `json:"deliveryPrice,omitempty"`
	IsActive         *bool            `json:"isActive,omitempty"`
	Price            float64          `json:"price"`
	Unit             string           `json:"unit,omitempty"`
	MinOrderQuantity int              `json:"minOrderQuantity,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
}

// UnmarshalJSON accepts records carrying either "id" or the external store's
// "_id" and keeps a single canonical ID.
func (p *Product) UnmarshalJSON(data []byte) error {
	type productAlias Product
	var raw struct {
		productAlias
		ID      FlexibleString `json:"id"`
		StoreID FlexibleString `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product(raw.productAlias)
	p.ID = NormalizeID(string(raw.ID), string(raw.StoreID))
	return nil
}

// NormalizeID resolves the canonical identifier. The external store
// identifier wins when both are present.
func NormalizeID(id, storeID string) string {
	if trimmed := strings.TrimSpace(storeID); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(id)
}

// Active reports whether the product should be shown to customers. Records
// without the flag predate soft deletion and count as active.
func (p Product) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// HasVariantChoice is true when the customer must pick a unit explicitly.
func (p Product) HasVariantChoice() bool {
	return len(p.Variants) >= 2
}

func (p Product) FindVariant(unit string) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.Unit == unit {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// Normalize trims identifiers, clamps negative stock and drops variants whose
// unit is empty or repeats an earlier one. It returns the dropped units.
func (p *Product) Normalize() []string {
	p.ID = strings.TrimSpace(p.ID)
	if p.Stock < 0 {
		p.Stock = 0
	}
	if len(p.Variants) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(p.Variants))
	kept := make([]ProductVariant, 0, len(p.Variants))
	var dropped []string
	for _, v := range p.Variants {
		v.Unit = strings.TrimSpace(v.Unit)
		if v.Unit == "" {
			dropped = append(dropped, v.Unit)
			continue
		}
		if _, ok := seen[v.Unit]; ok {
			dropped = append(dropped, v.Unit)
			continue
		}
		seen[v.Unit] = struct{}{}
		kept = append(kept, v)
	}
	p.Variants = kept
	return dropped
}

func EffectiveUnit(p Product, v *ProductVariant) string {
	if v != nil && v.Unit != "" {
		return v.Unit
	}
	if p.Unit != "" {
		return p.Unit
	}
	return DefaultUnitLabel
}

func EffectiveMinQuantity(p Product, v *ProductVariant) int {
	if v != nil && v.MinOrderQuantity > 0 {
		return v.MinOrderQuantity
	}
	if p.MinOrderQuantity > 0 {
		return p.MinOrderQuantity
	}
	return 1
}

func EffectiveUnitPrice(p Product, v *ProductVariant) float64 {
	if v != nil {
		return v.Price
	}
	return p.Price
}
