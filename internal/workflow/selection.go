package workflow

import (
	"strconv"
	"sync"

	"farmstore/internal/models"
	"farmstore/internal/pricing"
)

// Selection is the pending choice of unit and quantity for a product that
// offers several variants.
type Selection struct {
	mu       sync.Mutex
	product  models.Product
	variant  *models.ProductVariant
	quantity int
}

// NewSelection highlights the first variant at its minimum quantity.
func NewSelection(product models.Product) *Selection {
	s := &Selection{product: product}
	if len(product.Variants) > 0 {
		first := product.Variants[0]
		s.variant = &first
	}
	s.quantity = models.EffectiveMinQuantity(product, s.variant)
	return s
}

func (s *Selection) ProductID() string {
	return s.product.ID
}

// ChooseVariant switches the unit and resets the quantity to that unit's
// minimum. Unknown units are ignored.
func (s *Selection) ChooseVariant(unit string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.product.FindVariant(unit)
	if !ok {
		return false
	}
	s.variant = &v
	s.quantity = models.EffectiveMinQuantity(s.product, s.variant)
	return true
}

// SetQuantity ignores values below the selected unit's minimum.
func (s *Selection) SetQuantity(quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.variant == nil || quantity < models.EffectiveMinQuantity(s.product, s.variant) {
		return false
	}
	s.quantity = quantity
	return true
}

func (s *Selection) Quantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.quantity
}

func (s *Selection) Variant() (models.ProductVariant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.variant == nil {
		return models.ProductVariant{}, false
	}
	return *s.variant, true
}

func (s *Selection) CanConfirm() bool {
	_, _, _, ok := s.confirmable()
	return ok
}

func (s *Selection) confirmable() (models.Product, models.ProductVariant, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.variant == nil {
		return models.Product{}, models.ProductVariant{}, 0, false
	}
	if s.quantity < models.EffectiveMinQuantity(s.product, s.variant) {
		return models.Product{}, models.ProductVariant{}, 0, false
	}
	return s.product, *s.variant, s.quantity, true
}

type VariantOption struct {
	Unit             string  `json:"unit"`
	Price            float64 `json:"price"`
	PriceLabel       string  `json:"priceLabel"`
	MinOrderQuantity int     `json:"minOrderQuantity"`
	PackLabel        string  `json:"packLabel"`
	PackPriceLabel   string  `json:"packPriceLabel"`
	Description      string  `json:"description,omitempty"`
}

type View struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	Variants       []VariantOption `json:"variants"`
	SelectedUnit   string          `json:"selectedUnit,omitempty"`
	Quantity       int             `json:"quantity"`
	MinQuantity    int             `json:"minQuantity"`
	LinePrice      float64         `json:"linePrice"`
	LinePriceLabel string          `json:"linePriceLabel"`
	CanConfirm     bool            `json:"canConfirm"`
}

// View renders the selection for the storefront. Pack prices are shown for
// the minimum quantity, e.g. "50 g" for 500 FC.
func (s *Selection) View(currency pricing.Currency) View {
	canConfirm := s.CanConfirm()

	s.mu.Lock()
	defer s.mu.Unlock()

	options := make([]VariantOption, 0, len(s.product.Variants))
	for _, v := range s.product.Variants {
		minQty := models.EffectiveMinQuantity(s.product, &v)
		packLabel := v.Unit
		if minQty > 1 {
			packLabel = strconv.Itoa(minQty) + " " + v.Unit
		}
		options = append(options, VariantOption{
			Unit:             v.Unit,
			Price:            v.Price,
			PriceLabel:       pricing.FormatPrice(v.Price, currency),
			MinOrderQuantity: minQty,
			PackLabel:        packLabel,
			PackPriceLabel:   pricing.FormatPrice(v.Price*float64(minQty), currency),
			Description:      v.Description,
		})
	}

	view := View{
		ProductID:   s.product.ID,
		ProductName: s.product.Name,
		Variants:    options,
		Quantity:    s.quantity,
		MinQuantity: models.EffectiveMinQuantity(s.product, s.variant),
		CanConfirm:  canConfirm,
	}
	if s.variant != nil {
		view.SelectedUnit = s.variant.Unit
		view.LinePrice = s.variant.Price * float64(s.quantity)
	}
	view.LinePriceLabel = pricing.FormatPrice(view.LinePrice, currency)
	return view
}
