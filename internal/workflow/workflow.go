// Package workflow decides whether a product goes straight into the cart or
// needs an explicit unit and quantity first, and never lets a quantity below
// the unit's minimum reach the cart.
package workflow

import (
	"farmstore/internal/models"
)

// CartWriter is the part of the cart store the workflow drives.
type CartWriter interface {
	AddToCart(product models.Product, quantity int, variant *models.ProductVariant)
	HasProduct(productID string) bool
	RemoveProduct(productID string)
}

type Action string

const (
	ActionAdded             Action = "added"
	ActionSelectionRequired Action = "selection_required"
	ActionRemoved           Action = "removed"
	ActionRejected          Action = "rejected"
)

type Outcome struct {
	Action    Action
	Quantity  int
	Unit      string
	Selection *Selection
}

type Workflow struct {
	cart CartWriter
}

func New(cart CartWriter) *Workflow {
	return &Workflow{cart: cart}
}

// Begin adds products with zero or one variant at their minimum quantity.
// Products with a real choice of units get a Selection instead.
func (w *Workflow) Begin(product models.Product) Outcome {
	if product.HasVariantChoice() {
		return Outcome{Action: ActionSelectionRequired, Selection: NewSelection(product)}
	}

	var variant *models.ProductVariant
	if len(product.Variants) == 1 {
		only := product.Variants[0]
		variant = &only
	}

	quantity := models.EffectiveMinQuantity(product, variant)
	w.cart.AddToCart(product, quantity, variant)
	return Outcome{
		Action:   ActionAdded,
		Quantity: quantity,
		Unit:     models.EffectiveUnit(product, variant),
	}
}

// Toggle removes every line of the product when any of its units is already
// in the cart, and starts Begin otherwise.
func (w *Workflow) Toggle(product models.Product) Outcome {
	if w.cart.HasProduct(product.ID) {
		w.cart.RemoveProduct(product.ID)
		return Outcome{Action: ActionRemoved}
	}
	return w.Begin(product)
}

// Confirm adds the selection to the cart when it satisfies the minimum.
func (w *Workflow) Confirm(sel *Selection) Outcome {
	product, variant, quantity, ok := sel.confirmable()
	if !ok {
		return Outcome{Action: ActionRejected, Selection: sel}
	}

	w.cart.AddToCart(product, quantity, &variant)
	return Outcome{Action: ActionAdded, Quantity: quantity, Unit: variant.Unit}
}
