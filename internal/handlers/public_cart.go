package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"farmstore/internal/cart"
	"farmstore/internal/pricing"
)

type cartLineView struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	Image          string  `json:"image,omitempty"`
	VariantUnit    string  `json:"variantUnit,omitempty"`
	Unit           string  `json:"unit"`
	Quantity       int     `json:"quantity"`
	MinQuantity    int     `json:"minQuantity"`
	Stock          int     `json:"stock"`
	UnitPrice      float64 `json:"unitPrice"`
	UnitPriceLabel string  `json:"unitPriceLabel"`
	Subtotal       float64 `json:"subtotal"`
	SubtotalLabel  string  `json:"subtotalLabel"`
}

type cartView struct {
	Items       []cartLineView `json:"items"`
	TotalItems  int            `json:"totalItems"`
	UniqueItems int            `json:"uniqueItems"`
	Total       float64        `json:"total"`
	TotalLabel  string         `json:"totalLabel"`
	HasNewItems bool           `json:"hasNewItems"`
}

func newCartView(store *cart.Store, currency pricing.Currency) cartView {
	items := store.Items()
	lines := make([]cartLineView, 0, len(items))
	for _, item := range items {
		line := cartLineView{
			ProductID:      item.Product.ID,
			Name:           item.Product.Name,
			Image:          item.Product.Image,
			Unit:           item.UnitLabel(),
			Quantity:       item.Quantity,
			MinQuantity:    item.MinQuantity(),
			Stock:          item.Product.Stock,
			UnitPrice:      item.UnitPrice(),
			UnitPriceLabel: pricing.FormatPrice(item.UnitPrice(), currency),
			Subtotal:       item.Subtotal(),
			SubtotalLabel:  pricing.FormatPrice(item.Subtotal(), currency),
		}
		if item.SelectedVariant != nil {
			line.VariantUnit = item.SelectedVariant.Unit
		}
		lines = append(lines, line)
	}

	total := store.GetTotalPrice()
	return cartView{
		Items:       lines,
		TotalItems:  store.GetTotalItems(),
		UniqueItems: store.GetUniqueItemsCount(),
		Total:       total,
		TotalLabel:  pricing.FormatPrice(total, currency),
		HasNewItems: store.HasNewItems(),
	}
}

func GetCart(currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newCartView(s.Cart, currency))
	}
}

func ClearCart(currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}
		s.Cart.ClearCart()
		log.Printf("[%s] cart cleared", route)
		c.JSON(http.StatusOK, newCartView(s.Cart, currency))
	}
}

// MarkCartViewed clears the "new items" badge.
func MarkCartViewed(currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/viewed"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}
		s.Cart.MarkItemsAsViewed()
		c.JSON(http.StatusOK, newCartView(s.Cart, currency))
	}
}

type updateCartItemRequest struct {
	Quantity *int   `json:"quantity" binding:"required"`
	Unit     string `json:"unit"`
}

// UpdateCartItem sets a line's quantity. Zero or less removes the line.
// Positive quantities must respect the unit minimum and, when the catalog
// tracks it, the stock.
func UpdateCartItem(currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/items/:productId"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID := strings.TrimSpace(c.Param("productId"))
		unit := strings.TrimSpace(req.Unit)
		item, found := s.Cart.GetCartItem(productID, unit)
		if !found {
			respondWithError(c, http.StatusNotFound, route, "item not in cart")
			return
		}

		qty := *req.Quantity
		if qty > 0 {
			if qty < item.MinQuantity() {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":       "quantity below minimum",
					"minQuantity": item.MinQuantity(),
					"unit":        item.UnitLabel(),
				})
				return
			}
			if item.Product.Stock > 0 && qty > item.Product.Stock {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "quantity above stock",
					"available": item.Product.Stock,
				})
				return
			}
		}

		s.Cart.UpdateQuantity(productID, qty, unit)
		c.JSON(http.StatusOK, newCartView(s.Cart, currency))
	}
}

// RemoveCartItem drops one line. ?unit= selects the variant line; without it
// only the line without a variant matches.
func RemoveCartItem(currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:productId"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		productID := strings.TrimSpace(c.Param("productId"))
		unit := strings.TrimSpace(c.Query("unit"))
		if !s.Cart.IsInCart(productID, unit) {
			respondWithError(c, http.StatusNotFound, route, "item not in cart")
			return
		}

		s.Cart.RemoveFromCart(productID, unit)
		c.JSON(http.StatusOK, newCartView(s.Cart, currency))
	}
}
