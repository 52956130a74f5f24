package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmstore/internal/pricing"
	"farmstore/internal/workflow"
)

// ToggleProduct is the product card button: it removes every line of the
// product when present, adds it directly when it has at most one unit, and
// otherwise opens a selection.
func ToggleProduct(cat Catalog, currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/toggle"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		p, err := cat.FetchProductByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondCatalogError(c, route, err)
			return
		}
		if !p.Active() {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		out := s.Workflow.Toggle(p)
		switch out.Action {
		case workflow.ActionSelectionRequired:
			s.OpenSelection(out.Selection)
			log.Printf("[%s] selection opened for %s", route, p.ID)
			c.JSON(http.StatusOK, gin.H{
				"action":    out.Action,
				"selection": out.Selection.View(currency),
			})
		case workflow.ActionRemoved:
			s.CloseSelection(p.ID)
			c.JSON(http.StatusOK, gin.H{"action": out.Action, "cart": newCartView(s.Cart, currency)})
		default:
			c.JSON(http.StatusOK, gin.H{
				"action":   out.Action,
				"quantity": out.Quantity,
				"unit":     out.Unit,
				"cart":     newCartView(s.Cart, currency),
			})
		}
	}
}

// GetSelection returns the open selection, opening one when the product
// offers several units.
func GetSelection(cat Catalog, currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id/selection"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		if sel, found := s.Selection(c.Param("id")); found {
			c.JSON(http.StatusOK, sel.View(currency))
			return
		}

		p, err := cat.FetchProductByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondCatalogError(c, route, err)
			return
		}
		if !p.Active() {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if !p.HasVariantChoice() {
			respondWithError(c, http.StatusConflict, route, "product has a single unit")
			return
		}

		sel := workflow.NewSelection(p)
		s.OpenSelection(sel)
		c.JSON(http.StatusOK, sel.View(currency))
	}
}

type updateSelectionRequest struct {
	Unit     string `json:"unit"`
	Quantity *int   `json:"quantity"`
}

// UpdateSelection switches unit first, which resets the quantity to that
// unit's minimum, then applies the quantity if one was sent.
func UpdateSelection(currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /products/:id/selection"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		sel, found := s.Selection(c.Param("id"))
		if !found {
			respondWithError(c, http.StatusNotFound, route, "no open selection")
			return
		}

		var req updateSelectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Unit != "" && !sel.ChooseVariant(req.Unit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown unit", "selection": sel.View(currency)})
			return
		}
		if req.Quantity != nil && !sel.SetQuantity(*req.Quantity) {
			view := sel.View(currency)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       "quantity below minimum",
				"minQuantity": view.MinQuantity,
				"selection":   view,
			})
			return
		}

		c.JSON(http.StatusOK, sel.View(currency))
	}
}

func ConfirmSelection(currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/selection/confirm"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		sel, found := s.Selection(c.Param("id"))
		if !found {
			respondWithError(c, http.StatusNotFound, route, "no open selection")
			return
		}

		out := s.Workflow.Confirm(sel)
		if out.Action != workflow.ActionAdded {
			c.JSON(http.StatusBadRequest, gin.H{"error": "selection cannot be confirmed", "selection": sel.View(currency)})
			return
		}

		s.CloseSelection(c.Param("id"))
		log.Printf("[%s] added %d %s of %s", route, out.Quantity, out.Unit, c.Param("id"))
		c.JSON(http.StatusOK, gin.H{
			"action":   out.Action,
			"quantity": out.Quantity,
			"unit":     out.Unit,
			"cart":     newCartView(s.Cart, currency),
		})
	}
}
