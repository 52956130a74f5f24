package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"farmstore/internal/catalog"
	"farmstore/internal/middleware"
	"farmstore/internal/pricing"
)

/*
GET /products
- pagination is optional
- without page + limit every visible product is returned
*/
func GetProducts(cat Catalog, currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit page=%s limit=%s category=%s search=%s",
			route,
			c.Query("page"),
			c.Query("limit"),
			c.Query("category"),
			c.Query("search"),
		)

		products, err := cat.FetchAllProducts(c.Request.Context())
		if err != nil {
			respondCatalogError(c, route, err)
			return
		}

		visible := catalog.Visible(products, catalog.Filter{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
		})
		s := middleware.CurrentSession(c)

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr == "" || limitStr == "" {
			log.Printf("[%s] returning %d products", route, len(visible))
			c.JSON(http.StatusOK, productViews(visible, currency, s))
			return
		}

		page, limit, err := parsePaginationParams(pageStr, limitStr)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		paged := catalog.Page(visible, page, limit)
		log.Printf("[%s] returning %d of %d products", route, len(paged), len(visible))
		c.JSON(http.StatusOK, gin.H{
			"data": productViews(paged, currency, s),
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": len(visible),
			},
		})
	}
}

// GetProduct serves one product. Inactive products are hidden from shoppers.
func GetProduct(cat Catalog, currency pricing.Currency) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		p, err := cat.FetchProductByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondCatalogError(c, route, err)
			return
		}
		if !p.Active() {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.JSON(http.StatusOK, newProductView(p, currency, middleware.CurrentSession(c)))
	}
}
