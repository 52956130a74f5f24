package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmstore/internal/catalog"
)

func GetCategories(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		log.Printf("[%s] hit", route)

		products, err := cat.FetchAllProducts(c.Request.Context())
		if err != nil {
			respondCatalogError(c, route, err)
			return
		}

		categories := catalog.Categories(products)
		log.Printf("[%s] returning %d categories", route, len(categories))
		c.JSON(http.StatusOK, categories)
	}
}
