package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"farmstore/internal/catalog"
	"farmstore/internal/middleware"
	"farmstore/internal/models"
	"farmstore/internal/session"
)

// Catalog is the read side of the remote catalog service.
type Catalog interface {
	FetchAllProducts(ctx context.Context) ([]models.Product, error)
	FetchProductByID(ctx context.Context, id string) (models.Product, error)
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondCatalogError maps catalog failures. Not-found is a normal outcome
// for ids that left the catalog.
func respondCatalogError(c *gin.Context, route string, err error) {
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondWithError(c, http.StatusNotFound, route, "product not found")
		return
	}
	log.Printf("[%s] catalog error: %v", route, err)
	respondWithError(c, http.StatusBadGateway, route, err.Error())
}

func shopper(c *gin.Context, route string) (*session.Session, bool) {
	s := middleware.CurrentSession(c)
	if s == nil {
		respondWithError(c, http.StatusInternalServerError, route, "session unavailable")
		return nil, false
	}
	return s, true
}
