package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"farmstore/internal/checkout"
	"farmstore/internal/models"
	"farmstore/internal/notifications"
	"farmstore/internal/pricing"
)

/* =========================
   CHECKOUT SUMMARY
========================= */

type deliveryOption struct {
	Type       models.DeliveryType `json:"type"`
	Label      string              `json:"label"`
	Fee        float64             `json:"fee"`
	Total      float64             `json:"total"`
	TotalLabel string              `json:"totalLabel"`
}

func GetCheckout(currency pricing.Currency, deliveryFee float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /checkout"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		total := s.Cart.GetTotalPrice()
		options := []deliveryOption{
			{Type: models.DeliveryPickup, Label: models.DeliveryPickup.Label(), Total: total},
			{Type: models.DeliveryHome, Label: models.DeliveryHome.Label(), Fee: deliveryFee, Total: total + deliveryFee},
		}
		for i := range options {
			options[i].TotalLabel = pricing.FormatPrice(options[i].Total, currency)
		}

		c.JSON(http.StatusOK, gin.H{
			"cart":     newCartView(s.Cart, currency),
			"delivery": options,
			"status":   s.LastCheckout().Status(),
		})
	}
}

/* =========================
   SUBMIT ORDER
========================= */

// SubmitCheckout posts the cart as an order. events, when set, announces the
// confirmed order to the admin notification feed.
func SubmitCheckout(currency pricing.Currency, events notifications.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		s, ok := shopper(c, route)
		if !ok {
			return
		}

		var req checkout.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		submission := s.Checkout()
		conf, err := submission.Submit(c.Request.Context(), req)
		if err != nil {
			switch {
			case checkout.IsValidation(err):
				respondWithError(c, http.StatusBadRequest, route, err.Error())
			case errors.Is(err, checkout.ErrEmptyCart):
				respondWithError(c, http.StatusBadRequest, route, err.Error())
			case errors.Is(err, checkout.ErrSubmissionInFlight), errors.Is(err, checkout.ErrAlreadyConfirmed):
				respondWithError(c, http.StatusConflict, route, err.Error())
			default:
				respondWithError(c, http.StatusBadGateway, route, err.Error())
			}
			return
		}

		status := submission.Status()
		total := status.TotalAmount
		if events != nil {
			announce(events, models.OrderEvent{
				OrderID:      models.FlexibleString(conf.OrderID),
				OrderNumber:  models.FlexibleString(conf.OrderNumber),
				CustomerName: status.CustomerName,
				TotalAmount:  total,
				DeliveryType: status.DeliveryType,
			})
		}

		log.Printf("[ORDER] [INFO] order %s placed by session %s", conf.OrderNumber, s.ID)
		c.JSON(http.StatusCreated, gin.H{
			"orderId":     conf.OrderID,
			"orderNumber": conf.OrderNumber,
			"message":     conf.Message,
			"total":       total,
			"totalLabel":  pricing.FormatPrice(total, currency),
		})
	}
}

func announce(events notifications.Publisher, ev models.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := events.Publish(ctx, ev); err != nil {
		log.Println("[ORDER] [WARN] order announcement failed:", err)
	}
}
