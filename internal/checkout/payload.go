package checkout

import (
	"farmstore/internal/models"
)

// BuildPayload snapshots the cart into an order. The delivery fee is only
// charged for home delivery. req must already be validated.
func BuildPayload(items []models.CartItem, req Request, delivery models.DeliveryType, deliveryFee float64) models.OrderPayload {
	lines := make([]models.OrderItem, 0, len(items))
	total := 0.0
	for _, item := range items {
		price := item.UnitPrice()
		lines = append(lines, models.OrderItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Price:     price,
			Quantity:  item.Quantity,
			Unit:      item.UnitLabel(),
		})
		total += price * float64(item.Quantity)
	}

	payload := models.OrderPayload{
		CustomerInfo: models.OrderCustomer{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
		},
		Items:        lines,
		DeliveryType: delivery.Label(),
		TotalAmount:  total,
	}

	if delivery == models.DeliveryHome {
		payload.TotalAmount += deliveryFee
		if req.Address != nil {
			payload.DeliveryAddress = &models.DeliveryAddress{
				Commune:   req.Address.Commune,
				Quartier:  req.Address.Quartier,
				Avenue:    req.Address.Avenue,
				Numero:    req.Address.Numero,
				Reference: req.Address.Reference,
			}
		}
	}
	return payload
}
