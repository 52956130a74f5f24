package models

import (
	"encoding/json"
	"strings"
)

type DeliveryType string

const (
	DeliveryPickup DeliveryType = "pickup"
	DeliveryHome   DeliveryType = "home"
)

func ParseDeliveryType(value string) (DeliveryType, bool) {
	switch DeliveryType(strings.ToLower(strings.TrimSpace(value))) {
	case DeliveryPickup:
		return DeliveryPickup, true
	case DeliveryHome:
		return DeliveryHome, true
	default:
		return "", false
	}
}

// Label is the delivery type as the order service records it.
func (d DeliveryType) Label() string {
	if d == DeliveryHome {
		return "Livraison"
	}
	return "Retrait"
}

// OrderItem represents a single product entry within an order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
}

// OrderCustomer captures lightweight customer contact details for an order.
type OrderCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DeliveryAddress is only sent for home delivery.
type DeliveryAddress struct {
	Commune   string `json:"commune"`
	Quartier  string `json:"quartier"`
	Avenue    string `json:"avenue"`
	Numero    string `json:"numero"`
	Reference string `json:"reference,omitempty"`
}

// OrderPayload is the body posted to the order service.
type OrderPayload struct {
	CustomerInfo    OrderCustomer    `json:"customerInfo"`
	Items           []OrderItem      `json:"items"`
	DeliveryType    string           `json:"deliveryType"`
	TotalAmount     float64          `json:"totalAmount"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress"`
}

// OrderConfirmation is what the order service answers on success.
type OrderConfirmation struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Message     string `json:"message,omitempty"`
}

func (o *OrderConfirmation) UnmarshalJSON(data []byte) error {
	var raw struct {
		OrderID     FlexibleString `json:"orderId"`
		StoreID     FlexibleString `json:"_id"`
		OrderNumber FlexibleString `json:"orderNumber"`
		Message     string         `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.OrderID = NormalizeID(string(raw.OrderID), string(raw.StoreID))
	o.OrderNumber = strings.TrimSpace(string(raw.OrderNumber))
	o.Message = raw.Message
	return nil
}
