package models

import "time"

// OrderEvent is the payload of a "newOrder" push event.
type OrderEvent struct {
	OrderID      FlexibleString `json:"orderId"`
	OrderNumber  FlexibleString `json:"orderNumber"`
	CustomerName string         `json:"customerName"`
	TotalAmount  float64        `json:"totalAmount"`
	DeliveryType string         `json:"deliveryType"`
}

// Notification is one entry of the admin order-alert log.
type Notification struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	CustomerName string    `json:"customerName"`
	TotalAmount  float64   `json:"totalAmount"`
	DeliveryType string    `json:"deliveryType"`
	Timestamp    time.Time `json:"timestamp"`
	Read         bool      `json:"read"`
}
