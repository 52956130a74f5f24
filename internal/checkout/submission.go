// Package checkout turns a cart into an order and tracks one submission
// attempt through Idle, Submitting and Confirmed.
package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"farmstore/internal/models"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	ErrAlreadyConfirmed   = errors.New("order already confirmed")
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, payload models.OrderPayload) (models.OrderConfirmation, error)
}

// CartSource is the part of the cart store checkout reads and settles.
type CartSource interface {
	Items() []models.CartItem
	RemoveOrdered(ordered []models.CartItem)
}

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
)

type Status struct {
	State        State                     `json:"state"`
	LastError    string                    `json:"lastError,omitempty"`
	Confirmation *models.OrderConfirmation `json:"confirmation,omitempty"`
	TotalAmount  float64                   `json:"totalAmount,omitempty"`
	CustomerName string                    `json:"customerName,omitempty"`
	DeliveryType string                    `json:"deliveryType,omitempty"`
}

type Submission struct {
	mu           sync.Mutex
	orders       OrderCreator
	cart         CartSource
	deliveryFee  float64
	state        State
	lastError    string
	confirmation *models.OrderConfirmation
	totalAmount  float64
	customer     string
	delivery     string
}

func NewSubmission(orders OrderCreator, cart CartSource, deliveryFee float64) *Submission {
	return &Submission{
		orders:      orders,
		cart:        cart,
		deliveryFee: deliveryFee,
		state:       StateIdle,
	}
}

func (s *Submission) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		State:        s.state,
		LastError:    s.lastError,
		TotalAmount:  s.totalAmount,
		CustomerName: s.customer,
		DeliveryType: s.delivery,
	}
	if s.confirmation != nil {
		c := *s.confirmation
		status.Confirmation = &c
	}
	return status
}

// Submit validates the form, posts the order and removes the ordered lines
// from the cart on success. Lines added while the order was in flight stay in
// the cart. A failure returns the submission to Idle with the cart untouched; calling
// Submit again posts a new order.
func (s *Submission) Submit(ctx context.Context, req Request) (models.OrderConfirmation, error) {
	s.mu.Lock()
	switch s.state {
	case StateConfirmed:
		s.mu.Unlock()
		return models.OrderConfirmation{}, ErrAlreadyConfirmed
	case StateSubmitting:
		s.mu.Unlock()
		return models.OrderConfirmation{}, ErrSubmissionInFlight
	}

	delivery, err := req.Validate()
	if err != nil {
		s.mu.Unlock()
		return models.OrderConfirmation{}, err
	}

	items := s.cart.Items()
	if len(items) == 0 {
		s.mu.Unlock()
		return models.OrderConfirmation{}, ErrEmptyCart
	}

	payload := BuildPayload(items, req, delivery, s.deliveryFee)
	s.state = StateSubmitting
	s.lastError = ""
	s.mu.Unlock()

	confirmation, err := s.orders.CreateOrder(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("[CHECKOUT] [ERROR] order submission failed: %v", err)
		s.state = StateIdle
		s.lastError = err.Error()
		return models.OrderConfirmation{}, err
	}

	s.state = StateConfirmed
	s.confirmation = &confirmation
	s.totalAmount = payload.TotalAmount
	s.customer = payload.CustomerInfo.Name
	s.delivery = payload.DeliveryType
	s.cart.RemoveOrdered(items)
	log.Printf("[CHECKOUT] [INFO] order %s confirmed (%d lines, total %.2f)", confirmation.OrderNumber, len(payload.Items), payload.TotalAmount)
	return confirmation, nil
}
