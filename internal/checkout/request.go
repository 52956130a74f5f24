package checkout

import (
	"errors"
	"strings"

	"farmstore/internal/models"
)

// validationError communicates rule violations back to HTTP handlers.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return validationError{message: msg}
}

// IsValidation tells form mistakes apart from order service failures.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

type Customer struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

type Address struct {
	Commune   string `json:"commune"`
	Quartier  string `json:"quartier"`
	Avenue    string `json:"avenue"`
	Numero    string `json:"numero"`
	Reference string `json:"reference"`
}

// Request is the checkout form.
type Request struct {
	DeliveryType string   `json:"deliveryType" binding:"required"`
	Customer     Customer `json:"customer" binding:"required"`
	Address      *Address `json:"address"`
}

// Validate trims the form in place and reports the first problem found.
func (r *Request) Validate() (models.DeliveryType, error) {
	delivery, ok := models.ParseDeliveryType(r.DeliveryType)
	if !ok {
		return "", newValidationError("deliveryType must be pickup or home")
	}

	r.Customer.Name = strings.TrimSpace(r.Customer.Name)
	r.Customer.Phone = strings.TrimSpace(r.Customer.Phone)
	if r.Customer.Name == "" {
		return "", newValidationError("customer name is required")
	}
	if r.Customer.Phone == "" {
		return "", newValidationError("customer phone is required")
	}

	if delivery == models.DeliveryPickup {
		r.Address = nil
		return delivery, nil
	}

	if r.Address == nil {
		return "", newValidationError("delivery address is required for home delivery")
	}
	r.Address.Commune = strings.TrimSpace(r.Address.Commune)
	r.Address.Quartier = strings.TrimSpace(r.Address.Quartier)
	r.Address.Avenue = strings.TrimSpace(r.Address.Avenue)
	r.Address.Numero = strings.TrimSpace(r.Address.Numero)
	r.Address.Reference = strings.TrimSpace(r.Address.Reference)
	if r.Address.Commune == "" || r.Address.Quartier == "" || r.Address.Avenue == "" || r.Address.Numero == "" {
		return "", newValidationError("commune, quartier, avenue and numero are required for home delivery")
	}
	return delivery, nil
}
