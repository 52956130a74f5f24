package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"farmstore/internal/models"
	"farmstore/internal/pricing"
)

type ShowOptions struct {
	Tag                string        `json:"tag"`
	Icon               string        `json:"icon,omitempty"`
	RequireInteraction bool          `json:"requireInteraction"`
	AutoClose          time.Duration `json:"-"`
}

// Notifier raises an alert outside the log. Show must return quickly and
// never fail the caller.
type Notifier interface {
	RequestPermission(ctx context.Context) bool
	Show(title, body string, opts ShowOptions)
}

// OrderAlert builds the alert for a new order.
func OrderAlert(n models.Notification, currency pricing.Currency) (string, string, ShowOptions) {
	title := fmt.Sprintf("🛒 Nouvelle commande #%s", n.OrderNumber)
	body := fmt.Sprintf("%s - %s", n.CustomerName, pricing.FormatPrice(n.TotalAmount, currency))
	return title, body, ShowOptions{
		Tag:                "order-" + n.OrderNumber,
		Icon:               "/logo.png",
		RequireInteraction: true,
		AutoClose:          5 * time.Second,
	}
}

// LogNotifier writes alerts to the process log.
type LogNotifier struct{}

func (LogNotifier) RequestPermission(context.Context) bool { return true }

func (LogNotifier) Show(title, body string, opts ShowOptions) {
	log.Printf("[NOTIFY] [INFO] %s | %s (tag=%s)", title, body, opts.Tag)
}

// MultiNotifier fans an alert out to several notifiers. Permission is granted
// when any of them grants it.
type MultiNotifier []Notifier

func (m MultiNotifier) RequestPermission(ctx context.Context) bool {
	granted := false
	for _, n := range m {
		if n.RequestPermission(ctx) {
			granted = true
		}
	}
	return granted
}

func (m MultiNotifier) Show(title, body string, opts ShowOptions) {
	for _, n := range m {
		n.Show(title, body, opts)
	}
}
