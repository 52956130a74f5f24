package checkout

import (
	"context"
	"errors"
	"testing"

	"farmstore/internal/cart"
	"farmstore/internal/models"
	"farmstore/internal/storage"
)

type stubOrders struct {
	calls    int
	payloads []models.OrderPayload
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func (s *stubOrders) CreateOrder(ctx context.Context, payload models.OrderPayload) (models.OrderConfirmation, error) {
	s.calls++
	s.payloads = append(s.payloads, payload)
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return models.OrderConfirmation{}, s.err
	}
	return models.OrderConfirmation{OrderID: "o-1", OrderNumber: "42"}, nil
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore(context.Background(), cart.NewKVRepository(storage.NewMemoryKV(), cart.StorageKey))
	store.AddToCart(models.Product{ID: "sac-riz", Name: "Sac de riz", Price: 15000, Unit: "sac"}, 1, nil)
	store.AddToCart(models.Product{ID: "epices", Name: "Épices", Variants: []models.ProductVariant{
		{Unit: "g", Price: 10, MinOrderQuantity: 50},
		{Unit: "kg", Price: 9000, MinOrderQuantity: 1},
	}}, 500, &models.ProductVariant{Unit: "g", Price: 10, MinOrderQuantity: 50})
	if store.GetTotalPrice() != 20000 {
		t.Fatalf("fixture total should be 20000, got %v", store.GetTotalPrice())
	}
	return store
}

func homeRequest() Request {
	return Request{
		DeliveryType: "home",
		Customer:     Customer{Name: " Amani ", Phone: "0990000000"},
		Address:      &Address{Commune: "Gombe", Quartier: "Centre", Avenue: "du Fleuve", Numero: "12"},
	}
}

func pickupRequest() Request {
	return Request{DeliveryType: "pickup", Customer: Customer{Name: "Amani", Phone: "0990000000"}}
}

func TestSubmitHomeDeliveryAddsFee(t *testing.T) {
	orders := &stubOrders{}
	store := filledCart(t)
	sub := NewSubmission(orders, store, 5)

	if _, err := sub.Submit(context.Background(), homeRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := orders.payloads[0]
	if payload.TotalAmount != 20005 {
		t.Fatalf("expected 20005, got %v", payload.TotalAmount)
	}
	if payload.DeliveryType != "Livraison" || payload.DeliveryAddress == nil || payload.DeliveryAddress.Commune != "Gombe" {
		t.Fatalf("unexpected delivery fields %+v", payload)
	}
	if payload.CustomerInfo.Name != "Amani" {
		t.Fatalf("expected trimmed customer name, got %q", payload.CustomerInfo.Name)
	}
}

func TestSubmitPickupKeepsRawTotal(t *testing.T) {
	orders := &stubOrders{}
	store := filledCart(t)
	sub := NewSubmission(orders, store, 5)

	req := pickupRequest()
	req.Address = &Address{Commune: "ignored"}
	if _, err := sub.Submit(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := orders.payloads[0]
	if payload.TotalAmount != 20000 {
		t.Fatalf("expected 20000, got %v", payload.TotalAmount)
	}
	if payload.DeliveryType != "Retrait" || payload.DeliveryAddress != nil {
		t.Fatalf("pickup must not carry an address, got %+v", payload)
	}
}

func TestBuildPayloadUsesVariantPriceAndUnit(t *testing.T) {
	store := filledCart(t)
	payload := BuildPayload(store.Items(), pickupRequest(), models.DeliveryPickup, 5)

	var found bool
	for _, item := range payload.Items {
		if item.ProductID == "epices" {
			found = true
			if item.Price != 10 || item.Unit != "g" || item.Quantity != 500 || item.Name != "Épices" {
				t.Fatalf("unexpected variant line %+v", item)
			}
		}
	}
	if !found {
		t.Fatalf("expected epices line in payload")
	}
}

func TestSubmitSuccessClearsCartAndConfirms(t *testing.T) {
	orders := &stubOrders{}
	store := filledCart(t)
	sub := NewSubmission(orders, store, 5)

	conf, err := sub.Submit(context.Background(), pickupRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.OrderNumber != "42" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}
	if store.GetTotalItems() != 0 {
		t.Fatalf("expected cart cleared")
	}
	if status := sub.Status(); status.State != StateConfirmed || status.Confirmation == nil {
		t.Fatalf("unexpected status %+v", status)
	}
	if _, err := sub.Submit(context.Background(), pickupRequest()); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed, got %v", err)
	}
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	orders := &stubOrders{err: errors.New("Stock insuffisant")}
	store := filledCart(t)
	sub := NewSubmission(orders, store, 5)

	if _, err := sub.Submit(context.Background(), pickupRequest()); err == nil {
		t.Fatalf("expected error")
	}
	if store.GetTotalPrice() != 20000 {
		t.Fatalf("cart must be untouched after a failure")
	}
	status := sub.Status()
	if status.State != StateIdle || status.LastError != "Stock insuffisant" {
		t.Fatalf("unexpected status %+v", status)
	}

	orders.err = nil
	if _, err := sub.Submit(context.Background(), pickupRequest()); err != nil {
		t.Fatalf("manual retry should succeed: %v", err)
	}
	if orders.calls != 2 {
		t.Fatalf("expected two order attempts, got %d", orders.calls)
	}
}

func TestSubmitRefusedWhileInFlight(t *testing.T) {
	orders := &stubOrders{block: make(chan struct{}), entered: make(chan struct{})}
	store := filledCart(t)
	sub := NewSubmission(orders, store, 5)

	done := make(chan error, 1)
	go func() {
		_, err := sub.Submit(context.Background(), pickupRequest())
		done <- err
	}()
	<-orders.entered

	if _, err := sub.Submit(context.Background(), pickupRequest()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if sub.Status().State != StateSubmitting {
		t.Fatalf("expected submitting state")
	}

	close(orders.block)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
}

func TestSubmitKeepsLinesAddedWhileInFlight(t *testing.T) {
	orders := &stubOrders{block: make(chan struct{}), entered: make(chan struct{})}
	store := filledCart(t)
	sub := NewSubmission(orders, store, 5)

	done := make(chan error, 1)
	go func() {
		_, err := sub.Submit(context.Background(), pickupRequest())
		done <- err
	}()
	<-orders.entered

	miel := models.Product{ID: "miel", Name: "Miel", Price: 4000, Unit: "pot"}
	store.AddToCart(miel, 1, nil)
	store.AddToCart(models.Product{ID: "sac-riz", Name: "Sac de riz", Price: 15000, Unit: "sac"}, 2, nil)

	close(orders.block)
	if err := <-done; err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	for _, item := range orders.payloads[0].Items {
		if item.ProductID == "miel" {
			t.Fatalf("miel was added after the snapshot and must not be ordered")
		}
	}
	if item, ok := store.GetCartItem("miel", ""); !ok || item.Quantity != 1 {
		t.Fatalf("expected miel to stay in the cart, got %+v %v", item, ok)
	}
	if item, ok := store.GetCartItem("sac-riz", ""); !ok || item.Quantity != 2 {
		t.Fatalf("expected the two rice sacks added later to remain, got %+v %v", item, ok)
	}
	if store.IsInCart("epices", "g") {
		t.Fatalf("ordered epices line must be removed")
	}
}

func TestStatusCarriesTrimmedCustomerAndDeliveryLabel(t *testing.T) {
	sub := NewSubmission(&stubOrders{}, filledCart(t), 5)

	if _, err := sub.Submit(context.Background(), homeRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status := sub.Status()
	if status.CustomerName != "Amani" || status.DeliveryType != "Livraison" || status.TotalAmount != 20005 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestSubmitRejectsInvalidForms(t *testing.T) {
	cases := map[string]Request{
		"delivery type": {DeliveryType: "drone", Customer: Customer{Name: "A", Phone: "1"}},
		"name":          {DeliveryType: "pickup", Customer: Customer{Name: "  ", Phone: "1"}},
		"phone":         {DeliveryType: "pickup", Customer: Customer{Name: "A"}},
		"address":       {DeliveryType: "home", Customer: Customer{Name: "A", Phone: "1"}},
		"address parts": {DeliveryType: "home", Customer: Customer{Name: "A", Phone: "1"}, Address: &Address{Commune: "Gombe"}},
	}

	for name, req := range cases {
		orders := &stubOrders{}
		sub := NewSubmission(orders, filledCart(t), 5)
		_, err := sub.Submit(context.Background(), req)
		if !IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
		if orders.calls != 0 {
			t.Fatalf("%s: order service must not be called", name)
		}
		if sub.Status().State != StateIdle {
			t.Fatalf("%s: expected idle state", name)
		}
	}
}

func TestSubmitRefusesEmptyCart(t *testing.T) {
	orders := &stubOrders{}
	store := cart.NewStore(context.Background(), cart.NewKVRepository(storage.NewMemoryKV(), cart.StorageKey))
	sub := NewSubmission(orders, store, 5)

	if _, err := sub.Submit(context.Background(), pickupRequest()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatalf("order service must not be called")
	}
}
