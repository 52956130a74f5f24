package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmstore/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), "secret")
}

func TestFetchAllProductsNormalizes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"_id":"a1","name":"Pommes","price":3.5,"unit":"kg"},
			{"id":"b2","name":"Épices","variants":[{"unit":"g","price":10,"minOrderQuantity":50},{"unit":"g","price":12},{"unit":"kg","price":9000}]},
			{"name":"Sans id"}
		]`))
	})

	products, err := client.FetchAllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a1", products[0].ID)
	assert.Equal(t, "b2", products[1].ID)
	assert.Len(t, products[1].Variants, 2)
}

func TestFetchAllProductsAcceptsWrappedList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"_id":"a1","name":"Pommes"}]}`))
	})

	products, err := client.FetchAllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "a1", products[0].ID)
}

func TestFetchProductByIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Produit introuvable"}`))
	})

	_, err := client.FetchProductByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestFetchProductByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"a1","name":"Pommes","price":3.5,"unit":"kg","stock":-3}`))
	})

	p, err := client.FetchProductByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", p.ID)
	assert.Equal(t, 0, p.Stock)
}

func TestCreateOrderSendsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)

		var payload models.OrderPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Livraison", payload.DeliveryType)
		assert.Equal(t, 20005.0, payload.TotalAmount)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"o-9","orderNumber":1042}`))
	})

	conf, err := client.CreateOrder(context.Background(), models.OrderPayload{
		DeliveryType: "Livraison",
		TotalAmount:  20005,
		Items:        []models.OrderItem{{ProductID: "a1", Quantity: 1, Price: 20000}},
	})
	require.NoError(t, err)
	assert.Equal(t, "o-9", conf.OrderID)
	assert.Equal(t, "1042", conf.OrderNumber)
}

func TestCreateOrderSurfacesServiceMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Stock insuffisant"}`))
	})

	_, err := client.CreateOrder(context.Background(), models.OrderPayload{})
	require.Error(t, err)
	assert.Equal(t, "Stock insuffisant", err.Error())
}

func TestErrorFallbackMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		if r.URL.Path == "/api/orders" {
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.CreateOrder(context.Background(), models.OrderPayload{})
	assert.EqualError(t, err, "Erreur API")

	_, err = client.FetchAllProducts(context.Background())
	assert.EqualError(t, err, "Erreur réseau")
}
