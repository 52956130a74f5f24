// Package catalog talks to the remote catalog and order service.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"farmstore/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

const (
	fallbackAPIMessage     = "Erreur API"
	fallbackNetworkMessage = "Erreur réseau"
)

// APIError carries the message the remote service sent with a non-2xx reply.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient targets baseURL + "/api". token, when set, is sent as a bearer
// token on every call.
func NewClient(baseURL string, httpClient *http.Client, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    httpClient,
		token:   token,
	}
}

func (c *Client) FetchAllProducts(ctx context.Context) ([]models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products", nil, &raw); err != nil {
		return nil, err
	}

	products, err := decodeProductList(raw)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]models.Product, 0, len(products))
	for i := range products {
		p := products[i]
		if dropped := p.Normalize(); len(dropped) > 0 {
			log.Printf("[CATALOG] [WARN] product %s: dropped variants %v", p.ID, dropped)
		}
		if p.ID == "" {
			log.Printf("[CATALOG] [WARN] skipping product %q without id", p.Name)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) FetchProductByID(ctx context.Context, id string) (models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Product{}, ErrProductNotFound
	}

	var p models.Product
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}

	if dropped := p.Normalize(); len(dropped) > 0 {
		log.Printf("[CATALOG] [WARN] product %s: dropped variants %v", p.ID, dropped)
	}
	if p.ID == "" {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (c *Client) CreateOrder(ctx context.Context, payload models.OrderPayload) (models.OrderConfirmation, error) {
	var conf models.OrderConfirmation
	if err := c.do(ctx, http.MethodPost, "/orders", payload, &conf); err != nil {
		return models.OrderConfirmation{}, err
	}
	return conf, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[CATALOG] [ERROR] %s %s: %v", method, path, err)
		return &APIError{Status: http.StatusBadGateway, Message: fallbackNetworkMessage}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFrom(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func apiErrorFrom(status int, data []byte) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return &APIError{Status: status, Message: fallbackNetworkMessage}
	}

	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		msg = strings.TrimSpace(body.Error)
	}
	if msg == "" {
		msg = fallbackAPIMessage
	}
	return &APIError{Status: status, Message: msg}
}

// decodeProductList accepts a bare array or an object wrapping it in "data"
// or "products".
func decodeProductList(raw json.RawMessage) ([]models.Product, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var products []models.Product
		err := json.Unmarshal(trimmed, &products)
		return products, err
	}

	var wrapped struct {
		Data     []models.Product `json:"data"`
		Products []models.Product `json:"products"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return wrapped.Products, nil
}
