package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rocketshoes-cart/internal/models"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when the storefront API answers 404.
	ErrNotFound = errors.New("resource not found")
	// ErrUnexpectedStatus is returned for any other non-2xx answer.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Client talks to the storefront API that serves /stock and /products.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetStock fetches GET /stock/{id}.
func (c *Client) GetStock(ctx context.Context, productID int) (*models.StockRecord, error) {
	var stock models.StockRecord
	if err := c.get(ctx, fmt.Sprintf("/stock/%d", productID), &stock); err != nil {
		return nil, errors.Wrapf(err, "get stock for product %d", productID)
	}
	if stock.ProductID == 0 {
		stock.ProductID = productID
	}
	return &stock, nil
}

// GetProduct fetches GET /products/{id}. The returned amount is whatever the API
// sent; callers decide the quantity held.
func (c *Client) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	var product models.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &product); err != nil {
		return nil, errors.Wrapf(err, "get product %d", productID)
	}
	return &product, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Wrapf(ErrUnexpectedStatus, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
