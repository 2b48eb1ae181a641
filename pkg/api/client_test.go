package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"amount":3}`))
	})
	mux.HandleFunc("/stock/2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"amount":7}`))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"id":1,"name":"Tênis de Caminhada","price":179.9,"imageUrl":"https://example.com/1.jpg"}`))
	})
	mux.HandleFunc("/products/500", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/products/3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestGetStock(t *testing.T) {
	client := NewClient(newTestServer(t).URL+"/", time.Second)

	stock, err := client.GetStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stock.ProductID)
	assert.Equal(t, 3, stock.Amount)
}

func TestGetStockFillsMissingID(t *testing.T) {
	client := NewClient(newTestServer(t).URL, time.Second)

	stock, err := client.GetStock(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stock.ProductID)
	assert.Equal(t, 7, stock.Amount)
}

func TestGetProduct(t *testing.T) {
	client := NewClient(newTestServer(t).URL, time.Second)

	product, err := client.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, product.ID)
	assert.Equal(t, "Tênis de Caminhada", product.Name)
	assert.Equal(t, 179.9, product.Price)
	assert.Equal(t, "https://example.com/1.jpg", product.ImageURL)
	assert.Zero(t, product.Amount)
}

func TestGetProductNotFound(t *testing.T) {
	client := NewClient(newTestServer(t).URL, time.Second)

	_, err := client.GetProduct(context.Background(), 404)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestGetProductServerError(t *testing.T) {
	client := NewClient(newTestServer(t).URL, time.Second)

	_, err := client.GetProduct(context.Background(), 500)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus), "got %v", err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGetProductMalformedBody(t *testing.T) {
	client := NewClient(newTestServer(t).URL, time.Second)

	_, err := client.GetProduct(context.Background(), 3)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestGetStockHonorsContext(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL, 5*time.Second).GetStock(ctx, 1)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestGetStockUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).GetStock(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
