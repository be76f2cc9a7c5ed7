package inventory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikolayk812/cartkeeper/internal/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"title":"Running shoe","price":179.9,"image":"https://img/1.jpg"}`))
	})
	mux.HandleFunc("GET /api/stock/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"amount":3}`))
	})
	mux.HandleFunc("GET /api/stock/2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"amount":`))
	})
	mux.HandleFunc("GET /api/stock/3", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /api/stock/4", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestClient_GetProduct(t *testing.T) {
	server := newServer(t)

	client, err := inventory.NewClient(server.URL+"/api/", time.Second)
	require.NoError(t, err)

	product, err := client.GetProduct(t.Context(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), product.ID)
	assert.Equal(t, "Running shoe", product.Title)
	assert.True(t, decimal.RequireFromString("179.9").Equal(product.Price))
	assert.Equal(t, "https://img/1.jpg", product.Image)

	_, err = client.GetProduct(t.Context(), 99)
	require.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestClient_GetStock(t *testing.T) {
	server := newServer(t)

	client, err := inventory.NewClient(server.URL+"/api", 200*time.Millisecond)
	require.NoError(t, err)

	tests := []struct {
		name       string
		productID  int64
		wantAmount int
		wantError  string
	}{
		{
			name:       "existing stock: ok",
			productID:  1,
			wantAmount: 3,
		},
		{
			name:      "truncated body: error",
			productID: 2,
			wantError: "json.Decode",
		},
		{
			name:      "server error: error",
			productID: 3,
			wantError: "unexpected status 500",
		},
		{
			name:      "slow server: timeout",
			productID: 4,
			wantError: "httpClient.Do",
		},
		{
			name:      "unknown product: not found",
			productID: 5,
			wantError: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, err := client.GetStock(t.Context(), tt.productID)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.productID, stock.ID)
			assert.Equal(t, tt.wantAmount, stock.Amount)
		})
	}
}

func TestClient_CancelledContext(t *testing.T) {
	server := newServer(t)

	client, err := inventory.NewClient(server.URL+"/api", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = client.GetStock(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_EmptyURL(t *testing.T) {
	_, err := inventory.NewClient("", time.Second)
	require.EqualError(t, err, "baseURL is empty")
}
