package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/webshop/internal/orders"
)

func server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/hal+json")
		_, _ = w.Write([]byte(`{"_links":{"self":{"href":"/products"}},"_embedded":{"productList":[
			{"id":"vitamin-d-90-100","name":"D-vitamin, 90ug, 100 stk","price":116,"currency":"DKK","rebateQuantity":3,"rebatePercent":10,"upsellProduct":null}
		]}}`))
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"about:blank","title":"Not Found","status":404,"detail":"Could not find product ` + r.PathValue("id") + `"}`))
	})
	mux.HandleFunc("PUT /orders/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/hal+json")
		_, _ = w.Write([]byte(`{"id":` + r.PathValue("id") + `,"totalPrice":313.2,"status":"COMPLETED","currency":"DKK"}`))
	})
	mux.HandleFunc("DELETE /orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"type":"about:blank","title":"Method Not Allowed","status":405,"detail":"Failed to cancel order ` + r.PathValue("id") + ` with status COMPLETED"}`))
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListProducts(t *testing.T) {
	c := New(server(t).URL)

	list, err := c.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "vitamin-d-90-100", list[0].ID)
	assert.Equal(t, "116", list[0].Price.String())
}

func TestClient_GetProduct_NotFound(t *testing.T) {
	c := New(server(t).URL)

	_, err := c.GetProduct(context.Background(), "ghost")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.EqualError(t, err, "404 Not Found: Could not find product ghost")
}

func TestClient_CompleteOrder(t *testing.T) {
	c := New(server(t).URL)

	order, err := c.CompleteOrder(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, int64(9), order.ID)
	assert.Equal(t, orders.StatusCompleted, order.Status)
	assert.Equal(t, "313.2", order.TotalPrice.String())
}

func TestClient_CancelOrder_Illegal(t *testing.T) {
	c := New(server(t).URL)

	_, err := c.CancelOrder(context.Background(), 9)

	assert.EqualError(t, err, "405 Method Not Allowed: Failed to cancel order 9 with status COMPLETED")
}

func TestClient_GetOrder_NoProblemBody(t *testing.T) {
	c := New(server(t).URL)

	_, err := c.GetOrder(context.Background(), 9)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}
