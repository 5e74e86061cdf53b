package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront-ecom/internal/order"
)

func TestCreateOrder_SendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var req order.CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ana", req.Name)
		require.Len(t, req.Items, 1)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"o-1","status":"pending","total":"20","items":[{"id":"i-1","orderId":"o-1","productId":"p1","quantity":2,"unitPrice":"10"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL).WithToken("tok")
	out, err := c.CreateOrder(context.Background(), order.CreateOrderRequest{
		Contact: order.Contact{Name: "Ana"},
		Items:   []order.CreateOrderItem{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "o-1", out.ID)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Items[0].Quantity)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"duplicate order"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateOrder(context.Background(), order.CreateOrderRequest{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.StatusCode())
	assert.Equal(t, "duplicate order", se.Message)
}

func TestRemoveFromWishlist_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/wishlist/p1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).RemoveFromWishlist(context.Background(), "p1"))
}
