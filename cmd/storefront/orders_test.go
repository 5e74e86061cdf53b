package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-ecom/internal/httpx"
	ord "github.com/MikeMC777/storefront-ecom/internal/order"
)

func orderBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"name":        "Jane",
		"lastname":    "Doe",
		"phone":       "+1 (555) 010-0199",
		"email":       "jane@shop.test",
		"company":     "Acme Inc",
		"address":     "742 Evergreen Terrace",
		"apartment":   "2B",
		"postalCode":  "90210",
		"city":        "Springfield",
		"country":     "United States",
		"orderNotice": "leave at the door",
		"items":       items,
	}
}

func line(productID string, qty int) map[string]any {
	return map[string]any{"productId": productID, "quantity": qty}
}

func decodeOrder(t *testing.T, body []byte) ord.WithItems {
	t.Helper()
	var out ord.WithItems
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode order: %v (%s)", err, body)
	}
	return out
}

func TestCreateOrder(t *testing.T) {
	ts := newTestServer(catalogFixture()...)

	// header and lines priced from the catalog
	{
		w := ts.do(http.MethodPost, "/api/orders", "", orderBody(line(keyboardID, 2), line(mouseID, 1)))
		if w.Code != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		got := decodeOrder(t, w.Body.Bytes())
		if got.ID == "" || got.Status != ord.StatusPending {
			t.Fatalf("unexpected header: %+v", got.Order)
		}
		if !got.Total.Equal(decimal.RequireFromString("424.80")) {
			t.Fatalf("expected total 424.80, got %s", got.Total)
		}
		if len(got.Items) != 2 || got.Items[0].OrderID != got.ID || !got.Items[1].UnitPrice.Equal(decimal.NewFromInt(25)) {
			t.Fatalf("unexpected items: %+v", got.Items)
		}
		if got.UserID != nil {
			t.Fatalf("anonymous order must not carry a user")
		}
		if len(ts.orders.items[got.ID]) != 2 {
			t.Fatalf("items not stored with the header")
		}
	}

	// the same content again is rejected
	{
		w := ts.do(http.MethodPost, "/api/orders", "", orderBody(line(mouseID, 1), line(keyboardID, 2)))
		if w.Code != http.StatusConflict {
			t.Fatalf("duplicate: expected 409, got %d", w.Code)
		}
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	ts := newTestServer(catalogFixture()...)

	// contact rules are reported per field
	{
		body := orderBody(line(keyboardID, 1))
		body["email"] = "jane@localhost"
		body["phone"] = "555-0199"
		w := ts.do(http.MethodPost, "/api/orders", "", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("contact: expected 400, got %d", w.Code)
		}
		var resp struct {
			Error   string           `json:"error"`
			Details []ord.FieldError `json:"details"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		fields := map[string]bool{}
		for _, d := range resp.Details {
			fields[d.Field] = true
		}
		if len(resp.Details) != 2 || !fields["email"] || !fields["phone"] {
			t.Fatalf("unexpected details: %+v", resp.Details)
		}
		if len(ts.orders.orders) != 0 {
			t.Fatalf("nothing should be stored")
		}
	}

	cases := []struct {
		name string
		body map[string]any
		code int
	}{
		{"no items", orderBody(), http.StatusBadRequest},
		{"zero quantity", orderBody(line(keyboardID, 0)), http.StatusBadRequest},
		{"unknown product", orderBody(line("44444444-4444-4444-8444-444444444444", 1)), http.StatusNotFound},
		{"repeated product", orderBody(line(keyboardID, 1), line(mouseID, 1), line(keyboardID, 2)), http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := ts.do(http.MethodPost, "/api/orders", "", tc.body)
		if w.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.code, w.Code, w.Body.String())
		}
	}

	// a free order is not an order
	{
		ts.products.items[mouseID].Price = decimal.Zero
		w := ts.do(http.MethodPost, "/api/orders", "", orderBody(line(mouseID, 3)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("zero total: expected 400, got %d", w.Code)
		}
	}
}

func TestCreateOrderOwnership(t *testing.T) {
	ts := newTestServer(catalogFixture()...)

	// a signed-in customer's order is linked to them
	{
		w := ts.do(http.MethodPost, "/api/orders", ts.customerToken(), orderBody(line(keyboardID, 1)))
		if w.Code != http.StatusCreated {
			t.Fatalf("customer: expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		got := decodeOrder(t, w.Body.Bytes())
		if got.UserID == nil || *got.UserID != customerID {
			t.Fatalf("expected order linked to %s, got %v", customerID, got.UserID)
		}
	}

	// a customer cannot order for someone else
	{
		body := orderBody(line(monitorID, 1))
		body["userId"] = adminID
		w := ts.do(http.MethodPost, "/api/orders", ts.customerToken(), body)
		if w.Code != http.StatusForbidden {
			t.Fatalf("other user: expected 403, got %d", w.Code)
		}
	}

	// an admin can, but only for a user the directory knows
	{
		body := orderBody(line(monitorID, 1))
		body["userId"] = customerID
		w := ts.do(http.MethodPost, "/api/orders", ts.adminToken(), body)
		if w.Code != http.StatusCreated {
			t.Fatalf("admin on behalf: expected 201, got %d (%s)", w.Code, w.Body.String())
		}
	}
	{
		body := orderBody(line(monitorID, 2))
		body["userId"] = "55555555-5555-4555-8555-555555555555"
		w := ts.do(http.MethodPost, "/api/orders", ts.adminToken(), body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("unknown user: expected 400, got %d", w.Code)
		}
	}

	// an anonymous caller cannot attach an order to an account
	{
		before := len(ts.orders.orders)
		body := orderBody(line(mouseID, 4))
		body["userId"] = customerID
		w := ts.do(http.MethodPost, "/api/orders", "", body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("anonymous with userId: expected 401, got %d", w.Code)
		}
		if len(ts.orders.orders) != before {
			t.Fatalf("anonymous order must not be stored")
		}
	}

	// a forged token is rejected before the handler runs
	{
		w := ts.do(http.MethodPost, "/api/orders", "not-a-token", orderBody(line(keyboardID, 3)))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("bad token: expected 401, got %d", w.Code)
		}
	}
}

func placeOrder(t *testing.T, ts *testServer, qty int) ord.WithItems {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/orders", "", orderBody(line(keyboardID, qty)))
	if w.Code != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	return decodeOrder(t, w.Body.Bytes())
}

func TestGetOrder(t *testing.T) {
	ts := newTestServer(catalogFixture()...)
	placed := placeOrder(t, ts, 1)

	{
		w := ts.do(http.MethodGet, "/api/orders/"+placed.ID, ts.customerToken(), nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("customer: expected 403, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/orders/"+placed.ID, ts.adminToken(), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("get: expected 200, got %d", w.Code)
		}
		got := decodeOrder(t, w.Body.Bytes())
		if got.ID != placed.ID || len(got.Items) != 1 || got.Email != "jane@shop.test" {
			t.Fatalf("unexpected order: %+v", got)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/order-product/"+placed.ID, ts.adminToken(), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("items: expected 200, got %d", w.Code)
		}
		var items []ord.Item
		if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(items) != 1 || items[0].ProductID != keyboardID {
			t.Fatalf("unexpected items: %+v", items)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/orders/nope", ts.adminToken(), nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("missing: expected 404, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/orders?status=lost", ts.adminToken(), nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad status filter: expected 400, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/orders?status=pending", ts.adminToken(), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("list: expected 200, got %d", w.Code)
		}
		var out []ord.Order
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("expected 1 pending order, got %d", len(out))
		}
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	ts := newTestServer(catalogFixture()...)
	placed := placeOrder(t, ts, 1)
	path := "/api/orders/" + placed.ID

	steps := []struct {
		status string
		code   int
	}{
		{"processing", http.StatusOK},
		{"processing", http.StatusOK},
		{"pending", http.StatusConflict},
		{"lost", http.StatusBadRequest},
		{"Delivered", http.StatusOK},
		{"cancelled", http.StatusConflict},
	}
	for _, s := range steps {
		w := ts.do(http.MethodPut, path, ts.adminToken(), map[string]any{"status": s.status})
		if w.Code != s.code {
			t.Fatalf("-> %s: expected %d, got %d (%s)", s.status, s.code, w.Code, w.Body.String())
		}
	}
	if got := ts.orders.orders[placed.ID].Status; got != ord.StatusDelivered {
		t.Fatalf("expected delivered, got %s", got)
	}
}

func TestUpdateOrderContact(t *testing.T) {
	ts := newTestServer(catalogFixture()...)
	placed := placeOrder(t, ts, 1)
	path := "/api/orders/" + placed.ID

	{
		w := ts.do(http.MethodPut, path, ts.adminToken(), map[string]any{"city": "  Shelbyville "})
		if w.Code != http.StatusOK {
			t.Fatalf("edit: expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		got := ts.orders.orders[placed.ID]
		if got.City != "Shelbyville" || got.Name != "Jane" || got.Status != ord.StatusPending {
			t.Fatalf("unexpected order after edit: %+v", got)
		}
	}
	{
		w := ts.do(http.MethodPut, path, ts.adminToken(), map[string]any{"phone": "123"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad phone: expected 400, got %d", w.Code)
		}
		var body httpx.ErrorBody
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Details == nil {
			t.Fatalf("expected field details, got %s", w.Body.String())
		}
		if ts.orders.orders[placed.ID].Phone != "+1 (555) 010-0199" {
			t.Fatalf("rejected edit must not be stored")
		}
	}
}

func TestDeleteOrder(t *testing.T) {
	ts := newTestServer(catalogFixture()...)
	placed := placeOrder(t, ts, 1)

	{
		w := ts.do(http.MethodDelete, "/api/order-product/"+placed.ID, ts.adminToken(), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("delete items: expected 200, got %d", w.Code)
		}
		var resp struct {
			Deleted int64 `json:"deleted"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Deleted != 1 {
			t.Fatalf("expected 1 deleted line, got %s", w.Body.String())
		}
	}
	{
		w := ts.do(http.MethodDelete, "/api/orders/"+placed.ID, ts.adminToken(), nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete: expected 204, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodDelete, "/api/orders/"+placed.ID, ts.adminToken(), nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("second delete: expected 404, got %d", w.Code)
		}
	}
}
