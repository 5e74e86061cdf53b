package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/MikeMC777/storefront-ecom/internal/category"
	"github.com/MikeMC777/storefront-ecom/internal/dashboard"
	"github.com/MikeMC777/storefront-ecom/internal/notification"
	prod "github.com/MikeMC777/storefront-ecom/internal/product"
	"github.com/MikeMC777/storefront-ecom/internal/user"
)

func TestHealthAndHeaders(t *testing.T) {
	ts := newTestServer()
	w := ts.do(http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: got %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer()
	hash, err := user.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ts.users.users[customerID] = user.User{ID: customerID, Email: "jane@shop.test", PasswordHash: hash, Role: user.RoleUser}

	{
		w := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "Jane@Shop.test", "password": "correct-horse"})
		if w.Code != http.StatusOK {
			t.Fatalf("login: expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		var resp loginResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		claims, err := ts.iss.Parse(resp.Token)
		if err != nil {
			t.Fatalf("issued token does not parse: %v", err)
		}
		if claims.UserID != customerID || resp.Role != user.RoleUser || resp.ExpiresAt.Before(time.Now()) {
			t.Fatalf("unexpected login response: %+v", resp)
		}
	}

	for name, body := range map[string]map[string]string{
		"wrong password": {"email": "jane@shop.test", "password": "wrong-horse"},
		"unknown email":  {"email": "john@shop.test", "password": "correct-horse"},
	} {
		w := ts.do(http.MethodPost, "/api/auth/login", "", body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@shop.test"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing password: expected 400, got %d", w.Code)
		}
	}
}

func TestUserIDByEmail(t *testing.T) {
	ts := newTestServer()
	ts.users.users[customerID] = user.User{ID: customerID, Email: "jane@shop.test", Role: user.RoleUser}

	cases := []struct {
		name  string
		token string
		email string
		code  int
	}{
		{"anonymous", "", "jane@shop.test", http.StatusUnauthorized},
		{"owner", ts.customerToken(), "jane@shop.test", http.StatusOK},
		{"someone else", ts.customerToken(), "admin@shop.test", http.StatusForbidden},
		{"admin", ts.adminToken(), "jane@shop.test", http.StatusOK},
		{"admin unknown", ts.adminToken(), "ghost@shop.test", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := ts.do(http.MethodGet, "/api/users/email/"+tc.email, tc.token, nil)
		if w.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, w.Code)
		}
		if tc.code == http.StatusOK {
			var resp struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.ID != customerID {
				t.Fatalf("%s: unexpected body %s", tc.name, w.Body.String())
			}
		}
	}
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer()

	if w := ts.do(http.MethodGet, "/api/dashboard-stats", ts.customerToken(), nil); w.Code != http.StatusForbidden {
		t.Fatalf("customer: expected 403, got %d", w.Code)
	}

	w := ts.do(http.MethodGet, "/api/dashboard-stats", ts.adminToken(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var st dashboard.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Revenue.Value != 100 || st.Revenue.PercentChange != 0 || st.Orders.Value != 3 {
		t.Fatalf("unexpected metrics: %+v", st)
	}
	if len(st.WeeklySales) != 7 || st.WeeklySales[6].Name != "Wed" {
		t.Fatalf("unexpected weekly sales: %+v", st.WeeklySales)
	}
}

func TestWishlistRoutes(t *testing.T) {
	ts := newTestServer(catalogFixture()...)
	tok := ts.customerToken()

	if w := ts.do(http.MethodGet, "/api/wishlist", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}
	{
		w := ts.do(http.MethodPost, "/api/wishlist", tok, map[string]string{"productId": keyboardID})
		if w.Code != http.StatusCreated {
			t.Fatalf("add: expected 201, got %d (%s)", w.Code, w.Body.String())
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/wishlist", tok, map[string]string{"productId": keyboardID})
		if w.Code != http.StatusConflict {
			t.Fatalf("add twice: expected 409, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/wishlist", tok, map[string]string{"productId": "nope"})
		if w.Code != http.StatusNotFound {
			t.Fatalf("unknown product: expected 404, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/wishlist", tok, map[string]string{})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("empty product: expected 400, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/wishlist", tok, nil)
		var out []prod.Product
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if w.Code != http.StatusOK || len(out) != 1 || out[0].ID != keyboardID {
			t.Fatalf("list: got %d %s", w.Code, w.Body.String())
		}
	}
	// another user's list is separate
	{
		other := ts.token(adminID, "admin@shop.test", user.RoleUser)
		w := ts.do(http.MethodGet, "/api/wishlist", other, nil)
		if w.Code != http.StatusOK || w.Body.String() != "[]" {
			t.Fatalf("other user: got %d %s", w.Code, w.Body.String())
		}
	}
	{
		if w := ts.do(http.MethodDelete, "/api/wishlist/"+keyboardID, tok, nil); w.Code != http.StatusNoContent {
			t.Fatalf("remove: expected 204, got %d", w.Code)
		}
		if w := ts.do(http.MethodDelete, "/api/wishlist/"+keyboardID, tok, nil); w.Code != http.StatusNotFound {
			t.Fatalf("remove twice: expected 404, got %d", w.Code)
		}
	}
}

func TestNotificationRoutes(t *testing.T) {
	ts := newTestServer()
	ts.notifications.items["n1"] = notification.Notification{ID: "n1", UserID: customerID, Title: "Order placed"}
	ts.notifications.items["n2"] = notification.Notification{ID: "n2", UserID: customerID, Title: "Order shipped"}
	ts.notifications.items["n3"] = notification.Notification{ID: "n3", UserID: adminID, Title: "Welcome"}
	tok := ts.customerToken()

	{
		w := ts.do(http.MethodGet, "/api/notifications", tok, nil)
		var out []notification.Notification
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if w.Code != http.StatusOK || len(out) != 2 {
			t.Fatalf("list: got %d with %d items", w.Code, len(out))
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/notifications/"+customerID+"/unread-count", tok, nil)
		if w.Code != http.StatusOK || w.Body.String() != `{"count":2}` {
			t.Fatalf("unread: got %d %s", w.Code, w.Body.String())
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/notifications/"+adminID+"/unread-count", tok, nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("someone else's count: expected 403, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPut, "/api/notifications/n3/read", tok, nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("someone else's notice: expected 403, got %d", w.Code)
		}
		if ts.notifications.items["n3"].IsRead {
			t.Fatalf("forbidden request must not mark the notice")
		}
	}
	{
		w := ts.do(http.MethodPut, "/api/notifications/n1/read", tok, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("mark read: expected 200, got %d", w.Code)
		}
		if !ts.notifications.items["n1"].IsRead {
			t.Fatalf("notice not marked")
		}
		// again is harmless
		if w := ts.do(http.MethodPut, "/api/notifications/n1/read", tok, nil); w.Code != http.StatusOK {
			t.Fatalf("mark read twice: expected 200, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPut, "/api/notifications/n9/read", tok, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("missing: expected 404, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/notifications/"+customerID+"/unread-count", ts.adminToken(), nil)
		if w.Code != http.StatusOK || w.Body.String() != `{"count":1}` {
			t.Fatalf("admin view: got %d %s", w.Code, w.Body.String())
		}
	}
}

func TestCategoryAndMerchantRoutes(t *testing.T) {
	ts := newTestServer()
	admin := ts.adminToken()

	{
		w := ts.do(http.MethodPost, "/api/categories", admin, map[string]string{"name": "  Smart   Watches "})
		if w.Code != http.StatusCreated {
			t.Fatalf("create category: expected 201, got %d", w.Code)
		}
		var cat category.Category
		if err := json.Unmarshal(w.Body.Bytes(), &cat); err != nil || cat.ID != "smart-watches" || cat.Name != "Smart   Watches" {
			t.Fatalf("unexpected category: %s", w.Body.String())
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/categories", admin, map[string]string{"name": "smart watches"})
		if w.Code != http.StatusConflict {
			t.Fatalf("duplicate category: expected 409, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/categories", admin, map[string]string{"name": "  "})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("blank category: expected 400, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/categories", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("list categories: expected 200, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/merchants", admin, map[string]string{"name": "Acme Audio"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("merchant without email: expected 400, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/merchants", admin, map[string]string{"name": "Acme Audio", "email": "sales@acme.test", "status": "PAUSED"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad merchant status: expected 400, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/merchants", admin, map[string]string{"name": "Acme Audio", "email": "sales@acme.test"})
		if w.Code != http.StatusCreated {
			t.Fatalf("create merchant: expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		if len(ts.merchants.items) != 1 {
			t.Fatalf("merchant not stored")
		}
		for _, m := range ts.merchants.items {
			if m.Status != "ACTIVE" {
				t.Fatalf("expected default status ACTIVE, got %s", m.Status)
			}
		}
	}
}

func TestSetAdmin(t *testing.T) {
	ctx := context.Background()

	// new account
	{
		users := newStubUsers()
		if err := setAdmin(ctx, users, "boss@shop.test", "s3cret-pass"); err != nil {
			t.Fatalf("setAdmin: %v", err)
		}
		u, err := users.GetByEmail(ctx, "boss@shop.test")
		if err != nil {
			t.Fatalf("account not created: %v", err)
		}
		if u.Role != user.RoleAdmin || !user.CheckPassword(u.PasswordHash, "s3cret-pass") {
			t.Fatalf("unexpected account: %+v", u)
		}
	}

	// existing customer is promoted and gets the new password
	{
		users := newStubUsers(user.User{ID: customerID, Email: "jane@shop.test", PasswordHash: "old", Role: user.RoleUser})
		if err := setAdmin(ctx, users, "jane@shop.test", "new-pass-123"); err != nil {
			t.Fatalf("setAdmin: %v", err)
		}
		u := users.users[customerID]
		if u.Role != user.RoleAdmin || !user.CheckPassword(u.PasswordHash, "new-pass-123") {
			t.Fatalf("account not promoted: %+v", u)
		}
		if len(users.users) != 1 {
			t.Fatalf("expected no new account")
		}
	}
}

func TestUserAdminRoutes(t *testing.T) {
	ts := newTestServer()
	admin := ts.adminToken()

	var created user.User
	{
		w := ts.do(http.MethodPost, "/api/users", admin, map[string]string{"email": "Ana@Shop.test", "password": "s3cret-pass"})
		if w.Code != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if created.Email != "ana@shop.test" || created.Role != user.RoleUser {
			t.Fatalf("unexpected user: %+v", created)
		}
		if body := w.Body.String(); strings.Contains(body, "s3cret") || strings.Contains(body, "$2a$") {
			t.Fatalf("password material leaked: %s", body)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/users", admin, map[string]string{"email": "ana@shop.test", "password": "another-pass"})
		if w.Code != http.StatusConflict {
			t.Fatalf("duplicate email: expected 409, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPost, "/api/users", admin, map[string]string{"email": "bob@shop.test", "password": "short"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("short password: expected 400, got %d", w.Code)
		}
	}
	{
		w := ts.do(http.MethodPut, "/api/users/"+created.ID, admin, map[string]string{"role": "admin"})
		if w.Code != http.StatusOK {
			t.Fatalf("update: expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		if ts.users.users[created.ID].Role != user.RoleAdmin {
			t.Fatalf("role not updated")
		}
	}
	{
		w := ts.do(http.MethodGet, "/api/users/"+created.ID, ts.customerToken(), nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("customer: expected 403, got %d", w.Code)
		}
	}
	{
		if w := ts.do(http.MethodDelete, "/api/users/"+created.ID, admin, nil); w.Code != http.StatusNoContent {
			t.Fatalf("delete: expected 204, got %d", w.Code)
		}
		if w := ts.do(http.MethodGet, "/api/users/"+created.ID, admin, nil); w.Code != http.StatusNotFound {
			t.Fatalf("get deleted: expected 404, got %d", w.Code)
		}
	}
}
