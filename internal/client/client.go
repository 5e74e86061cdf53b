// Package client talks to the storefront HTTP API on behalf of a shopper.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/MikeMC777/storefront-ecom/internal/order"
	"github.com/MikeMC777/storefront-ecom/internal/product"
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *StatusError) StatusCode() int { return e.Status }

func (e *StatusError) ServerMessage() string { return e.Message }

// DetailText returns the raw details payload, if the server sent one.
func (e *StatusError) DetailText() string {
	if len(e.Details) == 0 || string(e.Details) == "null" {
		return ""
	}
	return string(e.Details)
}

type Client struct {
	base  string
	http  *http.Client
	token string
}

func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a copy of c that authenticates as the given session.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Product(ctx context.Context, id string) (*product.Product, error) {
	var out product.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupUserID resolves the id of the user owning email.
func (c *Client) LookupUserID(ctx context.Context, email string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/email/"+url.PathEscape(email), nil, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.WithItems, error) {
	var out order.WithItems
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Wishlist(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	if err := c.do(ctx, http.MethodGet, "/api/wishlist", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) (*product.Product, error) {
	var out product.Product
	body := map[string]string{"productId": productID}
	if err := c.do(ctx, http.MethodPost, "/api/wishlist", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/wishlist/"+url.PathEscape(productID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb struct {
			Error   string          `json:"error"`
			Details json.RawMessage `json:"details"`
		}
		_ = json.NewDecoder(res.Body).Decode(&eb)
		if eb.Error == "" {
			eb.Error = http.StatusText(res.StatusCode)
		}
		return &StatusError{Status: res.StatusCode, Message: eb.Error, Details: eb.Details}
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return errors.Wrap(json.NewDecoder(res.Body).Decode(out), "decode response")
}
