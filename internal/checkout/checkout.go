// Package checkout turns the shopper's cart and contact form into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/MikeMC777/storefront-ecom/internal/cart"
	"github.com/MikeMC777/storefront-ecom/internal/order"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidTotal   = errors.New("cart total must be positive")
	ErrDuplicateOrder = errors.New("this order was already placed")
	ErrMissingOrderID = errors.New("order created without an id")
)

// Form is the contact and shipping form filled in at checkout.
type Form = order.Contact

// ValidationError lists every rule the form violates.
type ValidationError struct {
	Fields []order.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+" "+f.Message)
	}
	return "invalid checkout form: " + strings.Join(msgs, "; ")
}

// CreateError is a failed order creation reported by the server.
type CreateError struct {
	Status  int
	Message string
	Details string
}

func (e *CreateError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("create order failed (%d): %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("create order failed (%d): %s", e.Status, e.Message)
}

// API is the part of the storefront API the checkout uses.
type API interface {
	LookupUserID(ctx context.Context, email string) (string, error)
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.WithItems, error)
}

// statusError is implemented by API errors that carry the server's reply.
type statusError interface {
	error
	StatusCode() int
	ServerMessage() string
	DetailText() string
}

type Flow struct {
	API  API
	Cart *cart.Store
	Log  *slog.Logger
}

// Submit validates form, places the order for the cart's lines and clears the
// cart. Nothing is sent when the form or the cart is invalid.
func (f *Flow) Submit(ctx context.Context, form Form, sessionEmail string) (string, error) {
	form = form.Normalized()
	if errs := form.Validate(); len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}

	lines := f.Cart.Lines()
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}
	if !f.Cart.Totals().Total.IsPositive() {
		return "", ErrInvalidTotal
	}

	req := order.CreateOrderRequest{Contact: form, Items: make([]order.CreateOrderItem, 0, len(lines))}
	for _, l := range lines {
		req.Items = append(req.Items, order.CreateOrderItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	if email := strings.TrimSpace(sessionEmail); email != "" {
		id, err := f.API.LookupUserID(ctx, email)
		switch {
		case err != nil:
			f.logger().Warn("[CHECKOUT] user lookup failed, ordering as guest", "email", email, "err", err)
		case id != "":
			req.UserID = &id
		}
	}

	created, err := f.API.CreateOrder(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if created == nil || created.ID == "" {
		return "", ErrMissingOrderID
	}

	if err := f.Cart.Clear(); err != nil {
		return created.ID, pkgerrors.Wrap(err, "clear cart")
	}
	return created.ID, nil
}

func classify(err error) error {
	var se statusError
	if !errors.As(err, &se) {
		return pkgerrors.Wrap(err, "create order")
	}
	if se.StatusCode() == http.StatusConflict {
		return ErrDuplicateOrder
	}
	return &CreateError{Status: se.StatusCode(), Message: se.ServerMessage(), Details: se.DetailText()}
}

func (f *Flow) logger() *slog.Logger {
	if f.Log != nil {
		return f.Log
	}
	return slog.Default()
}
