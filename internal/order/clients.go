package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/storefront-ecom/internal/product"
	userpb "github.com/MikeMC777/storefront-ecom/internal/userpb"
)

var (
	ErrEmptyOrder      = errors.New("order has no items")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrDuplicateLine   = errors.New("each product may appear only once per order")
)

// ProductNotFoundError names the first line whose product does not exist.
type ProductNotFoundError struct{ ProductID string }

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Ext groups what order handling needs from outside the orders tables.
type Ext struct {
	User     userpb.UserDirectoryClient
	Products product.Repository
	conn     *grpc.ClientConn
}

// NewExt dials the user directory at userAddr. The connection is lazy; RPCs
// wait for it to become ready.
func NewExt(userAddr string, products product.Repository) (*Ext, error) {
	conn, err := grpc.NewClient(userAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "dial user directory %s", userAddr)
	}
	return &Ext{
		User:     userpb.NewUserDirectoryClient(conn),
		Products: products,
		conn:     conn,
	}, nil
}

func (e *Ext) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

func (e *Ext) ValidateUser(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out, err := e.User.ValidateUser(ctx, wrapperspb.String(id), grpc.WaitForReady(true))
	if err != nil {
		return false, pkgerrors.Wrap(err, "validate user")
	}
	return out.GetValue(), nil
}

// LookupUserID resolves an email to a user id; ok is false when no user has it.
func (e *Ext) LookupUserID(ctx context.Context, email string) (id string, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out, err := e.User.LookupByEmail(ctx, wrapperspb.String(email), grpc.WaitForReady(true))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(err, "lookup user")
	}
	return out.GetValue(), true, nil
}

// PriceItems turns requested lines into order items priced from the catalog
// and returns their total.
func (e *Ext) PriceItems(ctx context.Context, req []CreateOrderItem) ([]Item, decimal.Decimal, error) {
	if len(req) == 0 {
		return nil, decimal.Zero, ErrEmptyOrder
	}
	ids := make([]string, 0, len(req))
	seen := make(map[string]bool, len(req))
	for _, it := range req {
		if it.Quantity <= 0 {
			return nil, decimal.Zero, ErrInvalidQuantity
		}
		if seen[it.ProductID] {
			return nil, decimal.Zero, ErrDuplicateLine
		}
		seen[it.ProductID] = true
		ids = append(ids, it.ProductID)
	}
	found, err := e.Products.GetMany(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	items := make([]Item, 0, len(req))
	for _, it := range req {
		p, ok := found[it.ProductID]
		if !ok {
			return nil, decimal.Zero, &ProductNotFoundError{ProductID: it.ProductID}
		}
		items = append(items, Item{ProductID: p.ID, Quantity: it.Quantity, UnitPrice: p.Price})
	}
	return items, Total(items), nil
}
