package order

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// next lists the statuses reachable from each status in one step.
var next = map[string][]string{
	StatusPending:    {StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  nil,
	StatusCancelled:  nil,
}

func ValidStatus(s string) bool {
	_, ok := next[s]
	return ok
}

// CheckTransition reports whether an order in status from may move to to.
// Staying in the same status is always allowed.
func CheckTransition(from, to string) error {
	if !ValidStatus(to) {
		return ErrInvalidStatus
	}
	if from == to {
		return nil
	}
	for _, s := range next[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

type Order struct {
	ID string `json:"id"`
	Contact
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	UserID    *string         `json:"userId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Total sums unit price times quantity over items.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Fingerprint identifies an order by who placed it and what it contains, so
// that a resubmitted checkout can be recognised.
func Fingerprint(c Contact, items []Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s:%d", it.ProductID, it.Quantity))
	}
	sort.Strings(lines)

	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n%s\n", strings.ToLower(strings.TrimSpace(c.Email)),
		strings.TrimSpace(c.Address), strings.TrimSpace(c.PostalCode))
	for _, l := range lines {
		fmt.Fprintln(h, l)
	}
	return hex.EncodeToString(h.Sum(nil))
}
