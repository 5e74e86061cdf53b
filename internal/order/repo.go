package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-ecom/internal/db"
	"github.com/MikeMC777/storefront-ecom/internal/notification"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicate is returned when the same order was placed within the
	// duplicate window.
	ErrDuplicate = errors.New("duplicate order")
	// ErrStatusChanged means the order's status moved under a concurrent edit.
	ErrStatusChanged = errors.New("order status changed concurrently")
	ErrUnknownUser   = errors.New("unknown user")
)

type Filter struct {
	Status string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	Get(ctx context.Context, id string) (*Order, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	// Update writes o provided its stored status still equals prevStatus.
	Update(ctx context.Context, o *Order, prevStatus string) error
	Delete(ctx context.Context, id string) (bool, error)
	DeleteItems(ctx context.Context, orderID string) (int64, error)
}

type PGRepo struct {
	db     *pgxpool.Pool
	window time.Duration
}

// NewPGRepo returns a repository that rejects an order whose fingerprint was
// already stored less than window ago. A zero window disables the check.
func NewPGRepo(db *pgxpool.Pool, window time.Duration) *PGRepo {
	return &PGRepo{db: db, window: window}
}

const orderColumns = `id, name, lastname, phone, email, company, address, apartment, postal_code,
	city, country, order_notice, status, total::text, user_id::text, created_at, updated_at`

// Create stores the header, its lines and the owner's notification in one
// transaction. o.ID, item ids and the fingerprint are filled in when empty.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	fingerprint := Fingerprint(o.Contact, items)

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return pkgerrors.Wrap(err, "begin order tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.window > 0 {
		// serialises concurrent submissions of the same content
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, fingerprint); err != nil {
			return pkgerrors.Wrap(err, "lock order fingerprint")
		}
		var dup bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM customer_orders
				WHERE fingerprint = $1 AND created_at > NOW() - make_interval(secs => $2)
			)
		`, fingerprint, r.window.Seconds()).Scan(&dup); err != nil {
			return pkgerrors.Wrap(err, "check duplicate order")
		}
		if dup {
			return ErrDuplicate
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO customer_orders (id, name, lastname, phone, email, company, address, apartment,
		                             postal_code, city, country, order_notice, status, total, user_id,
		                             fingerprint, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14::numeric,$15,$16,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.Name, o.Lastname, o.Phone, o.Email, o.Company, o.Address, o.Apartment,
		o.PostalCode, o.City, o.Country, o.OrderNotice, o.Status, o.Total.String(), o.UserID,
		fingerprint).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrUnknownUser
		}
		return pkgerrors.Wrap(err, "insert order")
	}

	for i := range items {
		it := &items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5::numeric)
		`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice.String()); err != nil {
			return pkgerrors.Wrapf(err, "insert order item %s", it.ProductID)
		}
	}

	if o.UserID != nil {
		msg := fmt.Sprintf("Your order %s for %s was received.", o.ID, o.Total.StringFixed(2))
		if err := notification.Insert(ctx, tx, *o.UserID, "Order placed", msg); err != nil {
			return err
		}
	}

	return pkgerrors.Wrap(tx.Commit(ctx), "commit order")
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM customer_orders WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "get order")
	}
	return o, nil
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	items := []Item{}
	if _, err := uuid.Parse(orderID); err != nil {
		return items, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price::text
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "get order items")
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return nil, pkgerrors.Wrap(err, "scan order item")
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, pkgerrors.Wrap(err, "parse unit price")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Order, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM customer_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list orders")
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "scan order")
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, o *Order, prevStatus string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE customer_orders
		SET name = $3, lastname = $4, phone = $5, email = $6, company = $7, address = $8,
		    apartment = $9, postal_code = $10, city = $11, country = $12, order_notice = $13,
		    status = $14, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at
	`, o.ID, prevStatus, o.Name, o.Lastname, o.Phone, o.Email, o.Company, o.Address,
		o.Apartment, o.PostalCode, o.City, o.Country, o.OrderNotice, o.Status).Scan(&o.UpdatedAt)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return pkgerrors.Wrap(err, "update order")
	}
	if _, err := r.Get(ctx, o.ID); err != nil {
		return err
	}
	return ErrStatusChanged
}

// Delete removes the lines and then the header in one transaction.
func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, pkgerrors.Wrap(err, "begin delete tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return false, pkgerrors.Wrap(err, "delete order items")
	}
	tag, err := tx.Exec(ctx, `DELETE FROM customer_orders WHERE id = $1`, id)
	if err != nil {
		return false, pkgerrors.Wrap(err, "delete order")
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, pkgerrors.Wrap(tx.Commit(ctx), "commit delete order")
}

func (r *PGRepo) DeleteItems(ctx context.Context, orderID string) (int64, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "delete order items")
	}
	return tag.RowsAffected(), nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total string
	if err := row.Scan(&o.ID, &o.Name, &o.Lastname, &o.Phone, &o.Email, &o.Company, &o.Address,
		&o.Apartment, &o.PostalCode, &o.City, &o.Country, &o.OrderNotice, &o.Status, &total,
		&o.UserID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.Total = amount
	return &o, nil
}
