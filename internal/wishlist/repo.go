// Package wishlist keeps the products a shopper saved for later, locally for
// anonymous shoppers and in the database for signed-in users.
package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"

	"github.com/MikeMC777/storefront-ecom/internal/db"
	"github.com/MikeMC777/storefront-ecom/internal/product"
)

var (
	ErrAlreadyExists   = errors.New("product already in wishlist")
	ErrProductNotFound = errors.New("product not found")
)

type Repository interface {
	List(ctx context.Context, userID string) ([]product.Product, error)
	Add(ctx context.Context, userID, productID string) (*product.Product, error)
	Remove(ctx context.Context, userID, productID string) (bool, error)
}

type PGRepo struct {
	db       *pgxpool.Pool
	products product.Repository
}

func NewPGRepo(db *pgxpool.Pool, products product.Repository) *PGRepo {
	return &PGRepo{db: db, products: products}
}

// List returns the user's saved products, most recently added first.
func (r *PGRepo) List(ctx context.Context, userID string) ([]product.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT product_id::text FROM wishlist
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list wishlist")
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, pkgerrors.Wrap(err, "scan wishlist")
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "list wishlist")
	}

	found, err := r.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PGRepo) Add(ctx context.Context, userID, productID string) (*product.Product, error) {
	p, err := r.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = r.db.Exec(ctx, `
		INSERT INTO wishlist (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`, uuid.NewString(), userID, productID)
	switch {
	case err == nil:
		return p, nil
	case db.IsUniqueViolation(err, "wishlist_user_product_key"):
		return nil, ErrAlreadyExists
	case db.IsForeignKeyViolation(err):
		return nil, ErrProductNotFound
	default:
		return nil, pkgerrors.Wrap(err, "add to wishlist")
	}
}

func (r *PGRepo) Remove(ctx context.Context, userID, productID string) (bool, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(err, "remove from wishlist")
	}
	return tag.RowsAffected() > 0, nil
}
