// Package merchant stores the sellers that own catalog products.
package merchant

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

var ErrNotFound = errors.New("merchant not found")

type Repository interface {
	List(ctx context.Context) ([]Merchant, error)
	Get(ctx context.Context, id string) (*Merchant, error)
	Create(ctx context.Context, m *Merchant) error
	Update(ctx context.Context, m *Merchant) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct {
	db       *pgxpool.Pool
	products product.Repository
}

func NewPGRepo(db *pgxpool.Pool, products product.Repository) *PGRepo {
	return &PGRepo{db: db, products: products}
}

func (r *PGRepo) List(ctx context.Context) ([]Merchant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.name, m.email, m.phone, m.address, m.description, m.status,
		       COUNT(p.id), m.created_at, m.updated_at
		FROM merchants m
		LEFT JOIN products p ON p.merchant_id = m.id
		GROUP BY m.id
		ORDER BY m.created_at DESC
	`)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list merchants")
	}
	defer rows.Close()

	out := []Merchant{}
	for rows.Next() {
		var m Merchant
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.Description, &m.Status,
			&m.ProductCount, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, pkgerrors.Wrap(err, "scan merchant")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Merchant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var m Merchant
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, address, description, status, created_at, updated_at
		FROM merchants WHERE id=$1
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.Description, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "get merchant")
	}

	ids := []string{}
	rows, err := r.db.Query(ctx, `SELECT id FROM products WHERE merchant_id=$1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list merchant products")
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, pkgerrors.Wrap(err, "scan product id")
		}
		ids = append(ids, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byID, err := r.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, pid := range ids {
		if p, ok := byID[pid]; ok {
			m.Products = append(m.Products, p)
		}
	}
	m.ProductCount = len(m.Products)
	return &m, nil
}

func (r *PGRepo) Create(ctx context.Context, m *Merchant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO merchants (id, name, email, phone, address, description, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, m.ID, m.Name, m.Email, m.Phone, m.Address, m.Description, m.Status).Scan(&m.CreatedAt, &m.UpdatedAt)
	return pkgerrors.WithStack(err)
}

func (r *PGRepo) Update(ctx context.Context, m *Merchant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE merchants
		SET name=$2, email=$3, phone=$4, address=$5, description=$6, status=$7, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, m.ID, m.Name, m.Email, m.Phone, m.Address, m.Description, m.Status).Scan(&m.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return pkgerrors.WithStack(err)
}

// Delete removes the merchant; its products stay in the catalog unassigned.
func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM merchants WHERE id=$1`, id)
	if err != nil {
		return false, pkgerrors.Wrap(err, "delete merchant")
	}
	return cmd.RowsAffected() > 0, nil
}
