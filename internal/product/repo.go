// Package product provides the repository interface and PostgreSQL implementation for the catalog.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-ecom/internal/db"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrSlugTaken    = errors.New("product slug already exists")
	ErrInUse        = errors.New("product is referenced by orders")
	ErrBadReference = errors.New("unknown category or merchant")
)

// Sort orders accepted by List.
const (
	SortNewest    = ""
	SortPriceAsc  = "lowPrice"
	SortPriceDesc = "highPrice"
	SortTitle     = "titleAsc"
	SortRating    = "rating"
)

type Query struct {
	Q           string
	CategoryID  string
	MaxPrice    *decimal.Decimal
	MinRating   int
	InStockOnly bool
	Sort        string
	Limit       int
	Offset      int
}

// Normalize clamps pagination to the catalog limits.
func (q Query) Normalize() Query {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

// CacheKey identifies a normalized query in the catalog cache.
func (q Query) CacheKey() string {
	maxPrice := ""
	if q.MaxPrice != nil {
		maxPrice = q.MaxPrice.String()
	}
	return fmt.Sprintf("%s|%s|%s|%d|%t|%s|%d|%d",
		q.Q, q.CategoryID, maxPrice, q.MinRating, q.InStockOnly, q.Sort, q.Limit, q.Offset)
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectColumns = `id, slug, title, main_image, price::text, rating, description, manufacturer,
	in_stock, COALESCE(category_id, ''), merchant_id, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, slug, title, main_image, price, rating, description, manufacturer,
		                      in_stock, category_id, merchant_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,$8,$9,NULLIF($10,''),$11,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Slug, p.Title, p.MainImage, p.Price.String(), p.Rating, p.Description, p.Manufacturer,
		p.InStock, p.CategoryID, p.MerchantID).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM products WHERE id=$1`, id)
}

func (r *PGRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM products WHERE slug=$1`, slug)
}

func (r *PGRepo) getOne(ctx context.Context, sql string, arg any) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		// a malformed uuid can never match a row either
		if db.IsNoRows(err) || db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "get product")
	}
	return p, nil
}

func (r *PGRepo) GetMany(ctx context.Context, ids []string) (map[string]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM products WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "get products")
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "scan product")
		}
		out[p.ID] = *p
	}
	return out, rows.Err()
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()

	args := []any{}
	where := []string{"TRUE"}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Q != "" {
		p := arg(q.Q)
		where = append(where, fmt.Sprintf("(title ILIKE '%%'||%s||'%%' OR description ILIKE '%%'||%s||'%%')", p, p))
	}
	if q.CategoryID != "" {
		where = append(where, "category_id = "+arg(q.CategoryID))
	}
	if q.MaxPrice != nil {
		where = append(where, "price <= "+arg(q.MaxPrice.String())+"::numeric")
	}
	if q.MinRating > 0 {
		where = append(where, "rating >= "+arg(q.MinRating))
	}
	if q.InStockOnly {
		where = append(where, "in_stock > 0")
	}

	order := "created_at DESC, id"
	switch q.Sort {
	case SortPriceAsc:
		order = "price ASC, id"
	case SortPriceDesc:
		order = "price DESC, id"
	case SortTitle:
		order = "title ASC, id"
	case SortRating:
		order = "rating DESC, id"
	}

	sql := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY %s LIMIT %s OFFSET %s`,
		selectColumns, strings.Join(where, " AND "), order, arg(q.Limit), arg(q.Offset))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list products")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "scan product")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET slug = $2, title = $3, main_image = $4, price = $5::numeric, rating = $6,
		    description = $7, manufacturer = $8, in_stock = $9,
		    category_id = NULLIF($10,''), merchant_id = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Slug, p.Title, p.MainImage, p.Price.String(), p.Rating, p.Description, p.Manufacturer,
		p.InStock, p.CategoryID, p.MerchantID).Scan(&p.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return translate(err)
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return false, ErrInUse
		}
		return false, pkgerrors.Wrap(err, "delete product")
	}
	return cmd.RowsAffected() > 0, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, "products_slug_key"):
		return ErrSlugTaken
	case db.IsForeignKeyViolation(err):
		return ErrBadReference
	default:
		return pkgerrors.WithStack(err)
	}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.MainImage, &price, &p.Rating, &p.Description,
		&p.Manufacturer, &p.InStock, &p.CategoryID, &p.MerchantID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = amount
	return &p, nil
}
