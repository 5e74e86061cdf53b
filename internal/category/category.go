// Package category stores the catalog categories.
package category

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"

	"github.com/MikeMC777/storefront-ecom/internal/db"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrAlreadyExists = errors.New("category already exists")
	ErrInUse         = errors.New("category has products")
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRequest payload for create and rename.
// swagger:model CategoryRequest
type CategoryRequest struct {
	Name string `json:"name" example:"Smart Watches"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug derives the category id from its name: lower-case, whitespace runs as '-'.
func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, c *Category) error
	Rename(ctx context.Context, id, name string) (*Category, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) List(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list categories")
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, pkgerrors.Wrap(err, "scan category")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1,$2)`, c.ID, c.Name)
	if db.IsUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return pkgerrors.WithStack(err)
}

func (r *PGRepo) Rename(ctx context.Context, id, name string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c := Category{ID: id}
	err := r.db.QueryRow(ctx, `UPDATE categories SET name=$2 WHERE id=$1 RETURNING name`, id, name).Scan(&c.Name)
	switch {
	case db.IsNoRows(err):
		return nil, ErrNotFound
	case db.IsUniqueViolation(err):
		return nil, ErrAlreadyExists
	case err != nil:
		return nil, pkgerrors.Wrap(err, "rename category")
	}
	return &c, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return false, ErrInUse
		}
		return false, pkgerrors.Wrap(err, "delete category")
	}
	return cmd.RowsAffected() > 0, nil
}
