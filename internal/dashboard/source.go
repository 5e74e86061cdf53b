package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PGSource runs the dashboard aggregates against PostgreSQL.
type PGSource struct{ db *pgxpool.Pool }

func NewPGSource(db *pgxpool.Pool) *PGSource { return &PGSource{db: db} }

// Revenue sums the totals of orders that reached status within the window.
func (s *PGSource) Revenue(ctx context.Context, from, to time.Time, status string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sum string
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)::text
		FROM customer_orders
		WHERE status = $1 AND updated_at >= $2 AND updated_at < $3
	`, status, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "revenue")
	}
	v, err := decimal.NewFromString(sum)
	return v, errors.Wrap(err, "parse revenue")
}

func (s *PGSource) NewOrders(ctx context.Context, from, to time.Time) (int64, error) {
	return s.count(ctx, "new orders",
		`SELECT COUNT(*) FROM customer_orders WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (s *PGSource) NewCustomers(ctx context.Context, from, to time.Time) (int64, error) {
	return s.count(ctx, "new customers",
		`SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at < $2`, from, to)
}

// Visitors counts distinct hashed addresses seen in the window.
func (s *PGSource) Visitors(ctx context.Context, from, to time.Time) (int64, error) {
	return s.count(ctx, "visitors",
		`SELECT COUNT(DISTINCT ip_hash) FROM visitor_logs WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (s *PGSource) count(ctx context.Context, what, sql string, from, to time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int64
	if err := s.db.QueryRow(ctx, sql, from, to).Scan(&n); err != nil {
		return 0, errors.Wrap(err, what)
	}
	return n, nil
}
