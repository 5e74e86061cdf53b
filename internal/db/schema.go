package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		CONSTRAINT categories_name_key UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS merchants (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL,
		title TEXT NOT NULL,
		main_image TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		rating INT NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		manufacturer TEXT NOT NULL DEFAULT '',
		in_stock INT NOT NULL DEFAULT 1,
		category_id TEXT REFERENCES categories(id),
		merchant_id UUID REFERENCES merchants(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT products_slug_key UNIQUE (slug)
	)`,
	`CREATE TABLE IF NOT EXISTS customer_orders (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		lastname TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		company TEXT NOT NULL,
		address TEXT NOT NULL,
		apartment TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		city TEXT NOT NULL,
		country TEXT NOT NULL,
		order_notice TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		total NUMERIC(12,2) NOT NULL,
		user_id UUID REFERENCES users(id) ON DELETE SET NULL,
		fingerprint TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customer_orders_fingerprint ON customer_orders (fingerprint, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_customer_orders_created ON customer_orders (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_customer_orders_status_updated ON customer_orders (status, updated_at)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES customer_orders(id),
		product_id UUID NOT NULL REFERENCES products(id),
		quantity INT NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE TABLE IF NOT EXISTS wishlist (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT wishlist_user_product_key UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS visitor_logs (
		id UUID PRIMARY KEY,
		ip_hash TEXT NOT NULL,
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visitor_logs_created ON visitor_logs (created_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id, is_read)`,
}

// EnsureSchema creates the tables the storefront needs when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "ensure schema")
		}
	}
	return nil
}
