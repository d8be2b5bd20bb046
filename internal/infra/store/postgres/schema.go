package postgres

import (
	"context"

	pgdb "equiline/go_backend/internal/infra/db/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS quotes (
	id BIGSERIAL PRIMARY KEY,
	quote_number TEXT NOT NULL UNIQUE,
	customer_name TEXT NOT NULL DEFAULT '',
	customer_email TEXT NOT NULL DEFAULT '',
	customer_company TEXT NOT NULL DEFAULT '',
	shipping_address TEXT NOT NULL DEFAULT '',
	quote_date TIMESTAMPTZ NOT NULL,
	valid_until TIMESTAMPTZ NOT NULL,
	discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
	subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
	discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax_rate NUMERIC(6,4) NOT NULL DEFAULT 0,
	tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
	total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	urgency TEXT NOT NULL DEFAULT '',
	estimated_delivery TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	terms TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quote_line_items (
	id BIGSERIAL PRIMARY KEY,
	quote_id BIGINT NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
	line_number INT NOT NULL,
	product_code TEXT NOT NULL DEFAULT '',
	product_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	quantity INT NOT NULL,
	unit_price NUMERIC(14,2) NOT NULL,
	discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
	line_total NUMERIC(14,2) NOT NULL,
	lead_time_days INT NOT NULL DEFAULT 0,
	config JSONB,
	UNIQUE (quote_id, line_number)
);

CREATE TABLE IF NOT EXISTS products (
	product_code TEXT PRIMARY KEY,
	product_name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT 'USD',
	lead_time_days INT NOT NULL DEFAULT 30,
	is_active BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS product_prices (
	id BIGSERIAL PRIMARY KEY,
	product_code TEXT NOT NULL REFERENCES products(product_code),
	unit_cost NUMERIC(14,2) NOT NULL,
	effective_from DATE NOT NULL,
	effective_to DATE,
	is_active BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS purchase_history (
	id BIGSERIAL PRIMARY KEY,
	product_code TEXT NOT NULL REFERENCES products(product_code),
	customer_id BIGINT NOT NULL,
	discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
	was_accepted BOOLEAN NOT NULL DEFAULT false,
	purchased_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the tables this service owns. Idempotent.
func Migrate(ctx context.Context, db *pgdb.DB) error {
	_, err := db.Pool.Exec(ctx, schema)
	return err
}
