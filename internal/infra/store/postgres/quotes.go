package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/domain/quote"
	pgdb "equiline/go_backend/internal/infra/db/postgres"
)

const uniqueViolation = "23505"

// QuoteStore is the pgx-backed quote.Store. Number assignment happens
// inside the insert transaction; a same-day collision hits the unique
// constraint on quote_number and is retried with a fresh sequence.
type QuoteStore struct {
	db     *pgdb.DB
	scheme quote.NumberScheme
}

func NewQuoteStore(db *pgdb.DB, scheme quote.NumberScheme) *QuoteStore {
	if !scheme.Valid() {
		scheme = quote.SchemeDaily
	}
	return &QuoteStore{db: db, scheme: scheme}
}

func (s *QuoteStore) Create(ctx context.Context, q *quote.Quote) error {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := s.tryCreate(ctx, q)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("quote number collision after %d attempts: %w", maxAttempts, lastErr)
}

func (s *QuoteStore) tryCreate(ctx context.Context, q *quote.Quote) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	day := q.QuoteDate
	if day.IsZero() {
		day = time.Now().UTC()
	}
	number, err := s.nextNumber(ctx, tx, day)
	if err != nil {
		return err
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO quotes (
			quote_number, customer_name, customer_email, customer_company,
			shipping_address, quote_date, valid_until, discount_percent,
			subtotal, discount_amount, tax_rate, tax_amount, total_amount,
			status, urgency, estimated_delivery, notes, terms, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id`,
		number, q.CustomerName, q.CustomerEmail, q.CustomerCompany,
		q.ShippingAddress, q.QuoteDate, q.ValidUntil, q.DiscountPercent.String(),
		q.Subtotal.String(), q.DiscountAmount.String(), q.TaxRate.String(),
		q.TaxAmount.String(), q.TotalAmount.String(),
		string(q.Status), q.Urgency, q.EstimatedDelivery, q.Notes, q.Terms,
		q.CreatedAt, q.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, id, q.Items); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	q.ID = id
	q.Number = number
	return nil
}

func (s *QuoteStore) nextNumber(ctx context.Context, tx pgx.Tx, day time.Time) (string, error) {
	if s.scheme == quote.SchemeRandom {
		return quote.RandomNumber(day), nil
	}
	var count int
	err := tx.QueryRow(ctx,
		`SELECT count(*) FROM quotes WHERE quote_number LIKE $1 || '%'`,
		quote.DailyPrefix(day),
	).Scan(&count)
	if err != nil {
		return "", err
	}
	return quote.DailyNumber(day, count+1), nil
}

func insertItems(ctx context.Context, tx pgx.Tx, quoteID int64, items []quote.LineItem) error {
	for _, it := range items {
		var cfg []byte
		if it.Config != nil {
			b, err := json.Marshal(it.Config)
			if err != nil {
				return err
			}
			cfg = b
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO quote_line_items (
				quote_id, line_number, product_code, product_name, description,
				quantity, unit_price, discount_percent, line_total, lead_time_days, config
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			quoteID, it.LineNumber, it.ProductCode, it.ProductName, it.Description,
			it.Quantity, it.UnitPrice.String(), it.DiscountPercent.String(),
			it.LineTotal.String(), it.LeadTimeDays, cfg,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const quoteColumns = `
	id, quote_number, customer_name, customer_email, customer_company,
	shipping_address, quote_date, valid_until,
	discount_percent::text, subtotal::text, discount_amount::text,
	tax_rate::text, tax_amount::text, total_amount::text,
	status, urgency, estimated_delivery, notes, terms, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*quote.Quote, error) {
	var q quote.Quote
	var status string
	var discPct, subtotal, discAmt, taxRate, taxAmt, total string
	err := row.Scan(
		&q.ID, &q.Number, &q.CustomerName, &q.CustomerEmail, &q.CustomerCompany,
		&q.ShippingAddress, &q.QuoteDate, &q.ValidUntil,
		&discPct, &subtotal, &discAmt, &taxRate, &taxAmt, &total,
		&status, &q.Urgency, &q.EstimatedDelivery, &q.Notes, &q.Terms,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.Status = quote.Status(status)
	if q.DiscountPercent, err = decimal.NewFromString(discPct); err != nil {
		return nil, err
	}
	if q.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, err
	}
	if q.DiscountAmount, err = decimal.NewFromString(discAmt); err != nil {
		return nil, err
	}
	if q.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return nil, err
	}
	if q.TaxAmount, err = decimal.NewFromString(taxAmt); err != nil {
		return nil, err
	}
	if q.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	return &q, nil
}

func loadItems(ctx context.Context, tx pgx.Tx, quoteID int64) ([]quote.LineItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT line_number, product_code, product_name, description, quantity,
			unit_price::text, discount_percent::text, line_total::text,
			lead_time_days, config
		FROM quote_line_items
		WHERE quote_id = $1
		ORDER BY line_number`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []quote.LineItem
	for rows.Next() {
		var it quote.LineItem
		var unit, disc, total string
		var cfg []byte
		if err := rows.Scan(
			&it.LineNumber, &it.ProductCode, &it.ProductName, &it.Description,
			&it.Quantity, &unit, &disc, &total, &it.LeadTimeDays, &cfg,
		); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if it.DiscountPercent, err = decimal.NewFromString(disc); err != nil {
			return nil, err
		}
		if it.LineTotal, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		if len(cfg) > 0 {
			var c quote.LineItemConfig
			if err := json.Unmarshal(cfg, &c); err != nil {
				return nil, err
			}
			it.Config = &c
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *QuoteStore) Get(ctx context.Context, number string) (*quote.Quote, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q, err := s.getLocked(ctx, tx, number, false)
	if err != nil {
		return nil, err
	}
	return q, tx.Commit(ctx)
}

func (s *QuoteStore) getLocked(ctx context.Context, tx pgx.Tx, number string, forUpdate bool) (*quote.Quote, error) {
	sql := `SELECT ` + quoteColumns + ` FROM quotes WHERE quote_number = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	q, err := scanQuote(tx.QueryRow(ctx, sql, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quote %s: %w", number, quote.ErrNotFound)
		}
		return nil, err
	}
	q.Items, err = loadItems(ctx, tx, q.ID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuoteStore) List(ctx context.Context, status quote.Status, limit, offset int) ([]*quote.Quote, error) {
	if limit <= 0 {
		limit = 100
	}
	sql := `SELECT ` + quoteColumns + ` FROM quotes`
	args := []any{}
	if status != "" {
		sql += ` WHERE status = $1`
		args = append(args, string(status))
	}
	sql += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*quote.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Mutate loads the quote FOR UPDATE, applies fn to it, and rewrites the
// row and its line items in the same transaction. A non-nil fn error rolls
// everything back.
func (s *QuoteStore) Mutate(ctx context.Context, number string, fn func(*quote.Quote) error) (*quote.Quote, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q, err := s.getLocked(ctx, tx, number, true)
	if err != nil {
		return nil, err
	}
	if err := fn(q); err != nil {
		return nil, err
	}
	q.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
		UPDATE quotes SET
			customer_name=$2, customer_email=$3, customer_company=$4,
			shipping_address=$5, valid_until=$6, discount_percent=$7,
			subtotal=$8, discount_amount=$9, tax_rate=$10, tax_amount=$11,
			total_amount=$12, status=$13, urgency=$14, estimated_delivery=$15,
			notes=$16, terms=$17, updated_at=$18
		WHERE id=$1`,
		q.ID, q.CustomerName, q.CustomerEmail, q.CustomerCompany,
		q.ShippingAddress, q.ValidUntil, q.DiscountPercent.String(),
		q.Subtotal.String(), q.DiscountAmount.String(), q.TaxRate.String(),
		q.TaxAmount.String(), q.TotalAmount.String(), string(q.Status),
		q.Urgency, q.EstimatedDelivery, q.Notes, q.Terms, q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quote_line_items WHERE quote_id = $1`, q.ID); err != nil {
		return nil, err
	}
	if err := insertItems(ctx, tx, q.ID, q.Items); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuoteStore) Delete(ctx context.Context, number string) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM quotes WHERE quote_number = $1`, number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quote %s: %w", number, quote.ErrNotFound)
	}
	return nil
}
