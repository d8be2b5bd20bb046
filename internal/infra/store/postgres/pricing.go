package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/domain/catalog"
	pgdb "equiline/go_backend/internal/infra/db/postgres"
)

// PricingStore reads catalog prices and purchase history from postgres.
type PricingStore struct {
	db *pgdb.DB
}

func NewPricingStore(db *pgdb.DB) *PricingStore {
	return &PricingStore{db: db}
}

func (s *PricingStore) CurrentPrice(ctx context.Context, productCode string) (*catalog.PriceRecord, error) {
	var rec catalog.PriceRecord
	var cost string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT p.product_name, p.category, p.currency, p.lead_time_days,
			COALESCE((
				SELECT pp.unit_cost::text
				FROM product_prices pp
				WHERE pp.product_code = p.product_code
					AND pp.is_active
					AND CURRENT_DATE >= pp.effective_from
					AND (pp.effective_to IS NULL OR CURRENT_DATE <= pp.effective_to)
				ORDER BY pp.effective_from DESC
				LIMIT 1
			), '100000.00')
		FROM products p
		WHERE p.product_code = $1 AND p.is_active`,
		productCode,
	).Scan(&rec.ProductName, &rec.Category, &rec.Currency, &rec.LeadTimeDays, &cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.BasePrice, err = decimal.NewFromString(cost)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PricingStore) DiscountHistory(ctx context.Context, productCode string, customerID int64) (*catalog.DiscountHistory, error) {
	var count int
	var avg *string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT count(*), avg(discount_percent)::text
		FROM purchase_history
		WHERE product_code = $1 AND customer_id = $2 AND was_accepted`,
		productCode, customerID,
	).Scan(&count, &avg)
	if err != nil {
		return nil, err
	}
	if count == 0 || avg == nil {
		return nil, nil
	}
	avgDiscount, err := decimal.NewFromString(*avg)
	if err != nil {
		return nil, err
	}
	return &catalog.DiscountHistory{PurchaseCount: count, AvgDiscount: avgDiscount.Round(2)}, nil
}
