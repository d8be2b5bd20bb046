package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/app/config"
	apphttp "equiline/go_backend/internal/app/http"
	"equiline/go_backend/internal/app/http/handlers/quotes"
	"equiline/go_backend/internal/domain/ai/narrative"
	"equiline/go_backend/internal/domain/catalog"
	"equiline/go_backend/internal/domain/quote"
	pdfgen "equiline/go_backend/internal/domain/quote/pdf/gofpdf"
	pgdb "equiline/go_backend/internal/infra/db/postgres"
	pgstore "equiline/go_backend/internal/infra/store/postgres"
)

func Run() {
	cfg := config.MustLoad()
	ctx := context.Background()

	db, err := pgdb.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := pgstore.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	store := pgstore.NewQuoteStore(db, quote.NumberScheme(cfg.QuoteNumberScheme))
	pricing := &catalog.Resolver{Store: pgstore.NewPricingStore(db)}

	var gen narrative.Generator
	if cfg.OpenAIAPIKey != "" {
		gen = narrative.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, &http.Client{
			Timeout: 15 * time.Second,
		})
	}

	taxRate := decimal.NewFromInt(int64(cfg.TaxRatePercent)).Div(decimal.NewFromInt(100))
	svc := quotes.New(store, pricing, gen, pdfgen.New(), taxRate, cfg.ValidityDays, cfg.Currency)

	router := apphttp.NewRouter(cfg, svc)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("listening on %s", cfg.HTTPAddr)
	log.Fatal(srv.ListenAndServe())
}
