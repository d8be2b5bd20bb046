package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	InternalToken   string
	CORSAllowOrigin string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	QuoteNumberScheme string
	TaxRatePercent    int
	ValidityDays      int
	Currency          string
}

func MustLoad() Config {
	return Config{
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		DatabaseURL:     mustEnv("DATABASE_URL"),
		InternalToken:   mustEnv("INTERNAL_TOKEN"),
		CORSAllowOrigin: env("CORS_ALLOW_ORIGIN", "*"),

		OpenAIBaseURL: env("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:  env("OPENAI_API_KEY", ""),
		OpenAIModel:   env("OPENAI_MODEL", "gpt-4o-mini"),

		QuoteNumberScheme: env("QUOTE_NUMBER_SCHEME", "daily"),
		TaxRatePercent:    envInt("QUOTE_TAX_RATE_PERCENT", 8),
		ValidityDays:      envInt("QUOTE_VALIDITY_DAYS", 30),
		Currency:          env("QUOTE_CURRENCY", "USD"),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("env %s: expected integer, got %q", k, v)
	}
	return n
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}
