package handlers

import (
	"equiline/go_backend/internal/app/http/handlers/quotes"
)

type Handlers struct {
	Quotes *quotes.Service
}

func New(quotesSvc *quotes.Service) *Handlers {
	return &Handlers{Quotes: quotesSvc}
}
