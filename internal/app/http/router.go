package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"equiline/go_backend/internal/app/config"
	"equiline/go_backend/internal/app/http/handlers"
	"equiline/go_backend/internal/app/http/handlers/quotes"
	"equiline/go_backend/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, quotesSvc *quotes.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	h := handlers.New(quotesSvc)

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.InternalAuth(cfg.InternalToken))

			r.Post("/quotes/from-conversation", quotesSvc.HandleFromConversation)
			r.Post("/quotes", quotesSvc.HandleCreate)
			r.Get("/quotes", quotesSvc.HandleList)
			r.Get("/quotes/{number}", quotesSvc.HandleGet)
			r.Delete("/quotes/{number}", quotesSvc.HandleDelete)
			r.Get("/quotes/{number}/pdf", quotesSvc.HandlePDF)
			r.Post("/quotes/{number}/items", quotesSvc.HandleAddItem)
			r.Delete("/quotes/{number}/items/{line}", quotesSvc.HandleRemoveItem)
			r.Put("/quotes/{number}/status", quotesSvc.HandleSetStatus)
		})
	})

	return r
}
