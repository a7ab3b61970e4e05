package store

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterProfileRoutes adds the store endpoints under an ownership-checked
// /profiles/{id} router.
func (h *Handler) RegisterProfileRoutes(r chi.Router) {
	r.Get("/balance", h.GetBalance)
	r.Get("/purchases", h.ListPurchases)
	r.Post("/purchases", h.Purchase)
}

// AdminRoutes returns the balance administration router
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware, adminMiddleware)
	r.Post("/{id}/grant", h.Grant)
	return r
}
