package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the public catalog router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// AdminRoutes returns the catalog administration router
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware, adminMiddleware)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/image", h.UploadImage)
	return r
}
