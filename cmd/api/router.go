package main

import (
	"expvar"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/upro/upro-api/internal/domain/account"
	"github.com/upro/upro-api/internal/domain/catalog"
	"github.com/upro/upro-api/internal/domain/profile"
	"github.com/upro/upro-api/internal/domain/store"
	"github.com/upro/upro-api/internal/live"
	"github.com/upro/upro-api/internal/middleware"
	"github.com/upro/upro-api/internal/pkg/jwt"
	pkgresponse "github.com/upro/upro-api/internal/pkg/response"
)

type handlers struct {
	account *account.Handler
	profile *profile.Handler
	catalog *catalog.Handler
	store   *store.Handler
	live    *live.Handler
}

func newRouter(h handlers, jwtService *jwt.Service, allowedOrigins []string) chi.Router {
	authMiddleware := middleware.Auth(jwtService)
	adminMiddleware := middleware.RequireAdmin()

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(allowedOrigins))

	// WebSocket endpoint authenticates through the token query parameter
	r.Handle("/ws", h.live)
	r.With(authMiddleware, adminMiddleware).Handle("/debug/vars", expvar.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", h.account.Routes(authMiddleware))
		r.Mount("/profiles", h.profile.Routes(authMiddleware, h.store.RegisterProfileRoutes))
		r.Mount("/catalog", h.catalog.Routes())

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/catalog", h.catalog.AdminRoutes(authMiddleware, adminMiddleware))
			r.Mount("/profiles", h.store.AdminRoutes(authMiddleware, adminMiddleware))
		})
	})

	return r
}
