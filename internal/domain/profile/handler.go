package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/upro/upro-api/internal/middleware"
	"github.com/upro/upro-api/internal/pkg/logger"
	"github.com/upro/upro-api/internal/pkg/response"
	"github.com/upro/upro-api/internal/pkg/validator"
)

type ctxKey struct{}

// FromContext returns the profile loaded by RequireOwner
func FromContext(ctx context.Context) *Profile {
	p, _ := ctx.Value(ctxKey{}).(*Profile)
	return p
}

// Handler handles profile HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates profile handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /profiles
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	profiles, err := h.service.ListByAccount(r.Context(), accountID)
	if err != nil {
		logger.LogError(r.Context(), err, "failed to list profiles", "account_id", accountID.String())
		response.InternalError(w)
		return
	}

	items := make([]Response, len(profiles))
	for i, p := range profiles {
		items[i] = ResponseFromEntity(p)
	}
	response.OK(w, items)
}

// Create handles POST /profiles
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.service.Create(r.Context(), middleware.GetAccountID(r.Context()), &req)
	if err != nil {
		logger.LogError(r.Context(), err, "failed to create profile")
		response.InternalError(w)
		return
	}

	response.Created(w, ResponseFromEntity(p))
}

// Get handles GET /profiles/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, ResponseFromEntity(FromContext(r.Context())))
}

// RequireOwner loads the {id} profile and rejects requests from other accounts
func (h *Handler) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profileID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			response.BadRequest(w, "Invalid profile ID")
			return
		}

		p, err := h.service.Get(r.Context(), middleware.GetAccountID(r.Context()), profileID)
		if err != nil {
			switch {
			case errors.Is(err, ErrProfileNotFound):
				response.NotFound(w, "Profile not found")
			case errors.Is(err, ErrNotProfileOwner):
				response.Forbidden(w, "Profile belongs to another account")
			default:
				logger.LogError(r.Context(), err, "failed to load profile", "profile_id", profileID.String())
				response.InternalError(w)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, p)))
	})
}

// Routes returns the profile router. scoped registers extra routes under
// /{id} that run after the ownership check.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, scoped ...func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.RequireOwner)
		r.Get("/", h.Get)
		for _, register := range scoped {
			register(r)
		}
	})

	return r
}
