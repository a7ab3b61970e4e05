package account

import (
	"errors"
	"net/http"

	"github.com/upro/upro-api/internal/middleware"
	"github.com/upro/upro-api/internal/pkg/logger"
	"github.com/upro/upro-api/internal/pkg/response"
	"github.com/upro/upro-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates account handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(w, "Email already registered")
			return
		}
		logger.LogError(r.Context(), err, "failed to register account")
		response.InternalError(w)
		return
	}

	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
			return
		}
		logger.LogError(r.Context(), err, "failed to login")
		response.InternalError(w)
		return
	}

	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.Unauthorized(w, "Invalid or expired refresh token")
			return
		}
		logger.LogError(r.Context(), err, "failed to refresh token")
		response.InternalError(w)
		return
	}

	response.OK(w, result)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	a, err := h.service.Me(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		logger.LogError(r.Context(), err, "failed to load account", "account_id", accountID.String())
		response.InternalError(w)
		return
	}

	response.OK(w, NewAccountResponse(a))
}
