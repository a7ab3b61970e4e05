package store

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/upro/upro-api/internal/middleware"
	"github.com/upro/upro-api/internal/pkg/logger"
	"github.com/upro/upro-api/internal/pkg/response"
	"github.com/upro/upro-api/internal/pkg/validator"
)

// Handler handles store HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates store handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetBalance handles GET /profiles/{id}/balance
// @Summary Gold balance of a profile
// @Tags Store
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=BalanceResponse}
// @Failure 404 {object} response.Response
// @Router /profiles/{id}/balance [get]
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	profileID, ok := parseProfileID(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(r.Context(), profileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, BalanceResponse{Balance: balance})
}

// Purchase handles POST /profiles/{id}/purchases
// @Summary Buy one catalog item with gold
// @Tags Store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client retry key"
// @Param request body PurchaseBody true "Item to buy"
// @Success 201 {object} response.Response{data=SettlementResponse}
// @Success 200 {object} response.Response{data=SettlementResponse} "Replayed settlement"
// @Failure 409 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /profiles/{id}/purchases [post]
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	profileID, ok := parseProfileID(w, r)
	if !ok {
		return
	}

	var body PurchaseBody
	if err := response.DecodeJSON(r.Body, &body); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" && body.IdempotencyKey == "" {
		body.IdempotencyKey = key
	}
	if errs := validator.Validate(&body); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	settlement, err := h.service.Purchase(r.Context(), PurchaseRequest{
		ProfileID:      profileID,
		ItemID:         body.ItemID,
		IdempotencyKey: body.IdempotencyKey,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := SettlementResponse{
		Purchase:     settlement.Purchase,
		NewBalance:   settlement.NewBalance,
		BonusGranted: settlement.BonusGranted,
		Replayed:     settlement.Replayed,
	}
	if settlement.Replayed {
		w.Header().Set(middleware.IdempotentReplayHeader, "true")
		response.OK(w, resp)
		return
	}
	response.Created(w, resp)
}

// ListPurchases handles GET /profiles/{id}/purchases?limit&offset
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	profileID, ok := parseProfileID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, offset = pageBounds(limit, offset)

	purchases, err := h.service.ListPurchases(r.Context(), profileID, limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.WithMeta(w, purchases, response.Meta{
		Limit:   limit,
		Offset:  offset,
		Count:   len(purchases),
		HasNext: len(purchases) == limit,
	})
}

// Grant handles POST /admin/profiles/{id}/grant
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	profileID, ok := parseProfileID(w, r)
	if !ok {
		return
	}

	var body GrantBody
	if err := response.DecodeJSON(r.Body, &body); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&body); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	grant, err := h.service.Grant(r.Context(), GrantRequest{
		ProfileID: profileID,
		Amount:    body.Amount,
		Reason:    body.Reason,
		GrantedBy: middleware.GetAccountID(r.Context()),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, grant)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		response.NotFound(w, "Profile not found")
	case errors.Is(err, ErrItemNotFound):
		response.NotFound(w, "Catalog item not found")
	case errors.Is(err, ErrItemInactive):
		response.Error(w, http.StatusConflict, "ITEM_INACTIVE", "Catalog item is not for sale")
	case errors.Is(err, ErrItemNotPurchasable):
		response.Error(w, http.StatusConflict, "ITEM_NOT_PURCHASABLE", "Catalog item cannot be purchased")
	case errors.Is(err, ErrBalanceOverflow):
		response.Error(w, http.StatusUnprocessableEntity, "BALANCE_LIMIT", "Balance would exceed the maximum")
	case errors.Is(err, ErrInsufficientFunds):
		response.Error(w, http.StatusConflict, "INSUFFICIENT_FUNDS", "Not enough gold")
	case errors.Is(err, ErrBalanceConflict):
		response.Error(w, http.StatusConflict, "BALANCE_CONFLICT", "Balance changed concurrently, try again")
	case errors.Is(err, ErrIdempotencyConflict):
		response.Error(w, http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used for another item")
	case errors.Is(err, ErrInvalidAmount):
		response.ValidationError(w, map[string]string{"amount": "Amount must be between 1 and 1000000000"})
	case errors.Is(err, ErrRecordWriteFailed):
		logger.LogError(r.Context(), err, "purchase record write failed", "path", r.URL.Path)
		response.Error(w, http.StatusServiceUnavailable, "RECORD_WRITE_FAILED", "Change could not be recorded, balance is unchanged")
	case errors.Is(err, ErrBalanceWriteFailed):
		logger.LogError(r.Context(), err, "balance write failed", "path", r.URL.Path)
		response.Error(w, http.StatusServiceUnavailable, "BALANCE_WRITE_FAILED", "Balance could not be updated, nothing was changed")
	default:
		logger.LogError(r.Context(), err, "store request failed", "path", r.URL.Path)
		response.InternalError(w)
	}
}

func parseProfileID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid profile ID")
		return uuid.Nil, false
	}
	return id, true
}
