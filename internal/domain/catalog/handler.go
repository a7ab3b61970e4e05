package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/upro/upro-api/internal/pkg/logger"
	"github.com/upro/upro-api/internal/pkg/response"
	"github.com/upro/upro-api/internal/pkg/storage"
	"github.com/upro/upro-api/internal/pkg/validator"
)

// Handler handles catalog HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates catalog handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /catalog
// @Summary Active catalog items
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]Item}
// @Router /catalog [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListActive(r.Context())
	if err != nil {
		logger.LogError(r.Context(), err, "failed to list catalog")
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}

// Get handles GET /catalog/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, item)
}

// Create handles POST /admin/catalog
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, item)
}

// Update handles PUT /admin/catalog/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	item, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, item)
}

// UploadImage handles POST /admin/catalog/{id}/image (multipart field "file")
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.service.maxImageSize+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file")
		return
	}
	defer file.Close()

	item, err := h.service.UploadImage(r.Context(), id, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, item)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		response.NotFound(w, "Catalog item not found")
	case errors.Is(err, ErrNoChanges):
		response.BadRequest(w, "No fields to update")
	case errors.Is(err, ErrBonusWithoutPrice):
		response.ValidationError(w, map[string]string{"price": "Items with a bonus must have a price"})
	case errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, storage.ErrInvalidMimeType),
		errors.Is(err, ErrInvalidImage):
		response.BadRequest(w, err.Error())
	case errors.Is(err, storage.ErrFileTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds maximum size")
	case errors.Is(err, ErrImagesDisabled):
		response.Error(w, http.StatusServiceUnavailable, "IMAGES_DISABLED", "Image storage is not configured")
	default:
		logger.LogError(r.Context(), err, "catalog request failed", "path", r.URL.Path)
		response.InternalError(w)
	}
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid item ID")
		return 0, false
	}
	return id, true
}
