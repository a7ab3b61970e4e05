package catalog_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upro/upro-api/internal/domain/catalog"
	"github.com/upro/upro-api/internal/middleware"
	"github.com/upro/upro-api/internal/pkg/jwt"
)

type itemsAPIResponse struct {
	Success bool            `json:"success"`
	Data    []*catalog.Item `json:"data"`
}

func TestCatalogEndpoints(t *testing.T) {
	svc, _, _ := newService(t)
	h := catalog.NewHandler(svc)

	jwtSvc := jwt.NewService("catalog-handler-secret", time.Hour, 24*time.Hour)
	adminToken, err := jwtSvc.GenerateAccessToken(uuid.New(), middleware.RoleAdmin)
	require.NoError(t, err)
	memberToken, err := jwtSvc.GenerateAccessToken(uuid.New(), middleware.RoleMember)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/api/v1/catalog", h.Routes())
	r.Mount("/api/v1/admin/catalog", h.AdminRoutes(middleware.Auth(jwtSvc), middleware.RequireAdmin()))

	do := func(method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/api/v1/catalog", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list itemsAPIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []int64{3, 16, 17}, ids(list.Data))

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/catalog/16", "", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/v1/catalog/404", "", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/api/v1/catalog/abc", "", nil, "").Code)

	create := []byte(`{"name":"Crown","price":75,"bonus_amount":0}`)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/api/v1/admin/catalog", "", create, "application/json").Code)
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/api/v1/admin/catalog", memberToken, create, "application/json").Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/v1/admin/catalog", adminToken, create, "application/json").Code)

	negative := []byte(`{"name":"Broken","price":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, "/api/v1/admin/catalog", adminToken, negative, "application/json").Code)

	freeGold := []byte(`{"name":"Free gold","price":0,"bonus_amount":500}`)
	w = do(http.MethodPost, "/api/v1/admin/catalog", adminToken, freeGold, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"price"`)

	update := []byte(`{"price":60}`)
	w = do(http.MethodPut, "/api/v1/admin/catalog/3", adminToken, update, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":60`)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("plain text"))
	require.NoError(t, mw.Close())
	w = do(http.MethodPost, "/api/v1/admin/catalog/3/image", adminToken, form.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
