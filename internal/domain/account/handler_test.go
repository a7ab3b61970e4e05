package account_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/upro/upro-api/internal/domain/account"
	"github.com/upro/upro-api/internal/middleware"
	"github.com/upro/upro-api/internal/pkg/database/dbtest"
	"github.com/upro/upro-api/internal/pkg/jwt"
	"github.com/upro/upro-api/internal/pkg/password"
)

type authAPIResponse struct {
	Success bool                 `json:"success"`
	Data    account.AuthResponse `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func perform(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthEndpoints(t *testing.T) {
	password.SetCost(bcrypt.MinCost)

	db := dbtest.NewSQLite(t)
	jwtSvc := jwt.NewService("auth-handler-secret", time.Hour, 24*time.Hour)
	svc := account.NewService(account.NewRepository(db), jwtSvc, nil)

	r := chi.NewRouter()
	r.Mount("/api/v1/auth", account.NewHandler(svc).Routes(middleware.Auth(jwtSvc)))

	w := perform(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "gold@example.com", "password": "goldrush42",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg authAPIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	assert.True(t, reg.Success)
	assert.Equal(t, "member", reg.Data.Account.Role)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "gold@example.com", "password": "goldrush42",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "gold@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(t, r, http.MethodGet, "/api/v1/auth/me", reg.Data.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gold@example.com")

	w = perform(t, r, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": reg.Data.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
