package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/upro/upro-api/internal/domain/account"
	"github.com/upro/upro-api/internal/domain/catalog"
	"github.com/upro/upro-api/internal/domain/profile"
	"github.com/upro/upro-api/internal/domain/store"
	"github.com/upro/upro-api/internal/live"
	"github.com/upro/upro-api/internal/pkg/database/dbtest"
	"github.com/upro/upro-api/internal/pkg/events"
	"github.com/upro/upro-api/internal/pkg/imaging"
	"github.com/upro/upro-api/internal/pkg/jwt"
	"github.com/upro/upro-api/internal/pkg/password"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestServer(t *testing.T) (http.Handler, func(id, price, bonus int64)) {
	t.Helper()
	password.SetCost(bcrypt.MinCost)

	db := dbtest.NewSQLite(t)
	jwtService := jwt.NewService("router-secret", time.Hour, 24*time.Hour)

	hub := live.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	accountService := account.NewService(account.NewRepository(db), jwtService, []string{"admin@upro.test"})
	profileService := profile.NewService(profile.NewRepository(db))
	catalogService := catalog.NewService(catalog.NewRepository(db), catalog.NewRedisCache(nil, time.Minute), nil,
		imaging.NewProcessor(imaging.DefaultConfig()), 1<<20)
	storeService := store.NewService(store.NewRepository(db), catalogService, events.Nop{},
		live.NewNotifier(hub, profileService), store.DefaultConfig())

	r := newRouter(handlers{
		account: account.NewHandler(accountService),
		profile: profile.NewHandler(profileService),
		catalog: catalog.NewHandler(catalogService),
		store:   store.NewHandler(storeService),
		live:    live.NewHandler(hub, jwtService, nil),
	}, jwtService, []string{"http://localhost:3000"})

	seed := func(id, price, bonus int64) { dbtest.SeedItem(t, db, id, price, bonus, true) }
	return r, seed
}

func call(t *testing.T, h http.Handler, method, path, token string, body interface{}) (int, envelope) {
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

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func register(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	code, env := call(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, code)

	var auth account.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	return auth.Tokens.AccessToken
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	code, env := call(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestDebugVarsRequireAdmin(t *testing.T) {
	h, _ := newTestServer(t)
	adminToken := register(t, h, "admin@upro.test")
	memberToken := register(t, h, "member@upro.test")

	get := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, get("").Code)
	assert.Equal(t, http.StatusForbidden, get(memberToken).Code)

	w := get(adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "live_connections")
}

func TestPurchaseFlow(t *testing.T) {
	h, seed := newTestServer(t)
	seed(16, 30, 50)

	adminToken := register(t, h, "admin@upro.test")
	playerToken := register(t, h, "player@upro.test")

	code, env := call(t, h, http.MethodPost, "/api/v1/profiles", playerToken, map[string]interface{}{
		"name":      "Ayla",
		"gender":    "female",
		"age_group": 3,
	})
	require.Equal(t, http.StatusCreated, code)
	var p profile.Response
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, int64(0), p.Balance)

	t.Run("members cannot grant", func(t *testing.T) {
		code, _ := call(t, h, http.MethodPost, "/api/v1/admin/profiles/"+p.ID.String()+"/grant", playerToken,
			map[string]interface{}{"amount": 100, "reason": "test"})
		assert.Equal(t, http.StatusForbidden, code)
	})

	code, _ = call(t, h, http.MethodPost, "/api/v1/admin/profiles/"+p.ID.String()+"/grant", adminToken,
		map[string]interface{}{"amount": 100, "reason": "welcome pack"})
	require.Equal(t, http.StatusCreated, code)

	code, env = call(t, h, http.MethodGet, "/api/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, code)
	var items []catalog.Item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(16), items[0].ID)

	code, env = call(t, h, http.MethodPost, "/api/v1/profiles/"+p.ID.String()+"/purchases", playerToken,
		map[string]interface{}{"item_id": 16, "idempotency_key": "k-1"})
	require.Equal(t, http.StatusCreated, code)
	var settlement store.SettlementResponse
	require.NoError(t, json.Unmarshal(env.Data, &settlement))
	assert.Equal(t, int64(120), settlement.NewBalance)
	assert.Equal(t, int64(50), settlement.BonusGranted)

	code, env = call(t, h, http.MethodGet, "/api/v1/profiles/"+p.ID.String()+"/balance", playerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var balance store.BalanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.Equal(t, int64(120), balance.Balance)

	t.Run("other accounts are rejected", func(t *testing.T) {
		otherToken := register(t, h, "other@upro.test")
		code, _ := call(t, h, http.MethodGet, "/api/v1/profiles/"+p.ID.String()+"/balance", otherToken, nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		code, _ := call(t, h, http.MethodGet, "/api/v1/profiles/"+uuid.NewString()+"/balance", playerToken, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}
