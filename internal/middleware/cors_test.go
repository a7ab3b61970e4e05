package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSPreflightAllowsIdempotencyKey(t *testing.T) {
	called := false
	h := CORSHandler([]string{"https://app.upro.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/profiles/x/purchases", nil)
	req.Header.Set("Origin", "https://app.upro.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Idempotency-Key")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.False(t, called)
	assert.Equal(t, "https://app.upro.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSExposesReplayHeader(t *testing.T) {
	h := CORSHandler([]string{"https://app.upro.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(IdempotentReplayHeader, "true")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/x/purchases", nil)
	req.Header.Set("Origin", "https://app.upro.test")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), IdempotentReplayHeader)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/profiles/x/purchases", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
