package live_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upro/upro-api/internal/live"
	"github.com/upro/upro-api/internal/pkg/jwt"
)

type staticOwners map[uuid.UUID]uuid.UUID

func (s staticOwners) OwnerOf(ctx context.Context, profileID uuid.UUID) (uuid.UUID, error) {
	return s[profileID], nil
}

func TestBalanceUpdatesReachOwningAccount(t *testing.T) {
	hub := live.NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	jwtSvc := jwt.NewService("live-secret", time.Minute, time.Hour)
	accountID := uuid.New()
	profileID := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(accountID, "member")
	require.NoError(t, err)

	srv := httptest.NewServer(live.NewHandler(hub, jwtSvc, nil))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	notifier := live.NewNotifier(hub, staticOwners{profileID: accountID})
	notifier.BalanceChanged(context.Background(), profileID, 120)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type string             `json:"type"`
		Data live.BalanceUpdate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "balance.updated", event.Type)
	assert.Equal(t, profileID, event.Data.ProfileID)
	assert.Equal(t, int64(120), event.Data.Balance)
}

func TestHandshakeRequiresToken(t *testing.T) {
	hub := live.NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	srv := httptest.NewServer(live.NewHandler(hub, jwt.NewService("live-secret", time.Minute, time.Hour), nil))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
