// Package live pushes balance changes to connected clients over WebSocket.
package live

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventType of a pushed message
type EventType string

const EventBalanceUpdated EventType = "balance.updated"

// accountEventsChannel fans events out across API instances
const accountEventsChannel = "live:account_events"

var (
	wsConnectionsGauge   = expvar.NewInt("live_connections")
	wsEventsSentTotal    = expvar.NewInt("live_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("live_events_dropped_total")
)

// Event is the JSON frame sent to clients
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type accountEnvelope struct {
	AccountID uuid.UUID       `json:"account_id"`
	Payload   json.RawMessage `json:"payload"`
}

// Connection is one client socket of an account
type Connection struct {
	AccountID uuid.UUID
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub tracks the connections of every account on this instance. With a Redis
// client, events published on any instance reach connections on all of them.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool
	mu          sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	redis  *redis.Client
	pubsub *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		redis:       redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, accountEventsChannel)
	}
	return h
}

// Run processes registrations until Shutdown (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.AccountID] == nil {
				h.connections[conn.AccountID] = make(map[*Connection]bool)
			}
			h.connections[conn.AccountID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("account_id", conn.AccountID.String()).Msg("live connection opened")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.AccountID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.AccountID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("account_id", conn.AccountID.String()).Msg("live connection closed")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env accountEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Msg("invalid live event envelope")
				continue
			}
			h.deliverLocal(env.AccountID, env.Payload)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection and closes its send channel
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.ctx.Done():
	}
}

// SendToAccount pushes event to every connection of accountID
func (h *Hub) SendToAccount(ctx context.Context, accountID uuid.UUID, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if h.redis != nil {
		env, err := json.Marshal(accountEnvelope{AccountID: accountID, Payload: data})
		if err != nil {
			return err
		}
		if err := h.redis.Publish(ctx, accountEventsChannel, env).Err(); err == nil {
			return nil
		}
		log.Warn().Err(err).Msg("live redis publish failed, delivering locally")
	}

	h.deliverLocal(accountID, data)
	return nil
}

func (h *Hub) deliverLocal(accountID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[accountID] {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("account_id", accountID.String()).Msg("live send buffer full, dropping event")
		}
	}
}

// ConnectionCount returns the number of open connections on this instance
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.connections {
		n += len(conns)
	}
	return n
}

// Shutdown stops the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
}
