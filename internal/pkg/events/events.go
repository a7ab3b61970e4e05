// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	SubjectPurchaseSettled = "store.purchase.settled"
	SubjectBalanceGranted  = "store.balance.granted"
)

// Publisher sends an event payload to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close()
}

// Conn is the part of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Config for the NATS connection
type Config struct {
	URL            string
	ConnectionName string
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// NATSPublisher publishes JSON-encoded events over core NATS
type NATSPublisher struct {
	conn Conn
}

// NewNATSPublisher connects to NATS
func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
	return &NATSPublisher{conn: nc}, nil
}

// NewNATSPublisherWithConn wraps an existing connection
func NewNATSPublisherWithConn(conn Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Publish encodes payload as JSON and waits for the server to acknowledge the flush
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush %s: %w", subject, err)
	}
	return nil
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// Nop discards events. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, interface{}) error { return nil }
func (Nop) Close()                                             {}
