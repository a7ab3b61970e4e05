package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upro/upro-api/internal/pkg/events"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	flushErr error
	closed   bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *fakeConn) FlushWithContext(ctx context.Context) error { return c.flushErr }
func (c *fakeConn) Close()                                     { c.closed = true }

func TestNATSPublisherEncodesJSON(t *testing.T) {
	conn := &fakeConn{}
	pub := events.NewNATSPublisherWithConn(conn)

	err := pub.Publish(context.Background(), events.SubjectPurchaseSettled, map[string]int64{"balance_after": 120})
	require.NoError(t, err)

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "store.purchase.settled", conn.subjects[0])

	var decoded map[string]int64
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, int64(120), decoded["balance_after"])

	pub.Close()
	assert.True(t, conn.closed)
}

func TestNATSPublisherReportsFlushFailure(t *testing.T) {
	conn := &fakeConn{flushErr: errors.New("timeout")}
	err := events.NewNATSPublisherWithConn(conn).Publish(context.Background(), events.SubjectBalanceGranted, struct{}{})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var pub events.Publisher = events.Nop{}
	assert.NoError(t, pub.Publish(context.Background(), "anything", nil))
	pub.Close()
}
