package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestNew_WithoutURLIsNop(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), BookingCreated, nil))
	assert.NoError(t, p.Close())
}

func TestAMQPPublisher_Publish(t *testing.T) {
	metrics.EventsPublishedTotal.Reset()
	ch := &fakeChannel{}
	fixed := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	p := &AMQPPublisher{ch: ch, exchange: Exchange, now: func() time.Time { return fixed }}

	err := p.Publish(context.Background(), BookingCreated, map[string]int{"booking_id": 9})
	require.NoError(t, err)

	assert.Equal(t, Exchange, ch.exchange)
	assert.Equal(t, BookingCreated, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var evt struct {
		Type       string         `json:"type"`
		OccurredAt time.Time      `json:"occurred_at"`
		Data       map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch.msg.Body, &evt))
	assert.Equal(t, BookingCreated, evt.Type)
	assert.True(t, fixed.Equal(evt.OccurredAt))
	assert.Equal(t, 9, evt.Data["booking_id"])
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues(BookingCreated, "success")))
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	metrics.EventsPublishedTotal.Reset()
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &AMQPPublisher{ch: ch, exchange: Exchange, now: time.Now}

	err := p.Publish(context.Background(), PackageApproved, nil)
	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues(PackageApproved, "failed")))
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch}

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
