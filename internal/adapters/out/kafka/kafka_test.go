package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	odom "storefront/internal/domain/order"
)

func testEnvelope(t *testing.T) odom.Envelope {
	t.Helper()
	payload, err := json.Marshal(odom.OrderStatusChangedPayload{OrderID: "o-1", From: odom.StatusPending, To: odom.StatusPaid})
	require.NoError(t, err)
	return odom.Envelope{
		EventID:       "e-1",
		EventType:     odom.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Producer:      "console",
		CorrelationID: "o-1",
		Payload:       payload,
	}
}

func TestProducer_MessageRoutesByType(t *testing.T) {
	env := testEnvelope(t)

	perType := NewProducer([]string{"127.0.0.1:9092"}, "", 1)
	m, err := perType.message(env)
	require.NoError(t, err)
	assert.Equal(t, odom.TopicOrderStatusChanged, m.Topic)
	assert.Equal(t, []byte("o-1"), m.Key)
	require.Len(t, m.Headers, 1)
	assert.Equal(t, odom.EventOrderStatusChanged, string(m.Headers[0].Value))

	fixed := NewProducer([]string{"127.0.0.1:9092"}, "orders", 1)
	m, err = fixed.message(env)
	require.NoError(t, err)
	assert.Equal(t, "orders", m.Topic)

	back, err := DecodeEnvelope(m)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, back.EventID)
	assert.JSONEq(t, string(env.Payload), string(back.Payload))

	perType.Close()
	fixed.Close()
}

func TestProducer_PublishAfterClose(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, "orders", 1)
	p.Start()
	p.Close()
	p.Close()

	err := p.Publish(context.Background(), testEnvelope(t))
	require.ErrorIs(t, err, ErrProducerClosed)
}

func TestProducer_PublishRespectsContextWhenFull(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, "orders", 1)
	// not started: the inbox fills up after one message
	require.NoError(t, p.Publish(context.Background(), testEnvelope(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, testEnvelope(t))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	p.Close()
}

func TestDecodeEnvelope(t *testing.T) {
	_, err := DecodeEnvelope(kafka.Message{Value: []byte("nope")})
	require.Error(t, err)

	_, err = DecodeEnvelope(kafka.Message{Value: []byte(`{"event_id":"x"}`)})
	require.Error(t, err)

	env, err := DecodeEnvelope(kafka.Message{
		Value:   []byte(`{"event_id":"x","payload":{}}`),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(odom.EventOrderCreated)}},
	})
	require.NoError(t, err)
	assert.Equal(t, odom.EventOrderCreated, env.EventType)
}

func TestEnvelopeHandler(t *testing.T) {
	var got []string
	h := EnvelopeHandler(func(_ context.Context, env odom.Envelope) error {
		got = append(got, env.EventID)
		if env.EventID == "fail" {
			return errors.New("boom")
		}
		return nil
	})
	ctx := context.Background()

	require.NoError(t, h(ctx, kafka.Message{Value: []byte("garbage")}))
	require.NoError(t, h(ctx, kafka.Message{Value: []byte(`{"event_id":"ok","event_type":"OrderCreated"}`)}))
	require.Error(t, h(ctx, kafka.Message{Value: []byte(`{"event_id":"fail","event_type":"OrderCreated"}`)}))
	assert.Equal(t, []string{"ok", "fail"}, got)
}
