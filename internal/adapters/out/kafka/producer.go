// internal/adapters/out/kafka/producer.go
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/internal/application/usecase"
	odom "storefront/internal/domain/order"
)

var ErrProducerClosed = errors.New("kafka: producer is closed")

const headerEventType = "event_type"

// Producer publishes order event envelopes.
//
// Publish only enqueues; a single goroutine started by Start drains the
// inbox into an async kafka.Writer. Close flushes what is queued.
type Producer struct {
	w     *kafka.Writer
	topic string

	mu      sync.RWMutex
	started bool
	closed  bool
	inbox   chan kafka.Message
	done    chan struct{}
}

var _ usecase.EventPublisher = (*Producer)(nil)

// NewProducer builds a producer. With an empty topic every event goes to
// the topic named by order.TopicFor its type.
func NewProducer(brokers []string, topic string, buf int) *Producer {
	if buf <= 0 {
		buf = 256
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			BatchTimeout: 50 * time.Millisecond,
			Completion: func(msgs []kafka.Message, err error) {
				if err != nil {
					slog.Error("[kafka] write failed", "messages", len(msgs), "err", err)
				}
			},
		},
		topic: topic,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start runs the writer loop until Close.
func (p *Producer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				slog.Error("[kafka] enqueue failed", "topic", m.Topic, "err", err)
			}
		}
		if err := p.w.Close(); err != nil {
			slog.Error("[kafka] writer close failed", "err", err)
		}
	}()
}

// Publish encodes env and queues it. It blocks only while the inbox is full.
func (p *Producer) Publish(ctx context.Context, env odom.Envelope) error {
	m, err := p.message(env)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	select {
	case p.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Producer) message(env odom.Envelope) (kafka.Message, error) {
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: encode %s: %w", env.EventType, err)
	}
	topic := p.topic
	if topic == "" {
		topic = odom.TopicFor(env.EventType)
	}
	return kafka.Message{
		Topic: topic,
		Key:   odom.PartitionKey(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(env.EventType)},
		},
	}, nil
}

// Close stops accepting events and waits until queued ones are handed to
// the writer and the writer is flushed.
func (p *Producer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	close(p.inbox)
	started := p.started
	p.mu.Unlock()

	if !started {
		_ = p.w.Close()
		close(p.done)
		return
	}
	<-p.done
}
