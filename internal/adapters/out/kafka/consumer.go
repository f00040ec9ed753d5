// internal/adapters/out/kafka/consumer.go
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

	odom "storefront/internal/domain/order"
)

// Handler must return nil only when the message was processed and its
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

// MaxAttempts bounds how often a failing message is retried before it is
// logged and committed.
const MaxAttempts = 3

type Consumer struct {
	r       *kafka.Reader
	workers int
	backoff time.Duration
}

// NewConsumer reads topics as a member of group.
func NewConsumer(brokers []string, group string, topics []string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, backoff: 200 * time.Millisecond}
}

// Start dispatches messages to h until ctx is cancelled. It waits for the
// workers before closing the reader.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	jobs := make(chan kafka.Message, c.workers)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				c.process(ctx, h, m)
			}
		}()
	}

	err := c.dispatch(ctx, jobs)
	close(jobs)
	wg.Wait()
	if cerr := c.r.Close(); cerr != nil {
		slog.Warn("[kafka] reader close failed", "err", cerr)
	}
	return err
}

// Close releases the reader without consuming. Start closes it on return.
func (c *Consumer) Close() error {
	return c.r.Close()
}

func (c *Consumer) dispatch(ctx context.Context, jobs chan<- kafka.Message) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) {
	var err error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err = h(ctx, m); err == nil {
			break
		}
		slog.WarnContext(ctx, "[kafka] handler failed",
			"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "attempt", attempt, "err", err)
		select {
		case <-time.After(c.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			// leave uncommitted; redelivered after restart
			return
		}
	}
	if err != nil {
		slog.ErrorContext(ctx, "[kafka] giving up on message",
			"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "err", err)
	}
	if cerr := c.r.CommitMessages(ctx, m); cerr != nil && !errors.Is(cerr, context.Canceled) {
		slog.ErrorContext(ctx, "[kafka] commit failed", "offset", m.Offset, "err", cerr)
	}
}

// EnvelopeHandler decodes order event envelopes for fn. A message that is
// not an envelope is skipped.
func EnvelopeHandler(fn func(ctx context.Context, env odom.Envelope) error) Handler {
	return func(ctx context.Context, m kafka.Message) error {
		env, err := DecodeEnvelope(m)
		if err != nil {
			slog.ErrorContext(ctx, "[kafka] skip undecodable message", "topic", m.Topic, "offset", m.Offset, "err", err)
			return nil
		}
		return fn(ctx, env)
	}
}

// DecodeEnvelope reads an envelope from a message. The event_type header
// fills in a missing envelope type.
func DecodeEnvelope(m kafka.Message) (odom.Envelope, error) {
	var env odom.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return odom.Envelope{}, fmt.Errorf("kafka: decode envelope: %w", err)
	}
	if env.EventType == "" {
		for _, h := range m.Headers {
			if h.Key == headerEventType {
				env.EventType = string(h.Value)
			}
		}
	}
	if env.EventType == "" {
		return odom.Envelope{}, errors.New("kafka: envelope has no event type")
	}
	return env, nil
}
