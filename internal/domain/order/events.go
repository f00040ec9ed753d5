// internal/domain/order/events.go
package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

// TopicFor returns the topic an event type is published to.
func TopicFor(eventType string) string {
	if eventType == EventOrderStatusChanged {
		return TopicOrderStatusChanged
	}
	return TopicOrderCreated
}

// Topics lists every per-type topic.
func Topics() []string {
	return []string{TopicOrderCreated, TopicOrderStatusChanged}
}

// PartitionKey keeps all events of one order in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

// Envelope wraps every order event on the wire.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads ----

type ItemLine struct {
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	Variants  map[string]string `json:"variants,omitempty"`
	Quantity  int               `json:"quantity"`
	LineTotal string            `json:"line_total"`
}

type OrderCreatedPayload struct {
	OrderID string     `json:"order_id"`
	Owner   string     `json:"owner"`
	Email   string     `json:"email"`
	Items   []ItemLine `json:"items"`
	Total   string     `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	By      string `json:"by,omitempty"`
}

// NewCreatedEvent builds the OrderCreated envelope for o.
func NewCreatedEvent(o *Order, producer string, now time.Time) (Envelope, error) {
	lines := make([]ItemLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, ItemLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Variants:  it.Variants,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal.String(),
		})
	}
	return newEnvelope(EventOrderCreated, o.ID, producer, now, OrderCreatedPayload{
		OrderID: o.ID,
		Owner:   o.Owner.String(),
		Email:   o.Email,
		Items:   lines,
		Total:   o.Total.String(),
	})
}

// NewStatusChangedEvent builds the OrderStatusChanged envelope for the last
// transition of o.
func NewStatusChangedEvent(o *Order, producer string, now time.Time) (Envelope, error) {
	if len(o.History) == 0 {
		return Envelope{}, fmt.Errorf("%w: order %s has no transition", ErrInvalid, o.ID)
	}
	last := o.History[len(o.History)-1]
	return newEnvelope(EventOrderStatusChanged, o.ID, producer, now, OrderStatusChangedPayload{
		OrderID: o.ID,
		Email:   o.Email,
		From:    last.From,
		To:      last.To,
		By:      last.By,
	})
}

func newEnvelope(eventType, orderID, producer string, now time.Time, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    now.UTC(),
		Producer:      producer,
		CorrelationID: orderID,
		Payload:       b,
	}, nil
}

// DecodePayload unmarshals the envelope payload into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", env.EventType, err)
	}
	return t, nil
}
