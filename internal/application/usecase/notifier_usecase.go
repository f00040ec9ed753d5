// internal/application/usecase/notifier_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	odom "storefront/internal/domain/order"
)

// NotifierUsecase turns order events into customer e-mails.
type NotifierUsecase struct {
	mailer Mailer
	shop   string
}

func NewNotifierUsecase(mailer Mailer, shopName string) *NotifierUsecase {
	if strings.TrimSpace(shopName) == "" {
		shopName = "Storefront"
	}
	return &NotifierUsecase{mailer: mailer, shop: shopName}
}

// Handle sends the e-mail for one event. Unknown event types are skipped.
// A returned error means the event should be retried.
func (uc *NotifierUsecase) Handle(ctx context.Context, env odom.Envelope) error {
	switch env.EventType {
	case odom.EventOrderCreated:
		p, err := odom.DecodePayload[odom.OrderCreatedPayload](env)
		if err != nil {
			// a payload that cannot be decoded will never succeed
			slog.ErrorContext(ctx, "[notifier] drop undecodable event", "eventId", env.EventID, "err", err)
			return nil
		}
		return uc.send(ctx, env, p.Email, uc.createdSubject(p), createdBody(p))

	case odom.EventOrderStatusChanged:
		p, err := odom.DecodePayload[odom.OrderStatusChangedPayload](env)
		if err != nil {
			slog.ErrorContext(ctx, "[notifier] drop undecodable event", "eventId", env.EventID, "err", err)
			return nil
		}
		return uc.send(ctx, env, p.Email, uc.statusSubject(p), statusBody(p))

	default:
		slog.DebugContext(ctx, "[notifier] skip event", "eventType", env.EventType, "eventId", env.EventID)
		return nil
	}
}

func (uc *NotifierUsecase) send(ctx context.Context, env odom.Envelope, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		slog.WarnContext(ctx, "[notifier] event has no recipient", "eventId", env.EventID)
		return nil
	}
	if err := uc.mailer.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("notifier: send %s mail for order %s: %w", env.EventType, env.CorrelationID, err)
	}
	slog.InfoContext(ctx, "[notifier] mail sent", "eventType", env.EventType, "orderId", env.CorrelationID)
	return nil
}

func (uc *NotifierUsecase) createdSubject(p odom.OrderCreatedPayload) string {
	return fmt.Sprintf("[%s] Order %s received", uc.shop, p.OrderID)
}

func (uc *NotifierUsecase) statusSubject(p odom.OrderStatusChangedPayload) string {
	return fmt.Sprintf("[%s] Order %s is now %s", uc.shop, p.OrderID, p.To)
}

func createdBody(p odom.OrderCreatedPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", p.OrderID)
	for _, it := range p.Items {
		fmt.Fprintf(&b, "  %d x %s", it.Quantity, it.Name)
		if opts := formatVariants(it.Variants); opts != "" {
			fmt.Fprintf(&b, " (%s)", opts)
		}
		fmt.Fprintf(&b, "  %s\n", it.LineTotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", p.Total)
	return b.String()
}

func statusBody(p odom.OrderStatusChangedPayload) string {
	return fmt.Sprintf("The status of your order %s changed from %s to %s.\n", p.OrderID, p.From, p.To)
}

func formatVariants(v map[string]string) string {
	if len(v) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return strings.Join(parts, ", ")
}

// ========================================
// InlinePublisher
// ========================================

// InlinePublisher hands events straight to the notifier. It stands in for
// Kafka when no broker is configured.
type InlinePublisher struct {
	notifier *NotifierUsecase
}

func NewInlinePublisher(n *NotifierUsecase) *InlinePublisher {
	return &InlinePublisher{notifier: n}
}

func (p *InlinePublisher) Publish(ctx context.Context, env odom.Envelope) error {
	if p == nil || p.notifier == nil {
		return nil
	}
	return p.notifier.Handle(ctx, env)
}

var _ EventPublisher = (*InlinePublisher)(nil)
