// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"strings"

	"storefront/internal/application/usecase"
)

// EmailClient abstracts the actual transport (SendGrid, SMTP, ...).
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// OrderMailer implements usecase.Mailer with a fixed sender address.
type OrderMailer struct {
	client      EmailClient
	fromAddress string
}

var _ usecase.Mailer = (*OrderMailer)(nil)

func NewOrderMailer(client EmailClient, fromAddress string) *OrderMailer {
	return &OrderMailer{client: client, fromAddress: strings.TrimSpace(fromAddress)}
}

func (m *OrderMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(to), subject, body)
}
