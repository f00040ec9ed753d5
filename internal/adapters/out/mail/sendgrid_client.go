// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey   string
	fromName string
	// endpoint overrides the SendGrid send URL (tests).
	endpoint string
}

func NewSendGridClient(apiKey, fromName string) *SendGridClient {
	return &SendGridClient{apiKey: strings.TrimSpace(apiKey), fromName: fromName}
}

// WithEndpoint points the client at another send URL.
func (c *SendGridClient) WithEndpoint(url string) *SendGridClient {
	c.endpoint = strings.TrimSpace(url)
	return c
}

// Send sends an email using SendGrid
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(c.fromName, from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	client := sendgrid.NewSendClient(c.apiKey)
	if c.endpoint != "" {
		client.BaseURL = c.endpoint
	}

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		slog.ErrorContext(ctx, "[sendgrid] send failed", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	slog.InfoContext(ctx, "[sendgrid] mail sent", "status", response.StatusCode, "subject", subject)
	return nil
}
