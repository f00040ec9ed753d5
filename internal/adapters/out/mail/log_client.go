// internal/adapters/out/mail/log_client.go
package mail

import (
	"context"
	"log/slog"
)

// LogClient writes mails to the log instead of sending them. Used when no
// SendGrid key is configured.
type LogClient struct{}

func (LogClient) Send(ctx context.Context, from, to, subject, body string) error {
	slog.InfoContext(ctx, "[mail] (log only)", "from", from, "to", to, "subject", subject, "bodyBytes", len(body))
	return nil
}
