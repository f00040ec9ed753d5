// internal/application/usecase/ports.go
package usecase

import (
	"context"
	"io"
	"time"

	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the wall clock in UTC.
var SystemClock Clock = systemClock{}

// ImageStore uploads and deletes catalog images.
type ImageStore interface {
	// Upload stores r under folder and returns its public reference.
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (common.Image, error)
	// Delete removes an object; deleting a missing object is not an error.
	Delete(ctx context.Context, publicID string) error
}

// EventPublisher delivers order events.
type EventPublisher interface {
	Publish(ctx context.Context, env odom.Envelope) error
}

// IdempotencyStore remembers which order a checkout key produced.
type IdempotencyStore interface {
	// Reserve claims key. When the key was already completed it returns the
	// order id and reserved=false. When another request holds the key it
	// returns ("", false, nil).
	Reserve(ctx context.Context, key string) (orderID string, reserved bool, err error)
	// Complete records the order id for a reserved key.
	Complete(ctx context.Context, key, orderID string) error
	// Release drops a reservation after a failed checkout.
	Release(ctx context.Context, key string) error
}

// StatusCache keeps recent order statuses for cheap polling.
type StatusCache interface {
	Get(ctx context.Context, orderID string) (odom.Status, bool, error)
	Set(ctx context.Context, orderID string, status odom.Status) error
}

// Mailer sends a plain-text e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
