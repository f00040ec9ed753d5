// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// PingTimeout bounds the startup probe.
const PingTimeout = 5 * time.Second

// ClientWrapper holds the Firestore client of one project.
type ClientWrapper struct {
	Client    *firestore.Client
	ProjectID string
}

// NewClient builds a client with opts (ADC when none). The client dials
// lazily; FIRESTORE_EMULATOR_HOST is picked up by the SDK.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*ClientWrapper, error) {
	if projectID == "" {
		return nil, errors.New("firestore: project id is empty")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: new client (project=%s): %w", projectID, err)
	}
	return &ClientWrapper{Client: client, ProjectID: projectID}, nil
}

// Ping reads at most one collection id, which is enough to surface bad
// credentials or an unreachable endpoint.
func (cw *ClientWrapper) Ping(ctx context.Context) error {
	if cw == nil || cw.Client == nil {
		return errors.New("firestore: client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	it := cw.Client.Collections(ctx)
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore: ping (project=%s): %w", cw.ProjectID, err)
	}
	slog.Info("[firestore] reachable", "project", cw.ProjectID)
	return nil
}

func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}
