// internal/platform/di/shared/secret.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
)

// secretAccessor is the slice of the Secret Manager client we use.
type secretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// secretName expands a bare secret id to its latest version resource name.
// Full "projects/..." names are used as given.
func secretName(projectID, secretID string) (string, error) {
	id := strings.TrimSpace(secretID)
	if id == "" {
		return "", errors.New("secret id is empty")
	}
	if strings.HasPrefix(id, "projects/") {
		if !strings.Contains(id, "/versions/") {
			id += "/versions/latest"
		}
		return id, nil
	}
	if strings.TrimSpace(projectID) == "" {
		return "", errors.New("project id is empty")
	}
	return "projects/" + projectID + "/secrets/" + id + "/versions/latest", nil
}

func accessSecret(ctx context.Context, sm secretAccessor, projectID, secretID string) (string, error) {
	name, err := secretName(projectID, secretID)
	if err != nil {
		return "", err
	}
	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("AccessSecretVersion failed (%s): %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("empty payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// SendGridAPIKey returns SENDGRID_API_KEY, or the SENDGRID_SECRET_ID secret.
// An empty result means e-mail is logged instead of sent.
func (i *Infra) SendGridAPIKey(ctx context.Context) (string, error) {
	cfg := i.Config
	if k := strings.TrimSpace(cfg.SendGridAPIKey); k != "" {
		return k, nil
	}
	if cfg.SendGridSecretID == "" {
		return "", nil
	}
	if i.SecretManager == nil {
		return "", errors.New("shared: SENDGRID_SECRET_ID set but Secret Manager is unavailable")
	}
	return accessSecret(ctx, i.SecretManager, cfg.GCPProjectID, cfg.SendGridSecretID)
}
