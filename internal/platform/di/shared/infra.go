// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/out/redisstore"
	appcfg "storefront/internal/infra/config"
	firestoreinfra "storefront/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
//   - owns external clients (Firestore, GCS, Firebase Auth, Secret Manager, Redis)
//   - must NOT depend on routers or handlers
type Infra struct {
	Config *appcfg.Config

	// Clients (owned; Close-managed). Any of them may be nil.
	Firestore     *firestoreinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Redis         *redis.Client
}

// NewInfra connects the clients cfg asks for.
// Firestore, GCS and Redis are strict when configured; Firebase Auth and
// Secret Manager are best-effort (warn + continue).
func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	inf := &Infra{Config: cfg}

	var opts []option.ClientOption
	if cred := strings.TrimSpace(cfg.GCPCreds); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
		slog.Info("[shared.infra] using credentials file", "file", redactPath(cred))
	}

	// clients outlive init; only the probes use the init deadline
	clientCtx := context.WithoutCancel(ctx)

	g, gctx := errgroup.WithContext(ctx)
	if !cfg.UseMemory() {
		g.Go(func() error {
			fs, err := firestoreinfra.NewClient(clientCtx, cfg.GCPProjectID, opts...)
			if err != nil {
				return fmt.Errorf("shared.infra: %w", err)
			}
			inf.Firestore = fs
			if err := fs.Ping(gctx); err != nil {
				slog.Warn("[shared.infra] firestore ping failed", "err", err)
			}
			return nil
		})
	}
	if strings.TrimSpace(cfg.GCSBucket) != "" {
		g.Go(func() error {
			c, err := storage.NewClient(clientCtx, opts...)
			if err != nil {
				return fmt.Errorf("shared.infra: storage.NewClient: %w", err)
			}
			inf.GCS = c
			return nil
		})
	} else {
		slog.Warn("[shared.infra] GCS_BUCKET is empty (image uploads disabled)")
	}
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		g.Go(func() error {
			rdb, err := redisstore.New(gctx, addr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				return fmt.Errorf("shared.infra: %w", err)
			}
			inf.Redis = rdb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = inf.Close()
		return nil, err
	}

	// best-effort clients
	if cfg.GCPProjectID != "" {
		app, err := firebase.NewApp(clientCtx, &firebase.Config{ProjectID: cfg.GCPProjectID}, opts...)
		if err != nil {
			slog.Warn("[shared.infra] firebase app init failed", "err", err)
		} else if auth, err := app.Auth(clientCtx); err != nil {
			slog.Warn("[shared.infra] firebase auth init failed", "err", err)
		} else {
			inf.FirebaseAuth = auth
		}
	}
	if cfg.SendGridAPIKey == "" && cfg.SendGridSecretID != "" {
		sm, err := secretmanager.NewClient(clientCtx, opts...)
		if err != nil {
			slog.Warn("[shared.infra] secretmanager.NewClient failed", "err", err)
		} else {
			inf.SecretManager = sm
		}
	}

	slog.Info("[shared.infra] ready",
		"backend", cfg.StoreBackend,
		"gcs", inf.GCS != nil,
		"redis", inf.Redis != nil,
		"firebaseAuth", inf.FirebaseAuth != nil,
		"kafka", len(cfg.KafkaBrokers) > 0,
	)
	return inf, nil
}

// FirestoreClient returns the raw client or nil.
func (i *Infra) FirestoreClient() *firestore.Client {
	if i == nil || i.Firestore == nil {
		return nil
	}
	return i.Firestore.Client
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Firestore != nil {
		errs = append(errs, i.Firestore.Close())
	}
	if i.GCS != nil {
		errs = append(errs, i.GCS.Close())
	}
	if i.SecretManager != nil {
		errs = append(errs, i.SecretManager.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	return errors.Join(errs...)
}

func redactPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}

// Verifier returns the Firebase token verifier, or nil when auth is not
// configured (protected routes then answer 503).
func (i *Infra) Verifier() middleware.TokenVerifier {
	if i == nil || i.FirebaseAuth == nil {
		return nil
	}
	return middleware.FirebaseVerifier{Client: i.FirebaseAuth}
}
