// internal/infra/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config holds the environment settings shared by every binary.
type Config struct {
	ServiceName string
	Port        string
	LogLevel    string

	GCPProjectID string
	GCPCreds     string // GOOGLE_APPLICATION_CREDENTIALS
	StoreBackend string // firestore | memory

	GCSBucket        string
	GCSPublicBaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers     []string
	KafkaTopicOrders string // empty: one topic per event type
	KafkaGroupID     string

	SendGridAPIKey   string
	SendGridSecretID string
	MailFrom         string
	MailFromName     string
	ShopName         string

	CartMaxLineQuantity int
	CORSAllowedOrigins  []string
	AdminClaim          string

	OTLPEndpoint string
}

// LoadDotEnv loads .env (or the given files) when present. Variables that
// are already set win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Load reads the environment. serviceName is the default for SERVICE_NAME.
func Load(serviceName string) *Config {
	project := getenvDefault("GCP_PROJECT", "")
	if project == "" {
		project = firstEnv("GCP_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "FIREBASE_PROJECT_ID")
	}
	return &Config{
		ServiceName: getenvDefault("SERVICE_NAME", serviceName),
		Port:        getenvDefault("PORT", "8080"),
		LogLevel:    getenvDefault("LOG_LEVEL", "info"),

		GCPProjectID: project,
		GCPCreds:     os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		StoreBackend: strings.ToLower(getenvDefault("STORE_BACKEND", BackendFirestore)),

		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSPublicBaseURL: getenvDefault("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		KafkaBrokers:     splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicOrders: os.Getenv("KAFKA_TOPIC_ORDERS"),
		KafkaGroupID:     getenvDefault("KAFKA_GROUP_ID", "storefront-notifier"),

		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SendGridSecretID: os.Getenv("SENDGRID_SECRET_ID"),
		MailFrom:         getenvDefault("MAIL_FROM", "no-reply@example.com"),
		MailFromName:     getenvDefault("MAIL_FROM_NAME", "Storefront"),
		ShopName:         getenvDefault("SHOP_NAME", "Storefront"),

		CartMaxLineQuantity: getenvInt("CART_MAX_LINE_QUANTITY", 0),
		CORSAllowedOrigins:  splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AdminClaim:          getenvDefault("ADMIN_CLAIM", "admin"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// Validate reports settings no binary can run with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("config: GCP_PROJECT is required when STORE_BACKEND=%s", BackendFirestore)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.CartMaxLineQuantity < 0 {
		return fmt.Errorf("config: CART_MAX_LINE_QUANTITY must be >= 0, got %d", c.CartMaxLineQuantity)
	}
	return nil
}

func (c *Config) UseMemory() bool { return c.StoreBackend == BackendMemory }

func (c *Config) Addr() string { return ":" + c.Port }

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
