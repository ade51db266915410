package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the gateway configuration. Every integration besides the REST
// backend is optional and stays off while its settings are empty.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// REST backend that owns groups, articles and comments
	BackendBaseURL string
	BackendTimeout time.Duration

	// Image uploads: "imgbb" (third-party host) or "gcs"
	ImageUploader   string
	ImageHostURL    string
	ImageHostAPIKey string
	ImageExpiration int
	ImageMaxBytes   int64
	ImageKeyHelpURL string

	// Session tokens presented by the frontend
	SessionJWTSecret string
	SessionTokenTTL  time.Duration

	// Database (optional activity log; disabled when DB_HOST is empty)
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ListCacheTTL  time.Duration

	// Google Cloud Storage
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	// Mailgun
	MailgunDomain  string
	MailgunAPIKey  string
	MailgunSender  string
	MailgunAPIBase string

	// RabbitMQ
	RabbitMQURL         string
	RabbitMQNotifyQueue string

	// Elasticsearch (optional article search index)
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESArticlesIndex    string

	// Links used in notification emails
	SiteURL string

	// Notification toggle
	MailSendEnabled bool

	// Logging
	LogLevel       string // overrides the env default when set
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parsed reads key with parse, keeping def when the variable is unset or
// malformed.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		log.Printf("config: %s=%q is invalid (%v); using %v", key, v, err, def)
		return def
	}
	return out
}

func getbool(key string, def bool) bool { return parsed(key, def, strconv.ParseBool) }

func getint(key string, def int) int { return parsed(key, def, strconv.Atoi) }

func getint64(key string, def int64) int64 {
	return parsed(key, def, func(v string) (int64, error) { return strconv.ParseInt(v, 10, 64) })
}

func getdur(key string, def time.Duration) time.Duration {
	return parsed(key, def, time.ParseDuration)
}

// Load reads the configuration from the environment, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "hobbyhub-gateway"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		BackendBaseURL: strings.TrimRight(getenv("BACKEND_BASE_URL", "http://localhost:3000"), "/"),
		BackendTimeout: getdur("BACKEND_TIMEOUT", 15*time.Second),

		ImageUploader:   strings.ToLower(getenv("IMAGE_UPLOADER", "imgbb")),
		ImageHostURL:    getenv("IMAGE_HOST_URL", "https://api.imgbb.com/1/upload"),
		ImageHostAPIKey: getenv("IMAGE_HOST_API_KEY", ""),
		ImageExpiration: getint("IMAGE_EXPIRATION", 600),
		ImageMaxBytes:   getint64("IMAGE_MAX_BYTES", 5*1024*1024),
		ImageKeyHelpURL: getenv("IMAGE_KEY_HELP_URL", "https://api.imgbb.com/"),

		SessionJWTSecret: getenv("SESSION_JWT_SECRET", devSessionSecret),
		SessionTokenTTL:  getdur("SESSION_TOKEN_TTL", time.Hour),

		DBHost:        getenv("DB_HOST", ""),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "hobbyhub"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),
		ListCacheTTL:  getdur("LIST_CACHE_TTL", 30*time.Second),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		MailgunDomain:  getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:  getenv("MAILGUN_API_KEY", ""),
		MailgunSender:  getenv("MAILGUN_SENDER", ""),
		MailgunAPIBase: getenv("MAILGUN_API_BASE", ""),

		RabbitMQURL:         getenv("RABBITMQ_URL", ""),
		RabbitMQNotifyQueue: getenv("RABBITMQ_NOTIFY_QUEUE", "notifications"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESArticlesIndex:    getenv("ES_ARTICLES_INDEX", "articles"),

		SiteURL: strings.TrimRight(getenv("SITE_URL", "http://localhost:5173"), "/"),

		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		LogLevel:       getenv("LOG_LEVEL", ""),
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

const devSessionSecret = "devsessionsecret"

// Validate reports settings that would make the gateway misbehave at runtime.
func (c *Config) Validate() error {
	var errs []error
	if _, err := url.ParseRequestURI(c.BackendBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("BACKEND_BASE_URL: %w", err))
	}
	switch c.ImageUploader {
	case "imgbb":
	case "gcs":
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required when IMAGE_UPLOADER=gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("IMAGE_UPLOADER: unknown uploader %q", c.ImageUploader))
	}
	if c.ImageMaxBytes <= 0 {
		errs = append(errs, errors.New("IMAGE_MAX_BYTES must be positive"))
	}
	if c.Env == "production" && c.SessionJWTSecret == devSessionSecret {
		errs = append(errs, errors.New("SESSION_JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// ActivityLogEnabled reports whether a Postgres host was configured.
func (c *Config) ActivityLogEnabled() bool {
	return c.DBHost != ""
}

// PostgresDSN returns a postgres:// URL for pgx and migrate, escaping credentials.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
