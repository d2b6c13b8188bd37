package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"
)

// Calls source backends.
const (
	SourceGraphQL  = "graphql"
	SourcePostgres = "postgres"
)

type Config struct {
	ListenAddr string
	BaseURL    string
	Env        string

	CallsSource  string
	FetchTimeout time.Duration
	Location     *time.Location

	API struct {
		GraphQLURL   string
		Token        string
		ClientID     string
		ClientSecret string
		TokenURL     string
		IssuerURL    string
	}

	DB struct {
		DSN string
	}

	Redis struct {
		Addr string
	}

	Session struct {
		Secret string
	}

	PrometheusEnabled bool
	TrustedProxies    []string
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", ":8080")
	cfg.BaseURL = getenvDefault("APP_BASE_URL", "http://localhost:8080")
	cfg.Env = getenvDefault("APP_ENV", "production")
	cfg.CallsSource = strings.ToLower(getenvDefault("APP_CALLS_SOURCE", SourceGraphQL))

	timeout, err := getenvDuration("APP_FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = timeout

	loc, err := time.LoadLocation(getenvDefault("APP_TIME_ZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIME_ZONE: %w", err)
	}
	cfg.Location = loc

	cfg.API.GraphQLURL = os.Getenv("APP_GRAPHQL_URL")
	cfg.API.Token = os.Getenv("APP_API_TOKEN")
	cfg.API.ClientID = os.Getenv("APP_API_CLIENT_ID")
	cfg.API.ClientSecret = os.Getenv("APP_API_CLIENT_SECRET")
	cfg.API.TokenURL = os.Getenv("APP_API_TOKEN_URL")
	cfg.API.IssuerURL = os.Getenv("APP_API_ISSUER_URL")

	cfg.DB.DSN = os.Getenv("APP_DB_DSN")
	if cfg.DB.DSN == "" {
		host := os.Getenv("APP_DB_HOST")
		name := os.Getenv("APP_DB_NAME")
		user := os.Getenv("APP_DB_USER")
		password := os.Getenv("APP_DB_PASSWORD")
		port := getenvDefault("APP_DB_PORT", "5432")
		sslmode := getenvDefault("APP_DB_SSLMODE", "disable")

		if host != "" && name != "" && user != "" && password != "" {
			dsn := url.URL{
				Scheme:   "postgres",
				User:     url.UserPassword(user, password),
				Host:     net.JoinHostPort(host, port),
				Path:     "/" + name,
				RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
			}
			cfg.DB.DSN = dsn.String()
		}
	}

	cfg.Redis.Addr = os.Getenv("APP_REDIS_ADDR")
	cfg.Session.Secret = os.Getenv("APP_SESSION_SECRET")
	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", false)
	cfg.TrustedProxies = getenvList("APP_TRUSTED_PROXIES")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings required by the selected source and the
// session layer are present.
func (c *Config) Validate() error {
	switch c.CallsSource {
	case SourceGraphQL:
		if c.API.GraphQLURL == "" {
			return errors.New("APP_GRAPHQL_URL is required when APP_CALLS_SOURCE=graphql")
		}
		if c.API.ClientID != "" {
			if c.API.ClientSecret == "" {
				return errors.New("APP_API_CLIENT_SECRET is required with APP_API_CLIENT_ID")
			}
			if c.API.TokenURL == "" && c.API.IssuerURL == "" {
				return errors.New("APP_API_TOKEN_URL or APP_API_ISSUER_URL is required with APP_API_CLIENT_ID")
			}
		}
	case SourcePostgres:
		if c.DB.DSN == "" {
			return errors.New("APP_DB_DSN is required (or set APP_DB_HOST, APP_DB_NAME, APP_DB_USER, and APP_DB_PASSWORD)")
		}
	default:
		return fmt.Errorf("APP_CALLS_SOURCE must be %q or %q (got %q)", SourceGraphQL, SourcePostgres, c.CallsSource)
	}

	if c.Session.Secret == "" {
		return errors.New("APP_SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(c.Session.Secret))
	}
	if c.FetchTimeout <= 0 {
		return errors.New("APP_FETCH_TIMEOUT must be positive")
	}
	return nil
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(strings.ToLower(c.BaseURL), "https://")
}

// Debug reports whether verbose logging is wanted.
func (c *Config) Debug() bool {
	return c.Env == "local" || c.Env == "dev"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
