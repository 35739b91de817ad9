package payments

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alovak/tuitionpay/internal/txref"
	"github.com/joho/godotenv"
)

const (
	DefaultGatewayBaseURL = "https://api.paybox.ng/v1"
	DefaultCallbackURL    = "https://portal.tuitionpay.ng/payment/callback"
	DefaultLogoURL        = "https://portal.tuitionpay.ng/static/logo.png"
	DefaultAllowedOrigin  = "https://portal.tuitionpay.ng"
)

// Config is built once at start-up and only read afterwards.
type Config struct {
	HTTPAddr string
	// AllowedOrigins is the CORS allow-list; wildcards are refused.
	AllowedOrigins []string

	GatewayBaseURL string
	// GatewaySecretKey and MerchantBoxID are required to initiate payments.
	// The rest of the service works without them.
	GatewaySecretKey string
	MerchantBoxID    string
	CallbackURL      string
	LogoURL          string
	GatewayTimeout   time.Duration
	// GatewayMaxRetries is the number of extra attempts when the gateway does
	// not answer at all. Zero means a single call.
	GatewayMaxRetries int

	// FeeScheduleFile replaces the compiled-in fee table when set.
	FeeScheduleFile string
	ReferencePrefix string
	LogLevel        slog.Level
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:        ":5000",
		AllowedOrigins:  []string{DefaultAllowedOrigin},
		GatewayBaseURL:  DefaultGatewayBaseURL,
		CallbackURL:     DefaultCallbackURL,
		LogoURL:         DefaultLogoURL,
		GatewayTimeout:  30 * time.Second,
		ReferencePrefix: txref.DefaultPrefix,
		LogLevel:        slog.LevelInfo,
	}
}

// LoadConfig applies .env files (when present) and then the process
// environment on top of DefaultConfig. With no arguments it reads ./.env.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := DefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	cfg.GatewayBaseURL = getenv("GATEWAY_BASE_URL", cfg.GatewayBaseURL)
	cfg.GatewaySecretKey = os.Getenv("GATEWAY_SECRET_KEY")
	cfg.MerchantBoxID = os.Getenv("GATEWAY_MERCHANT_BOX")
	cfg.CallbackURL = getenv("GATEWAY_CALLBACK_URL", cfg.CallbackURL)
	cfg.LogoURL = getenv("GATEWAY_LOGO_URL", cfg.LogoURL)
	cfg.FeeScheduleFile = os.Getenv("FEE_SCHEDULE_FILE")
	cfg.ReferencePrefix = getenv("TXN_REF_PREFIX", cfg.ReferencePrefix)

	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GATEWAY_TIMEOUT: %w", err)
		}
		cfg.GatewayTimeout = d
	}
	if v := os.Getenv("GATEWAY_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("GATEWAY_MAX_RETRIES: %w", err)
		}
		cfg.GatewayMaxRetries = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings the whole service depends on. Missing gateway
// credentials are not an error here; only payment initiation needs them.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http address is required")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}
	for _, o := range c.AllowedOrigins {
		if strings.Contains(o, "*") {
			return fmt.Errorf("allowed origin %q: wildcard origins are not permitted", o)
		}
	}
	if c.GatewayBaseURL == "" {
		return fmt.Errorf("gateway base url is required")
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive, got %s", c.GatewayTimeout)
	}
	if c.GatewayMaxRetries < 0 {
		return fmt.Errorf("gateway max retries must not be negative, got %d", c.GatewayMaxRetries)
	}
	return nil
}

func (c *Config) HasGatewayCredentials() bool {
	return c.GatewaySecretKey != "" && c.MerchantBoxID != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
