// Package config loads and exposes application configuration (TOML file, .env, environment).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Default configuration values used when a field is missing in TOML and environment.
const (
	DefaultConfigPath      = "config.toml"
	DefaultEnvFile         = ".env"
	DefaultHTTPAddr        = ":3000"
	DefaultPostgresURL     = "postgres://postgres@127.0.0.1:5432/scholarbot?sslmode=disable"
	DefaultRedisURL        = "redis://127.0.0.1:6379/0"
	DefaultWebhookPath     = "/webhook"
	DefaultWatchdogSpec    = "@every 10m"
	DefaultMaxPendingCount = 10
	DefaultStateTTL        = 24 * time.Hour
)

// Config is the root application configuration.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	Operators OperatorsConfig `toml:"operators"`
	Links     LinksConfig     `toml:"links"`
	Watchdog  WatchdogConfig  `toml:"watchdog"`
	Cache     CacheConfig     `toml:"cache"`
}

// LogConfig holds logging level, format (text or json) and an optional log file.
type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
	File   string `toml:"file" env:"LOG_FILE"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string `toml:"addr" env:"HTTP_ADDR"`
	Port string `toml:"-" env:"PORT"`
}

// ListenAddr returns Addr, or ":<Port>" when only PORT is provided by the environment.
func (c ServerConfig) ListenAddr() string {
	if port := strings.TrimSpace(c.Port); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}
	return c.Addr
}

// TelegramConfig holds the bot credential and public webhook registration.
type TelegramConfig struct {
	Token         string `toml:"token" env:"TELEGRAM_TOKEN"`
	WebhookURL    string `toml:"webhook_url" env:"WEBHOOK_URL"`
	WebhookPath   string `toml:"webhook_path" env:"WEBHOOK_PATH"`
	WebhookSecret string `toml:"webhook_secret" env:"WEBHOOK_SECRET"`
}

// PostgresConfig holds the durable-store connection string.
type PostgresConfig struct {
	URL string `toml:"url" env:"POSTGRES_URL"`
}

// RedisConfig holds the cache connection string.
type RedisConfig struct {
	URL string `toml:"url" env:"REDIS_URL"`
}

// OperatorsConfig is the static allow-list of operator Telegram user ids.
type OperatorsConfig struct {
	IDs []int64 `toml:"ids" env:"ADMINS" envSeparator:","`
}

// Allowed reports whether id is on the operator allow-list.
func (c OperatorsConfig) Allowed(id int64) bool {
	for _, op := range c.IDs {
		if op == id {
			return true
		}
	}
	return false
}

// Primary returns the first operator id, used for service notifications.
func (c OperatorsConfig) Primary() (int64, bool) {
	if len(c.IDs) == 0 {
		return 0, false
	}
	return c.IDs[0], true
}

// LinksConfig holds the static document links shown to applicants.
type LinksConfig struct {
	OfferDoc    string `toml:"offer_doc" env:"OFFER_DOC_URL"`
	Application string `toml:"application" env:"APPLICATION_URL"`
	SOPD        string `toml:"sopd" env:"SOPD_URL"`
	Policy      string `toml:"policy" env:"POLICY_URL"`
	Form        string `toml:"form" env:"FORM_URL"`
	Club        string `toml:"club" env:"CLUB_URL"`
	// ContactEmail is the programme mailbox quoted in replies.
	ContactEmail string `toml:"contact_email" env:"CONTACT_EMAIL"`
}

// WatchdogConfig controls the periodic webhook health check.
type WatchdogConfig struct {
	Spec            string `toml:"spec" env:"WATCHDOG_SPEC"`
	MaxPendingCount int    `toml:"max_pending_count" env:"WATCHDOG_MAX_PENDING"`
	Disabled        bool   `toml:"disabled" env:"WATCHDOG_DISABLED"`
}

// CacheConfig holds retention windows for cache-backed state.
type CacheConfig struct {
	StateTTL       Duration `toml:"state_ttl"`
	DedupTTL       Duration `toml:"dedup_ttl"`
	EligibilityTTL Duration `toml:"eligibility_ttl"`
}

// Duration is a time.Duration decoded from TOML strings such as "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Defaults returns the configuration used before any file or environment is applied.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Telegram: TelegramConfig{
			WebhookPath: DefaultWebhookPath,
		},
		Postgres: PostgresConfig{URL: DefaultPostgresURL},
		Redis:    RedisConfig{URL: DefaultRedisURL},
		Links: LinksConfig{
			OfferDoc:     "https://alfabank.servicecdn.ru/site-upload/64/1d/11483/Alfa_Future_Scholarships_For_Students_Regulations.pdf",
			Application:  "https://docs.google.com/document/d/1XLokL8-yUEtJBZvm1ee1n59ScAmChoCD2JSa7-FP9LQ/edit?tab=t.0",
			SOPD:         "https://docs.google.com/document/d/1DctmqN3xaEsbPk0yoIDsYTlbYoUOQyYIQCILdjZz0nI/edit?tab=t.0",
			Policy:       "https://alfabank.servicecdn.ru/site-upload/cb/dc/4263/pdn.pdf",
			Form:         "https://a28861.webask.io/ffbndoiha",
			Club:         "https://t.me/+bTj7nfzcjDNiNWEy",
			ContactEmail: "alfa_chance@alfabank.ru",
		},
		Watchdog: WatchdogConfig{
			Spec:            DefaultWatchdogSpec,
			MaxPendingCount: DefaultMaxPendingCount,
		},
		Cache: CacheConfig{
			StateTTL:       Duration{DefaultStateTTL},
			DedupTTL:       Duration{DefaultStateTTL},
			EligibilityTTL: Duration{DefaultStateTTL},
		},
	}
}

// Load reads the TOML file at path (missing file is not an error), then loads .env when
// present and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields required to serve the webhook.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.Token) == "" {
		errs = append(errs, errors.New("TELEGRAM_TOKEN is required"))
	}
	if strings.TrimSpace(c.Postgres.URL) == "" {
		errs = append(errs, errors.New("POSTGRES_URL is required"))
	}
	if strings.TrimSpace(c.Redis.URL) == "" {
		errs = append(errs, errors.New("REDIS_URL is required"))
	}
	if strings.TrimSpace(c.Telegram.WebhookURL) == "" {
		errs = append(errs, errors.New("WEBHOOK_URL is required"))
	} else if err := c.Telegram.checkWebhookPath(); err != nil {
		errs = append(errs, err)
	}
	if !strings.HasPrefix(c.Telegram.WebhookPath, "/") {
		errs = append(errs, fmt.Errorf("webhook path must start with '/': %q", c.Telegram.WebhookPath))
	}
	return errors.Join(errs...)
}

// checkWebhookPath makes sure Telegram posts to the route the server mounts.
func (c TelegramConfig) checkWebhookPath() error {
	u, err := url.Parse(strings.TrimSpace(c.WebhookURL))
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid WEBHOOK_URL %q", c.WebhookURL)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if path != c.WebhookPath {
		return fmt.Errorf("WEBHOOK_URL path %q does not match webhook path %q", path, c.WebhookPath)
	}
	return nil
}
