package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Transports and store drivers understood by the bootstrap.
const (
	TransportTelegram = "telegram"
	TransportDiscord  = "discord"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	ScopeAnyone = "anyone"
	ScopeOwner  = "owner"
)

type Config struct {
	Transport      string `env:"TRANSPORT" envDefault:"telegram"`
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	StoreDriver string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string        `env:"DATABASE_URL"`
	SQLitePath  string        `env:"SQLITE_PATH" envDefault:"./data/events.db"`
	RedisAddr   string        `env:"REDIS_ADDR"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	Locale   string `env:"LOCALE" envDefault:"en"`
	Timezone string `env:"TIMEZONE" envDefault:"Local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CreatePermission   Permission `env:"PERMISSION_CREATE" envDefault:"anyone"`
	ReminderPermission Permission `env:"PERMISSION_REMINDER" envDefault:"anyone"`
	PublishScope       string     `env:"PERMISSION_PUBLISH" envDefault:"anyone"`
}

// Load reads .env (optional) and the process environment, then validates.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI).
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case TransportTelegram:
		if strings.TrimSpace(c.TelegramToken) == "" {
			return fmt.Errorf("config: TELEGRAM_TOKEN is required for the telegram transport")
		}
	case TransportDiscord:
		if strings.TrimSpace(c.DiscordToken) == "" {
			return fmt.Errorf("config: DISCORD_TOKEN is required for the discord transport")
		}
	default:
		return fmt.Errorf("config: unknown TRANSPORT %q (telegram|discord)", c.Transport)
	}

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			// Local default when DATABASE_URL is not provided.
			c.DatabaseURL = "postgres://localhost:5432/eventbot?sslmode=disable"
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("config: SQLITE_PATH is required for the sqlite store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (postgres|sqlite|memory)", c.StoreDriver)
	}

	c.PublishScope = strings.ToLower(strings.TrimSpace(c.PublishScope))
	if c.PublishScope != ScopeAnyone && c.PublishScope != ScopeOwner {
		return fmt.Errorf("config: PERMISSION_PUBLISH must be %q or %q", ScopeAnyone, ScopeOwner)
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: invalid LOCALE %q: %w", c.Locale, err)
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	return nil
}
