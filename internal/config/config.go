package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "bgswatch.yaml"

type Config struct {
	Faction  string         `yaml:"faction" env:"BGSWATCH_FACTION"`
	Enabled  bool           `yaml:"enabled" env:"BGSWATCH_ENABLED"`
	Database DatabaseConfig `yaml:"database"`
	Tick     TickConfig     `yaml:"tick"`
	Shoutout ShoutoutConfig `yaml:"shoutout"`
	Webhooks WebhookConfig  `yaml:"webhooks"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"BGSWATCH_DATABASE_DSN"`
}

type TickConfig struct {
	URL          string        `yaml:"url" env:"BGSWATCH_TICK_URL"`
	Path         string        `yaml:"path" env:"BGSWATCH_TICK_PATH"`
	PollInterval time.Duration `yaml:"poll_interval" env:"BGSWATCH_TICK_POLL_INTERVAL"`
	Timeout      time.Duration `yaml:"timeout" env:"BGSWATCH_TICK_TIMEOUT"`
}

type ShoutoutConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay" env:"BGSWATCH_SHOUTOUT_SETTLE_DELAY"`
}

type WebhookConfig struct {
	BGS      []string      `yaml:"bgs" env:"BGSWATCH_WEBHOOK_BGS" envSeparator:","`
	Conflict []string      `yaml:"conflict" env:"BGSWATCH_WEBHOOK_CONFLICT" envSeparator:","`
	Shoutout []string      `yaml:"shoutout" env:"BGSWATCH_WEBHOOK_SHOUTOUT" envSeparator:","`
	Debug    []string      `yaml:"debug" env:"BGSWATCH_WEBHOOK_DEBUG" envSeparator:","`
	Timeout  time.Duration `yaml:"timeout" env:"BGSWATCH_WEBHOOK_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"BGSWATCH_LOG_LEVEL"`
	Format string `yaml:"format" env:"BGSWATCH_LOG_FORMAT"`
}

// Default returns the configuration used for any key the file omits.
func Default() Config {
	return Config{
		Enabled: true,
		Tick: TickConfig{
			URL:          "https://elitebgs.app/api/ebgs/v5/ticks",
			Path:         "0.time",
			PollInterval: 5 * time.Minute,
			Timeout:      10 * time.Second,
		},
		Shoutout: ShoutoutConfig{
			SettleDelay: 15 * time.Minute,
		},
		Webhooks: WebhookConfig{
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// BGSWATCH_* environment overrides. A missing file is not an error when
// allowMissing is set, so a deployment can be configured from env alone.
func Load(path string, allowMissing bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	case os.IsNotExist(err) && allowMissing:
	default:
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: parse env: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Faction) == "" {
		return fmt.Errorf("faction is required")
	}
	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") && !strings.HasPrefix(dsn, "sqlite://") {
		return fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}
	if err := validateURL("tick url", cfg.Tick.URL); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Tick.Path) == "" {
		return fmt.Errorf("tick path is required")
	}
	if cfg.Tick.PollInterval <= 0 {
		return fmt.Errorf("tick poll interval must be positive")
	}
	if cfg.Tick.Timeout <= 0 {
		return fmt.Errorf("tick timeout must be positive")
	}
	if cfg.Shoutout.SettleDelay <= 0 {
		return fmt.Errorf("shoutout settle delay must be positive")
	}
	if cfg.Webhooks.Timeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive")
	}

	categories := map[string][]string{
		"bgs":      cfg.Webhooks.BGS,
		"conflict": cfg.Webhooks.Conflict,
		"shoutout": cfg.Webhooks.Shoutout,
		"debug":    cfg.Webhooks.Debug,
	}
	for name, urls := range categories {
		for i, raw := range urls {
			if err := validateURL(fmt.Sprintf("%s webhook %d", name, i), raw); err != nil {
				return err
			}
		}
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Log.Format)
	}

	return nil
}

func validateURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s is required", field)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be http or https", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", field)
	}
	return nil
}
