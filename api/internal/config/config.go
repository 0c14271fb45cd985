// Package config loads service configuration and sets up logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	AI       AIConfig       `yaml:"ai" mapstructure:"ai"`
	Vendor   VendorConfig   `yaml:"vendor" mapstructure:"vendor"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" mapstructure:"address"`
	Port            int           `yaml:"port" mapstructure:"port"`
	RateLimit       float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// AIConfig selects and configures the generative model backend.
// Backend is one of vertex, gemini or mock.
type AIConfig struct {
	Backend     string        `yaml:"backend" mapstructure:"backend"`
	Project     string        `yaml:"project" mapstructure:"project"`
	Location    string        `yaml:"location" mapstructure:"location"`
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
}

type VendorConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Limit   int           `yaml:"limit" mapstructure:"limit"`
}

// StoreConfig enables calculation history when DatabaseURL is set.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
	Debug    bool   `yaml:"debug" mapstructure:"debug"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// well-known environment names honoured besides the KUJANG_ prefixed ones
var envAliases = map[string]string{
	"server.port":        "PORT",
	"ai.project":         "GOOGLE_CLOUD_PROJECT",
	"ai.location":        "GOOGLE_CLOUD_LOCATION",
	"ai.api_key":         "GEMINI_API_KEY",
	"store.database_url": "DATABASE_URL",
	"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
}

// Load reads configuration from an optional config.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KUJANG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := "KUJANG_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("ai.backend", "vertex")
	v.SetDefault("ai.project", "login-uns")
	v.SetDefault("ai.location", "us-central1")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("vendor.url", "https://admin-web.pupuk-kujang.co.id/api/v1/pemasaran/product")
	v.SetDefault("vendor.timeout", 4*time.Second)
	v.SetDefault("vendor.limit", 5)
	v.SetDefault("store.database_url", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// Validate checks the settings a command needs. mode is serve, bot or calc.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.AI.Backend {
	case "vertex", "gemini", "mock":
	default:
		errs = append(errs, "ai.backend must be one of vertex, gemini, mock")
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, "ai.timeout must be positive")
	}
	if c.Vendor.Limit <= 0 {
		errs = append(errs, "vendor.limit must be positive")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Server.RateLimit <= 0 || c.Server.RateLimitBurst <= 0 {
			errs = append(errs, "server.rate_limit and server.rate_limit_burst must be positive")
		}
	case "bot":
		if c.Telegram.BotToken == "" {
			errs = append(errs, "telegram.bot_token is required")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
