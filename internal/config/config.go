// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package config loads YuzuDice settings from a YAML file, command-line
// flags, and the environment, in increasing order of precedence for the
// first two. Secrets come only from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/command"
	"github.com/purerosefallen/YuzuDice/internal/logging"
)

// Config is the full set of runtime settings.
type Config struct {
	Bot       BotConfig       `koanf:"bot"`
	Dice      DiceConfig      `koanf:"dice"`
	HTTP      HTTPConfig      `koanf:"http"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Log       LogConfig       `koanf:"log"`
	Database  DatabaseConfig  `koanf:"database"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`

	Secrets Secrets `koanf:"-"`
}

// BotConfig controls command recognition and the kill switch.
type BotConfig struct {
	Prefix        string `koanf:"prefix"`
	KillSwitch    bool   `koanf:"kill_switch"`
	MaxNameLength int    `koanf:"max_name_length"`
}

// DiceConfig bounds rolls.
type DiceConfig struct {
	MaxCount    int `koanf:"max_count"`
	MaxSize     int `koanf:"max_size"`
	DefaultSize int `koanf:"default_size"`
}

// HTTPConfig configures the admin API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig configures the metrics and health listener.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig selects the log encoding and minimum level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DatabaseConfig tunes the initial connection.
type DatabaseConfig struct {
	ConnectRetries uint64        `koanf:"connect_retries"`
	ConnectBackoff time.Duration `koanf:"connect_backoff"`
}

// RateLimitConfig limits commands per user. A zero Burst disables it.
type RateLimitConfig struct {
	Burst int     `koanf:"burst"`
	Rate  float64 `koanf:"rate"`
}

// Secrets are read from the environment only.
type Secrets struct {
	DatabaseURL string `env:"DATABASE_URL"`
	AdminToken  string `env:"YUZUDICE_ADMIN_TOKEN"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	def := bot.DefaultConfig()
	return Config{
		Bot: BotConfig{
			Prefix:        ".",
			MaxNameLength: def.MaxNameLength,
		},
		Dice: DiceConfig{
			MaxCount:    def.MaxDiceCount,
			MaxSize:     def.MaxDiceSize,
			DefaultSize: def.DefaultDiceSize,
		},
		HTTP:    HTTPConfig{Addr: "127.0.0.1:8080"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Log:     LogConfig{Format: "json", Level: "info"},
		Database: DatabaseConfig{
			ConnectRetries: 5,
			ConnectBackoff: 500 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			Burst: command.DefaultBurstCapacity,
			Rate:  command.DefaultSustainedRate,
		},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"prefix":          "bot.prefix",
	"kill-switch":     "bot.kill_switch",
	"max-name-length": "bot.max_name_length",
	"max-dice-count":  "dice.max_count",
	"max-dice-size":   "dice.max_size",
	"default-dice":    "dice.default_size",
	"http-addr":       "http.addr",
	"metrics-addr":    "metrics.addr",
	"log-format":      "log.format",
	"log-level":       "log.level",
	"db-retries":      "database.connect_retries",
	"db-backoff":      "database.connect_backoff",
	"rate-burst":      "rate_limit.burst",
	"rate-per-second": "rate_limit.rate",
}

// BindFlags registers the overridable settings on fs. Defaults shown in
// help come from Default.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("prefix", d.Bot.Prefix, "command prefix")
	fs.Bool("kill-switch", d.Bot.KillSwitch, "ban groups and operators that kick or mute the bot")
	fs.Int("max-name-length", d.Bot.MaxNameLength, "longest display name in characters")
	fs.Int("max-dice-count", d.Dice.MaxCount, "most dice in one roll")
	fs.Int("max-dice-size", d.Dice.MaxSize, "most faces on one die")
	fs.Int("default-dice", d.Dice.DefaultSize, "faces on a die when a roll names none")
	fs.String("http-addr", d.HTTP.Addr, "admin API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics and health listen address")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "minimum log level (debug, info, warn, error)")
	fs.Uint64("db-retries", d.Database.ConnectRetries, "database connection attempts after the first")
	fs.Duration("db-backoff", d.Database.ConnectBackoff, "initial database retry backoff")
	fs.Int("rate-burst", d.RateLimit.Burst, "commands a user may send in a burst (0 disables limiting)")
	fs.Float64("rate-per-second", d.RateLimit.Rate, "sustained commands per second per user")
}

// Load reads path (when non-empty), then the changed flags in fs (when
// non-nil), then the environment secrets, and validates the result.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := env.Parse(&cfg.Secrets); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the bot cannot run with.
func (c Config) Validate() error {
	invalid := func(key string, value any, msg string) error {
		return oops.Code("CONFIG_INVALID").With("key", key).With("value", value).Errorf("%s: %s", key, msg)
	}
	switch {
	case c.Dice.MaxCount <= 0:
		return invalid("dice.max_count", c.Dice.MaxCount, "must be positive")
	case c.Dice.MaxSize <= 0:
		return invalid("dice.max_size", c.Dice.MaxSize, "must be positive")
	case c.Dice.DefaultSize <= 0 || c.Dice.DefaultSize > c.Dice.MaxSize:
		return invalid("dice.default_size", c.Dice.DefaultSize, "must be between 1 and dice.max_size")
	case c.Bot.MaxNameLength <= 0:
		return invalid("bot.max_name_length", c.Bot.MaxNameLength, "must be positive")
	case c.Log.Format != "json" && c.Log.Format != "text":
		return invalid("log.format", c.Log.Format, "must be json or text")
	case !validLevel(c.Log.Level):
		return invalid("log.level", c.Log.Level, "must be debug, info, warn, or error")
	case c.HTTP.Addr == "":
		return invalid("http.addr", c.HTTP.Addr, "must not be empty")
	case c.Metrics.Addr == "":
		return invalid("metrics.addr", c.Metrics.Addr, "must not be empty")
	case c.Database.ConnectBackoff < 0:
		return invalid("database.connect_backoff", c.Database.ConnectBackoff, "must not be negative")
	case c.RateLimit.Burst < 0:
		return invalid("rate_limit.burst", c.RateLimit.Burst, "must not be negative")
	case c.RateLimit.Burst > 0 && c.RateLimit.Rate <= 0:
		return invalid("rate_limit.rate", c.RateLimit.Rate, "must be positive when limiting is enabled")
	}
	return nil
}

func validLevel(s string) bool {
	_, err := logging.ParseLevel(s)
	return err == nil
}

// BotConfig converts the settings the bot facade needs.
func (c Config) BotConfig() bot.Config {
	return bot.Config{
		MaxDiceCount:    c.Dice.MaxCount,
		MaxDiceSize:     c.Dice.MaxSize,
		DefaultDiceSize: c.Dice.DefaultSize,
		KillSwitch:      c.Bot.KillSwitch,
		MaxNameLength:   c.Bot.MaxNameLength,
	}
}

// RateLimiterConfig converts the rate limit settings. ok is false when
// limiting is disabled.
func (c Config) RateLimiterConfig() (cfg command.RateLimiterConfig, ok bool) {
	if c.RateLimit.Burst == 0 {
		return command.RateLimiterConfig{}, false
	}
	return command.RateLimiterConfig{
		BurstCapacity: c.RateLimit.Burst,
		SustainedRate: c.RateLimit.Rate,
	}, true
}
