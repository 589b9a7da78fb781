// Package config wraps viper with nil-safe accessors and the LankaPortal
// defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override,
// e.g. LANKAPORTAL_SERVER_PORT or LANKAPORTAL_MODULES_INSIGHT_PROVIDER.
const EnvPrefix = "LANKAPORTAL"

// Config is a read-only view over a viper instance.
type Config struct {
	v *viper.Viper
}

// New wraps v. A nil v yields an empty configuration.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	return &Config{v: v}
}

// Load builds the application configuration from defaults, an optional
// YAML file and LANKAPORTAL_* environment variables, in increasing order
// of precedence. An empty path searches for lankaportal.yaml in the
// working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		return New(v), nil
	}

	v.SetConfigName("lankaportal")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return New(v), nil
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mdns.enabled", false)
	v.SetDefault("server.mdns.instance", "")
	v.SetDefault("database.path", "lankaportal.db")
	v.SetDefault("log.level", "info")

	v.SetDefault("events.mqtt.broker", "")
	v.SetDefault("events.mqtt.client_id", "lankaportal")
	v.SetDefault("events.mqtt.prefix", "lankaportal")
	v.SetDefault("events.mqtt.qos", 1)
	v.SetDefault("events.mqtt.topics", []string{})
	v.SetDefault("events.mqtt.connect_timeout", 10*time.Second)

	v.SetDefault("modules.catalog.page_size", 6)
	v.SetDefault("modules.catalog.max_page_size", 100)

	v.SetDefault("modules.insight.provider", "noop")
	v.SetDefault("modules.insight.debounce", 300*time.Millisecond)
	v.SetDefault("modules.insight.timeout", 10*time.Second)
	v.SetDefault("modules.insight.cache", "memory")
	v.SetDefault("modules.insight.cache_ttl", 10*time.Minute)
	v.SetDefault("modules.insight.redis_addr", "localhost:6379")
	v.SetDefault("modules.insight.rate_limit", 2.0)
	v.SetDefault("modules.insight.rate_burst", 5)
	v.SetDefault("modules.insight.max_tokens", 120)
	v.SetDefault("modules.insight.gemini.model", "gemini-1.5-flash")
	v.SetDefault("modules.insight.gemini.api_key", "")
	v.SetDefault("modules.insight.openai.model", "gpt-4o-mini")
	v.SetDefault("modules.insight.openai.api_key", "")
	v.SetDefault("modules.insight.openai.base_url", "")

	v.SetDefault("modules.auth.provider", "local")
	v.SetDefault("modules.auth.auto_session", true)
	v.SetDefault("modules.auth.jwt_secret", "")
	v.SetDefault("modules.auth.token_ttl", 24*time.Hour)
	v.SetDefault("modules.auth.local_user.email", "traveller@lankaportal.local")
	v.SetDefault("modules.auth.local_user.name", "Local Traveller")
	v.SetDefault("modules.auth.local_user.password_hash", "")
	v.SetDefault("modules.auth.local_user.totp_secret", "")
	v.SetDefault("modules.auth.remote.url", "")
	v.SetDefault("modules.auth.remote.api_key", "")

	v.SetDefault("modules.contact.endpoint", "")
	v.SetDefault("modules.contact.timeout", 10*time.Second)
	v.SetDefault("modules.contact.rate_limit", 0.2)
	v.SetDefault("modules.contact.rate_burst", 3)

	v.SetDefault("modules.booking.processing_delay", 2*time.Second)
	v.SetDefault("modules.booking.session_ttl", 30*time.Minute)
	v.SetDefault("modules.booking.sweep_schedule", "@every 1m")
	v.SetDefault("modules.booking.retention", 24*time.Hour)

	v.SetDefault("modules.mcp.stateless", false)
	v.SetDefault("modules.mcp.json_response", false)
}

// GetString returns the string value for key.
func (c *Config) GetString(key string) string { return c.v.GetString(key) }

// GetStringSlice returns the string slice value for key.
func (c *Config) GetStringSlice(key string) []string { return c.v.GetStringSlice(key) }

// GetInt returns the int value for key.
func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }

// GetFloat64 returns the float value for key.
func (c *Config) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }

// GetBool returns the bool value for key.
func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

// GetDuration returns the duration value for key. Strings such as "300ms"
// are parsed.
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }

// IsSet reports whether key has a value from any source.
func (c *Config) IsSet(key string) bool { return c.v.IsSet(key) }

// Sub returns the subtree rooted at key, with defaults and environment
// overrides already resolved. A missing key yields an empty Config, never nil.
func (c *Config) Sub(key string) *Config {
	sub := viper.New()
	prefix := strings.ToLower(key) + "."
	for _, k := range c.v.AllKeys() {
		if strings.HasPrefix(k, prefix) {
			sub.Set(strings.TrimPrefix(k, prefix), c.v.Get(k))
		}
	}
	return New(sub)
}

// Unmarshal decodes the configuration into target using mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	if err := c.v.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Viper exposes the underlying instance.
func (c *Config) Viper() *viper.Viper { return c.v }
