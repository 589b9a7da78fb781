package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingConfig() *Config {
	v := viper.New()
	v.Set("modules.booking.processing_delay", "2s")
	v.Set("modules.booking.sweep_schedule", "@every 1m")
	v.Set("modules.catalog.page_size", 6)
	v.Set("modules.insight.temperature", 0.4)
	v.Set("modules.mcp.stateless", true)
	v.Set("events.mqtt.topics", []string{"contact.submitted", "booking.checkout.changed"})
	return New(v)
}

func TestConfig_Getters(t *testing.T) {
	cfg := bookingConfig()

	assert.Equal(t, "@every 1m", cfg.GetString("modules.booking.sweep_schedule"))
	assert.Equal(t, 2*time.Second, cfg.GetDuration("modules.booking.processing_delay"))
	assert.Equal(t, 6, cfg.GetInt("modules.catalog.page_size"))
	assert.InDelta(t, 0.4, cfg.GetFloat64("modules.insight.temperature"), 1e-9)
	assert.True(t, cfg.GetBool("modules.mcp.stateless"))
	assert.Equal(t, []string{"contact.submitted", "booking.checkout.changed"}, cfg.GetStringSlice("events.mqtt.topics"))
	assert.True(t, cfg.IsSet("modules.catalog.page_size"))
	assert.False(t, cfg.IsSet("modules.catalog.missing"))
}

func TestConfig_Sub(t *testing.T) {
	booking := bookingConfig().Sub("modules.booking")
	require.NotNil(t, booking)
	assert.Equal(t, 2*time.Second, booking.GetDuration("processing_delay"))

	empty := bookingConfig().Sub("modules.vault")
	require.NotNil(t, empty)
	assert.Empty(t, empty.GetString("anything"))
}

func TestConfig_Unmarshal(t *testing.T) {
	var target struct {
		PageSize int `mapstructure:"page_size"`
	}
	require.NoError(t, bookingConfig().Sub("modules.catalog").Unmarshal(&target))
	assert.Equal(t, 6, target.PageSize)
}

func TestConfig_NilViper(t *testing.T) {
	cfg := New(nil)
	assert.Empty(t, cfg.GetString("key"))
	assert.NotNil(t, cfg.Viper())
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetInt("server.port"); got != 8080 {
		t.Errorf("server.port = %d, want 8080", got)
	}
	if got := cfg.GetDuration("modules.insight.debounce"); got != 300*time.Millisecond {
		t.Errorf("modules.insight.debounce = %v, want 300ms", got)
	}
	if got := cfg.GetInt("modules.catalog.page_size"); got != 6 {
		t.Errorf("modules.catalog.page_size = %d, want 6", got)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lankaportal.yaml")
	body := "server:\n  port: 9000\nmodules:\n  insight:\n    provider: gemini\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LANKAPORTAL_MODULES_AUTH_PROVIDER", "remote")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetInt("server.port"); got != 9000 {
		t.Errorf("server.port = %d, want 9000", got)
	}

	insight := cfg.Sub("modules.insight")
	if got := insight.GetString("provider"); got != "gemini" {
		t.Errorf("insight provider = %q, want gemini", got)
	}
	// Defaults survive a partially specified subtree.
	if got := insight.GetDuration("debounce"); got != 300*time.Millisecond {
		t.Errorf("insight debounce = %v, want 300ms", got)
	}

	if got := cfg.Sub("modules.auth").GetString("provider"); got != "remote" {
		t.Errorf("auth provider = %q, want remote (env override)", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() with missing explicit file should fail")
	}
}
