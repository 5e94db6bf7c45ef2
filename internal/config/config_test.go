package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROUTER_ADDRESS", "ke.go.health.county1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ke.go.health.county1", cfg.RouterAddress)
	assert.Equal(t, "ke.go.health", cfg.RootAddress)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "ke_go_health_county1", cfg.InboundStream)
	assert.Equal(t, "ke_go_health_county1.delivered", cfg.DeliveredStream)
	assert.Equal(t, "ke_go_health_county1.deadletter", cfg.DeadLetterStream)
	assert.Equal(t, "address-routers", cfg.ConsumerGroup)
	assert.Equal(t, 8082, cfg.HealthPort)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadExplicitStreams(t *testing.T) {
	t.Setenv("ROUTER_ADDRESS", "ke.go.health.county1")
	t.Setenv("INBOUND_STREAM", "custom.in")
	t.Setenv("DEADLETTER_STREAM", "custom.dlq")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "custom.in", cfg.InboundStream)
	assert.Equal(t, "custom.dlq", cfg.DeadLetterStream)
	assert.Equal(t, "ke_go_health_county1.delivered", cfg.DeliveredStream)
}

func TestLoadMissingRouterAddress(t *testing.T) {
	t.Setenv("ROUTER_ADDRESS", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROUTER_ADDRESS")
}

func TestValidate(t *testing.T) {
	t.Setenv("ROUTER_ADDRESS", "ke.go.health.county1")

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_LEVEL")
	})

	t.Run("bad health port", func(t *testing.T) {
		t.Setenv("HEALTH_PORT", "70000")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HEALTH_PORT")
	})

	t.Run("bad block time", func(t *testing.T) {
		t.Setenv("BLOCK_TIME", "-1s")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BLOCK_TIME")
	})
}

func TestString(t *testing.T) {
	t.Setenv("ROUTER_ADDRESS", "ke.go.health.county1")
	t.Setenv("REDIS_PASS", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	s := cfg.String()
	assert.Contains(t, s, "ke.go.health.county1")
	assert.NotContains(t, s, "secret")
}
