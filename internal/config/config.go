package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/itechkenya/address-router/internal/router"
)

// Config holds all configuration for the address router node
type Config struct {
	// Address configuration
	RouterAddress string `env:"ROUTER_ADDRESS"`
	RootAddress   string `env:"ROOT_ADDRESS" envDefault:"ke.go.health"`

	// Channel naming (Handlebars template; empty uses the built-in
	// dot-to-underscore convention)
	ChannelTemplate string `env:"CHANNEL_TEMPLATE" envDefault:""`

	// Dispatch policy (JSON array of deny rules; empty allows everything)
	PolicyRules string `env:"POLICY_RULES" envDefault:""`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration. Stream keys left empty are derived from the
	// router address's channel name.
	ConsumerName     string        `env:"CONSUMER_NAME" envDefault:"router-1"`
	ConsumerGroup    string        `env:"CONSUMER_GROUP" envDefault:"address-routers"`
	InboundStream    string        `env:"INBOUND_STREAM" envDefault:""`
	DeliveredStream  string        `env:"DELIVERED_STREAM" envDefault:""`
	DeadLetterStream string        `env:"DEADLETTER_STREAM" envDefault:""`
	BlockTime        time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.applyDerivedDefaults()

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RouterAddress == "" {
		return fmt.Errorf("ROUTER_ADDRESS is required")
	}

	if c.RootAddress == "" {
		return fmt.Errorf("ROOT_ADDRESS is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.ConsumerName == "" {
		return fmt.Errorf("CONSUMER_NAME is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// applyDerivedDefaults fills stream keys derived from the router address.
// The inbound stream is the node's own channel name: sending to a node
// means adding to the stream named after its address.
func (c *Config) applyDerivedDefaults() {
	channel := router.ChannelName(c.RouterAddress)
	if c.InboundStream == "" {
		c.InboundStream = channel
	}
	if c.DeliveredStream == "" {
		c.DeliveredStream = channel + ".delivered"
	}
	if c.DeadLetterStream == "" {
		c.DeadLetterStream = channel + ".deadletter"
	}
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{RouterAddress=%s, RootAddress=%s, RedisAddr=%s, RedisDB=%d, "+
			"InboundStream=%s, ConsumerGroup=%s, ConsumerName=%s, "+
			"DeliveredStream=%s, DeadLetterStream=%s, HealthPort=%d, LogLevel=%s}",
		c.RouterAddress,
		c.RootAddress,
		c.RedisAddr,
		c.RedisDB,
		c.InboundStream,
		c.ConsumerGroup,
		c.ConsumerName,
		c.DeliveredStream,
		c.DeadLetterStream,
		c.HealthPort,
		c.LogLevel,
	)
}
