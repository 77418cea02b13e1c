package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/go-playground/validator.v9"

	"github.com/wbrown/fieldvalues/internal/logging"
)

// Config holds settings shared by the commands. Every field can be set from
// the environment; command-line flags override them.
type Config struct {
	// CacheDir is the badger directory of the document cache.
	// Empty means an in-memory cache.
	CacheDir string `env:"FIELDVALUES_CACHE_DIR"`
	LogLevel string `env:"FIELDVALUES_LOG_LEVEL, default=info" validate:"oneof=debug info warn error dpanic panic fatal"`
	// Color enables coloured comparison output on terminals
	Color    bool `env:"FIELDVALUES_COLOR, default=true"`
	MaxWidth int  `env:"FIELDVALUES_MAX_WIDTH, default=60" validate:"gte=0"`
	// OTLPEndpoint receives cache spans over gRPC when set
	OTLPEndpoint string `env:"FIELDVALUES_OTLP_ENDPOINT"`
}

var validate = validator.New()

// Load reads the configuration from the process environment
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration from l
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	logger := logging.FromContext(ctx)

	var config Config
	if err := envconfig.ProcessWith(ctx, &config, l); err != nil {
		logger.Debugf("Could not load Config: %v", err)
		return nil, err
	}
	if err := config.Validate(); err != nil {
		logger.Debugf("Invalid Config: %v", err)
		return nil, err
	}

	return &config, nil
}

// Validate checks values the environment parser cannot
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
