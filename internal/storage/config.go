package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/storagecore/storagecore/internal/pkg/logging"
)

// BuildLogger constructs a zap.Logger at the named level ("debug", "info",
// "warn", ...) using a production-style encoder config.
func BuildLogger(level string) (*zap.Logger, error) {
	zapLevel, err := logging.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("storage: parse log level %q: %w", level, err)
	}
	logConf := logging.DefaultConfig()
	logConf.Level = zap.NewAtomicLevelAt(zapLevel)
	logger, err := logConf.Build()
	if err != nil {
		return nil, fmt.Errorf("storage: build logger: %w", err)
	}
	return logger, nil
}

// Config bundles the knobs the storage core needs at construction time,
// built with functional options.
type Config struct {
	PoolSize int
	Logger   *zap.Logger
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithPoolSize sets the number of frames the buffer pool manages.
func WithPoolSize(n int) Option {
	return func(c *Config) { c.PoolSize = n }
}

// WithLogger injects a structured logger; components default to a no-op
// logger when none is supplied.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// NewConfig applies opts over sane defaults.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		PoolSize: 64,
		Logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}
