package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavour.
type Config struct {
	// Env is prod, local, dev or docker.
	Env string
	// Level overrides the environment default: debug, info, warn, error.
	Level string
	// Format forces json or console output regardless of Env.
	Format string
	// Service is attached to every line when set.
	Service string
}

// New creates a zap logger. prod logs JSON at info, the other environments
// log colored console output at debug.
func New(c Config) (*zap.Logger, error) {
	var cfg zap.Config
	switch c.Env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", c.Env)
	}

	switch c.Format {
	case "":
	case "json":
		cfg.Encoding = "json"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	case "console":
		cfg.Encoding = "console"
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}

	if c.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if c.Service != "" {
		l = l.With(zap.String("service", c.Service))
	}
	return l, nil
}
