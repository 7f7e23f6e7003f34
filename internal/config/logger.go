package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/crias/internal/version"
)

// LoggerName is the root logger name; components add their own with Named.
const LoggerName = "crias"

// NewLogger creates the root crias logger from Viper settings. It writes to
// stderr so command output on stdout stays clean, and every entry carries
// the build version.
func NewLogger(v *viper.Viper) (*zap.Logger, error) {
	cfg, err := loggerConfig(v)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named(LoggerName), nil
}

// loggerConfig reads "logging.level" (debug, info, warn, error) and
// "logging.format" (console for terminals, json for collectors). Load
// defaults these to "info" and "console"; an unset format means json.
func loggerConfig(v *viper.Viper) (zap.Config, error) {
	level := v.GetString("logging.level")
	format := v.GetString("logging.format")

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
		// Stack traces on every warning drown out CLI output.
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	case "json", "":
		cfg = zap.NewProductionConfig()
	default:
		return zap.Config{}, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.InitialFields = map[string]any{"version": version.Short()}
	return cfg, nil
}
