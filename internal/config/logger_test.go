package config

import (
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/crias/internal/version"
)

func TestNewLogger_Defaults(t *testing.T) {
	v := viper.New()
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewLogger_DebugLevel(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "debug")
	v.Set("logging.format", "json")

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "warn")
	v.Set("logging.format", "console")

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "banana")
	v.Set("logging.format", "json")

	_, err := NewLogger(v)
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "info")
	v.Set("logging.format", "xml")

	_, err := NewLogger(v)
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestLoggerConfig_CLIShape(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "debug")
	v.Set("logging.format", "console")

	cfg, err := loggerConfig(v)
	if err != nil {
		t.Fatalf("loggerConfig: %v", err)
	}
	if cfg.Level.Level() != zapcore.DebugLevel {
		t.Errorf("Level = %v, want debug", cfg.Level.Level())
	}
	if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stderr" {
		t.Errorf("OutputPaths = %v, want [stderr]", cfg.OutputPaths)
	}
	if !cfg.DisableStacktrace {
		t.Error("console logger should not print stack traces")
	}
	if cfg.InitialFields["version"] != version.Short() {
		t.Errorf("InitialFields = %v", cfg.InitialFields)
	}
}

func TestLoggerConfig_JSONKeepsStacktraces(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "info")
	v.Set("logging.format", "json")

	cfg, err := loggerConfig(v)
	if err != nil {
		t.Fatalf("loggerConfig: %v", err)
	}
	if cfg.Encoding != "json" {
		t.Errorf("Encoding = %q, want json", cfg.Encoding)
	}
	if cfg.DisableStacktrace {
		t.Error("json logger should keep stack traces")
	}
}

func TestNewLogger_Named(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "error")
	v.Set("logging.format", "json")

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if ce := logger.Check(zapcore.ErrorLevel, "name check"); ce == nil || ce.LoggerName != LoggerName {
		t.Errorf("logger name = %v, want %q", ce, LoggerName)
	}
}
