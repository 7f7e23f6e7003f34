// Package config loads crias settings from defaults, an optional config
// file, and CRIAS_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/HerbHall/crias/pkg/llm/openai"
)

// EnvPrefix is prepended to every environment override: CRIAS_LLM_MODEL.
const EnvPrefix = "CRIAS"

// Settings is the decoded form of the configuration.
type Settings struct {
	LLM       LLMSettings      `mapstructure:"llm"`
	Templates TemplateSettings `mapstructure:"templates"`
	Logging   LoggingSettings  `mapstructure:"logging"`
}

// LLMSettings configures the model client.
type LLMSettings struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

// TemplateSettings configures the prompt template library.
type TemplateSettings struct {
	Dir         string        `mapstructure:"dir"`
	StrictNames bool          `mapstructure:"strict_names"`
	Debounce    time.Duration `mapstructure:"debounce"`
	// Formats lists the file formats loaded from Dir: json, toml, yaml.
	Formats []string `mapstructure:"formats"`
}

// LoggingSettings mirrors the keys read by NewLogger.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OpenAIConfig returns the client configuration described by s.
func (s LLMSettings) OpenAIConfig() openai.Config {
	cfg := openai.DefaultConfig()
	if s.Model != "" {
		cfg.Model = s.Model
	}
	cfg.APIKey = s.APIKey
	cfg.BaseURL = s.BaseURL
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	return cfg
}

// Limiter returns a rate limiter for outbound requests, or nil when
// RateLimit is not positive.
func (s LLMSettings) Limiter() *rate.Limiter {
	if s.RateLimit <= 0 {
		return nil
	}
	burst := s.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(s.RateLimit), burst)
}

// Load reads configuration from configPath, or from crias.{toml,yaml,json}
// in the working directory or $HOME/.config/crias when configPath is empty.
// A missing search-path file is not an error; a missing explicit file is.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", "2m")
	v.SetDefault("llm.rate_limit", 0)
	v.SetDefault("llm.burst", 1)
	v.SetDefault("templates.dir", "./prompts")
	v.SetDefault("templates.strict_names", false)
	v.SetDefault("templates.debounce", "200ms")
	v.SetDefault("templates.formats", []string{"json", "toml"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("crias")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "crias"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional OpenAI variable is honored when no CRIAS key is set.
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

// Decode unmarshals v into Settings.
func Decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding config: %w", err)
	}
	return s, nil
}
