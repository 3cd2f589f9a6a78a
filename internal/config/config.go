package config

import (
	"flag"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/varsilias/chat-relay/internal/apperr"
	"github.com/varsilias/chat-relay/internal/completion"
	"github.com/varsilias/chat-relay/internal/session"
)

type Config struct {
	Addr     string `env:"ADDR"`
	LogLevel string `env:"LOG_LEVEL"` // debug|info|warn|error
	LogJSON  bool   `env:"LOG_JSON"`

	Azure AzureConfig

	SystemPrompt string `env:"SYSTEM_PROMPT"`
	MaxHistory   int    `env:"MAX_HISTORY_LENGTH"` // system message included

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// AzureConfig describes the Azure OpenAI deployment used for completions.
type AzureConfig struct {
	APIKey      string        `env:"AZURE_OPENAI_KEY"`
	Endpoint    string        `env:"AZURE_OPENAI_ENDPOINT"`
	Deployment  string        `env:"AZURE_OPENAI_DEPLOYMENT_NAME"`
	APIVersion  string        `env:"AZURE_OPENAI_API_VERSION"`
	MaxTokens   int           `env:"COMPLETION_MAX_TOKENS"`
	Temperature float64       `env:"COMPLETION_TEMPERATURE"`
	Timeout     time.Duration `env:"COMPLETION_TIMEOUT"`
}

// Defaults returns the configuration before .env, environment and flags.
func Defaults() *Config {
	return &Config{
		Addr:         "0.0.0.0:5000",
		LogLevel:     "info",
		SystemPrompt: session.DefaultSystemPrompt,
		MaxHistory:   session.DefaultMaxLen,
		Azure: AzureConfig{
			APIVersion:  completion.DefaultAPIVersion,
			MaxTokens:   completion.DefaultMaxTokens,
			Temperature: completion.DefaultTemperature,
			Timeout:     completion.DefaultTimeout,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads an optional .env, the environment and then args. It fails with
// apperr.ErrConfigMissing when any Azure setting the relay cannot run without
// is empty.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	fs := flag.NewFlagSet("chat-relay", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")
	fs.StringVar(&cfg.SystemPrompt, "system-prompt", cfg.SystemPrompt, "system message that seeds every session")
	fs.IntVar(&cfg.MaxHistory, "max-history", cfg.MaxHistory, "messages kept per session, system message included")
	fs.StringVar(&cfg.Azure.Endpoint, "azure-endpoint", cfg.Azure.Endpoint, "Azure OpenAI endpoint (https://<resource>.openai.azure.com)")
	fs.StringVar(&cfg.Azure.Deployment, "azure-deployment", cfg.Azure.Deployment, "Azure OpenAI deployment name")
	fs.StringVar(&cfg.Azure.APIVersion, "azure-api-version", cfg.Azure.APIVersion, "Azure OpenAI API version")
	fs.IntVar(&cfg.Azure.MaxTokens, "max-tokens", cfg.Azure.MaxTokens, "max_tokens for each completion")
	fs.Float64Var(&cfg.Azure.Temperature, "temperature", cfg.Azure.Temperature, "sampling temperature")
	fs.DurationVar(&cfg.Azure.Timeout, "completion-timeout", cfg.Azure.Timeout, "deadline for one completion call")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown deadline")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required Azure variable at once.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Azure.APIKey) == "" {
		missing = append(missing, "AZURE_OPENAI_KEY")
	}
	if strings.TrimSpace(c.Azure.Endpoint) == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if strings.TrimSpace(c.Azure.Deployment) == "" {
		missing = append(missing, "AZURE_OPENAI_DEPLOYMENT_NAME")
	}
	if len(missing) > 0 {
		return errors.Wrapf(apperr.ErrConfigMissing, "set %s", strings.Join(missing, ", "))
	}
	return nil
}

// Completion maps the Azure settings onto the completion client's config.
func (c *Config) Completion() completion.Config {
	return completion.Config{
		APIKey:      c.Azure.APIKey,
		Endpoint:    c.Azure.Endpoint,
		Deployment:  c.Azure.Deployment,
		APIVersion:  c.Azure.APIVersion,
		MaxTokens:   c.Azure.MaxTokens,
		Temperature: c.Azure.Temperature,
		Timeout:     c.Azure.Timeout,
	}
}
