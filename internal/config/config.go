// internal/config/config.go
// Package config resolves chatgen settings from defaults, an optional JSON
// config file, CHATGEN_* environment variables (a .env file is honoured) and
// command flags, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/mwiater/chatgen/internal/llm"
	"github.com/mwiater/chatgen/internal/scenario"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CHATGEN"

// Keys, shared with the flag bindings in cmd/chatgen.
const (
	KeyAPIKey         = "api_key"
	KeyBaseURL        = "base_url"
	KeyModel          = "model"
	KeyOutputDir      = "output_dir"
	KeyCount          = "count"
	KeySeed           = "seed"
	KeyRequestTimeout = "request_timeout"
	KeyTemperature    = "temperature"
	KeyMaxTokens      = "max_tokens"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyMetricsFile    = "metrics_file"
	KeyTUI            = "tui"
	KeyIssues         = "issues"
	KeyRules          = "rules"
)

// Defaults.
const (
	DefaultModel     = "gpt-4o-mini"
	DefaultOutputDir = "chats"
	DefaultCount     = 50
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// ErrMissingAPIKey is returned by ValidateForGeneration when no API key was
// configured.
var ErrMissingAPIKey = errors.New("missing API key: set CHATGEN_API_KEY or OPENAI_API_KEY")

// Config is the effective configuration of one chatgen invocation.
type Config struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	OutputDir      string        `mapstructure:"output_dir"`
	Count          int           `mapstructure:"count"`
	Seed           uint64        `mapstructure:"seed"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Temperature and MaxTokens are nil when unset so the request omits
	// them and the endpoint applies its own defaults.
	Temperature *float64 `mapstructure:"-"`
	MaxTokens   *int     `mapstructure:"-"`

	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	MetricsFile string `mapstructure:"metrics_file"`
	TUI         bool   `mapstructure:"tui"`

	Issues []string `mapstructure:"issues"`
	Rules  []string `mapstructure:"rules"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, llm.DefaultBaseURL)
	v.SetDefault(KeyModel, DefaultModel)
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyCount, DefaultCount)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyRequestTimeout, time.Duration(0))
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyTUI, false)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Explicit bindings so keys without defaults still reach Unmarshal.
	if err := v.BindEnv(KeyAPIKey, EnvPrefix+"_API_KEY", "OPENAI_API_KEY"); err != nil {
		return err
	}
	for _, key := range []string{KeyTemperature, KeyMaxTokens, KeyIssues, KeyRules} {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration on v. configFile names a JSON config file;
// when empty, ./config.json is read if present. Flags must already be bound
// to v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind environment: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if v.IsSet(KeyTemperature) {
		t := v.GetFloat64(KeyTemperature)
		cfg.Temperature = &t
	}
	if v.IsSet(KeyMaxTokens) {
		n := v.GetInt(KeyMaxTokens)
		cfg.MaxTokens = &n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command relies on. The API key is
// checked separately by ValidateForGeneration.
func (c *Config) Validate() error {
	var errs []error
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("count must not be negative, got %d", c.Count))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		errs = append(errs, fmt.Errorf("temperature must be between 0 and 2, got %g", *c.Temperature))
	}
	if c.MaxTokens != nil && *c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", *c.MaxTokens))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}
	if _, err := c.Catalog(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateForGeneration reports ErrMissingAPIKey when no key is configured.
func (c *Config) ValidateForGeneration() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Catalog returns the scenario catalog with any configured issue or rule
// overrides applied.
func (c *Config) Catalog() (scenario.Catalog, error) {
	cat, err := scenario.DefaultCatalog().WithIssues(c.Issues)
	if err != nil {
		return scenario.Catalog{}, fmt.Errorf("issues: %w", err)
	}
	cat, err = cat.WithRules(c.Rules)
	if err != nil {
		return scenario.Catalog{}, fmt.Errorf("rules: %w", err)
	}
	return cat, nil
}

// Redacted returns a copy safe to print: the API key keeps only its prefix
// and last four characters.
func (c Config) Redacted() Config {
	c.APIKey = redact(c.APIKey)
	return c
}

func redact(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "****"
	default:
		return key[:3] + "****" + key[len(key)-4:]
	}
}

// ResolveSeed returns the configured seed, or one derived from now when the
// configured seed is zero.
func (c *Config) ResolveSeed(now time.Time) uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	seed := uint64(now.UnixNano())
	if seed == 0 {
		seed = 1
	}
	return seed
}

// EnvFileFromEnv returns the .env path to load: CHATGEN_ENV_FILE when set,
// otherwise ".env".
func EnvFileFromEnv() string {
	if p := os.Getenv(EnvPrefix + "_ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}
