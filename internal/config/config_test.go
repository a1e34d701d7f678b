package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/chatgen/internal/scenario"
)

// clearEnv blanks every variable Load consults so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "CHATGEN_API_KEY", "CHATGEN_BASE_URL", "CHATGEN_MODEL",
		"CHATGEN_OUTPUT_DIR", "CHATGEN_COUNT", "CHATGEN_SEED", "CHATGEN_REQUEST_TIMEOUT",
		"CHATGEN_TEMPERATURE", "CHATGEN_MAX_TOKENS", "CHATGEN_LOG_LEVEL", "CHATGEN_LOG_FORMAT",
		"CHATGEN_METRICS_FILE", "CHATGEN_TUI", "CHATGEN_ISSUES", "CHATGEN_RULES",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "chats", cfg.OutputDir)
	assert.Equal(t, 50, cfg.Count)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Nil(t, cfg.Temperature)
	assert.Nil(t, cfg.MaxTokens)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.TUI)
	assert.Empty(t, cfg.APIKey)
	assert.ErrorIs(t, cfg.ValidateForGeneration(), ErrMissingAPIKey)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{
		"model": "file-model",
		"output_dir": "file-dir",
		"count": 7,
		"request_timeout": "30s",
		"temperature": 0.4
	}`)
	t.Setenv("CHATGEN_OUTPUT_DIR", "env-dir")
	t.Setenv("CHATGEN_COUNT", "9")

	v := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntP("count", "n", DefaultCount, "")
	flags.String("model", DefaultModel, "")
	require.NoError(t, v.BindPFlag(KeyCount, flags.Lookup("count")))
	require.NoError(t, v.BindPFlag(KeyModel, flags.Lookup("model")))
	require.NoError(t, flags.Parse([]string{"-n", "3"}))

	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Count, "flag beats env")
	assert.Equal(t, "env-dir", cfg.OutputDir, "env beats file")
	assert.Equal(t, "file-model", cfg.Model, "file beats unchanged flag default")
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.4, *cfg.Temperature, 1e-9)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_APIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai-123456")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-openai-123456", cfg.APIKey)
	assert.NoError(t, cfg.ValidateForGeneration())

	t.Setenv("CHATGEN_API_KEY", "sk-chatgen-abcdef")
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-chatgen-abcdef", cfg.APIKey)
}

func TestLoad_EnvOptionalValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATGEN_MAX_TOKENS", "512")
	t.Setenv("CHATGEN_SEED", "42")
	t.Setenv("CHATGEN_ISSUES", "Printer jam,VPN drops")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 512, *cfg.MaxTokens)
	assert.Equal(t, uint64(42), cfg.Seed)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"Printer jam", "VPN drops"}, cat.Issues())
	assert.Equal(t, scenario.DefaultCatalog().Rules(), cat.Rules())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{
		"count": -1,
		"base_url": "not a url",
		"log_format": "xml",
		"temperature": 3,
		"rules": ["ok", ""]
	}`)
	_, err := Load(viper.New(), path)
	require.Error(t, err)
	for _, want := range []string{"count", "base_url", "log_format", "temperature", "rules"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{APIKey: "sk-abcdefghijklmnop", Model: "m"}
	r := cfg.Redacted()
	assert.Equal(t, "sk-****mnop", r.APIKey)
	assert.Equal(t, "sk-abcdefghijklmnop", cfg.APIKey, "original is untouched")
	assert.Equal(t, "m", r.Model)

	assert.Equal(t, "****", Config{APIKey: "short"}.Redacted().APIKey)
	assert.Empty(t, Config{}.Redacted().APIKey)
}

func TestResolveSeed(t *testing.T) {
	now := time.Unix(0, 123456789)
	assert.Equal(t, uint64(5), (&Config{Seed: 5}).ResolveSeed(now))
	assert.Equal(t, uint64(123456789), (&Config{}).ResolveSeed(now))
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, ".env", "CHATGEN_MODEL=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("CHATGEN_MODEL") })

	require.NoError(t, LoadEnvFile(path))
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Model)

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, LoadEnvFile(""))
}
