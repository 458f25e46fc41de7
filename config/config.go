package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nachoal/visionari-go/controller"
	"github.com/nachoal/visionari-go/llm/groq"
)

// Keys understood by the configuration layer
const (
	KeyAPIKey      = "api_key"
	KeyBaseURL     = "base_url"
	KeyModel       = "model"
	KeyTimeout     = "timeout"
	KeyPreset      = "preset"
	KeyMaxTokens   = "max_tokens"
	KeyTemperature = "temperature"
	KeyTopP        = "top_p"
	KeyTheme       = "theme"
	KeyDebug       = "debug"
	KeyLogFile     = "log_file"
)

var knownKeys = map[string]bool{
	KeyAPIKey: true, KeyBaseURL: true, KeyModel: true, KeyTimeout: true,
	KeyPreset: true, KeyMaxTokens: true, KeyTemperature: true, KeyTopP: true,
	KeyTheme: true, KeyDebug: true, KeyLogFile: true,
}

// Config represents the effective application configuration
type Config struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	Preset      string        `yaml:"preset"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	TopP        float64       `yaml:"top_p"`
	Theme       string        `yaml:"theme"`
	Debug       bool          `yaml:"debug"`
	LogFile     string        `yaml:"log_file"`
}

// Sampling returns the startup sampling parameters, clamped to their ranges
func (c Config) Sampling() controller.Sampling {
	return controller.Sampling{
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		TopP:        c.TopP,
	}.Clamped()
}

// Masked returns a copy safe to print
func (c Config) Masked() Config {
	if c.APIKey != "" {
		c.APIKey = maskKey(c.APIKey)
	}
	return c
}

// YAML renders the configuration with the API key masked
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Masked())
}

// Manager loads configuration from defaults, an optional config file, the
// environment and command-line flags. It never writes anything back.
type Manager struct {
	configDir string
	v         *viper.Viper
}

// NewManager creates a config manager rooted at ~/.visionari
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerAt(filepath.Join(homeDir, ".visionari"))
}

// NewManagerAt creates a config manager reading config.yaml from configDir
func NewManagerAt(configDir string) (*Manager, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault(KeyBaseURL, groq.DefaultBaseURL)
	v.SetDefault(KeyModel, groq.DefaultModel)
	v.SetDefault(KeyTimeout, 0)
	v.SetDefault(KeyPreset, "default")
	v.SetDefault(KeyTheme, "default")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogFile, filepath.Join(configDir, "visionari.log"))

	v.SetEnvPrefix("VISIONARI")
	v.AutomaticEnv()
	if err := v.BindEnv(KeyAPIKey, "VISIONARI_API_KEY", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	m := &Manager{configDir: configDir, v: v}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads config.yaml if it exists
func (m *Manager) Load() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// ConfigDir returns the directory searched for config.yaml
func (m *Manager) ConfigDir() string {
	return m.configDir
}

// BindFlags binds every flag whose name maps to a known key ("top-p" -> "top_p")
func (m *Manager) BindFlags(fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !knownKeys[key] || bindErr != nil {
			return
		}
		bindErr = m.v.BindPFlag(key, f)
	})
	return bindErr
}

// Config resolves the effective configuration. Sampling starts from the
// preset; explicitly set max_tokens, temperature or top_p override it.
func (m *Manager) Config() Config {
	sampling := controller.SamplingPreset(m.v.GetString(KeyPreset))
	if m.v.IsSet(KeyMaxTokens) {
		sampling.MaxTokens = m.v.GetInt(KeyMaxTokens)
	}
	if m.v.IsSet(KeyTemperature) {
		sampling.Temperature = m.v.GetFloat64(KeyTemperature)
	}
	if m.v.IsSet(KeyTopP) {
		sampling.TopP = m.v.GetFloat64(KeyTopP)
	}

	return Config{
		APIKey:      m.v.GetString(KeyAPIKey),
		BaseURL:     m.v.GetString(KeyBaseURL),
		Model:       m.v.GetString(KeyModel),
		Timeout:     m.v.GetDuration(KeyTimeout),
		Preset:      m.v.GetString(KeyPreset),
		MaxTokens:   sampling.MaxTokens,
		Temperature: sampling.Temperature,
		TopP:        sampling.TopP,
		Theme:       m.v.GetString(KeyTheme),
		Debug:       m.v.GetBool(KeyDebug),
		LogFile:     m.v.GetString(KeyLogFile),
	}
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
