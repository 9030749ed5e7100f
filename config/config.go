package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yaml"
	DefaultEnvFile    = ".env"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	CWA       CWAConfig       `yaml:"cwa"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
	Sentry    SentryConfig    `yaml:"sentry"`
}

type AppConfig struct {
	Name    string `yaml:"name" split_words:"true" validate:"required"`
	Version string `yaml:"version" split_words:"true" validate:"required"`
	Env     string `yaml:"env" split_words:"true" validate:"required,oneof=development staging production"`
}

type ServerConfig struct {
	Port         string        `yaml:"port" split_words:"true" validate:"required,numeric"`
	ReadTimeout  time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" split_words:"true" validate:"gt=0"`
}

// CWAConfig describes the upstream file API. APIKey has no default and must
// come from the environment, .env or the config file.
type CWAConfig struct {
	APIKey          string        `yaml:"api_key" split_words:"true" validate:"required"`
	BaseURL         string        `yaml:"base_url" split_words:"true" validate:"required,url"`
	Dataset         string        `yaml:"dataset" split_words:"true" validate:"required"`
	Timeout         time.Duration `yaml:"timeout" split_words:"true" validate:"gt=0"`
	BreakerFailures uint32        `yaml:"breaker_failures" split_words:"true" validate:"min=1"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" split_words:"true" validate:"gt=0"`
}

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl" split_words:"true" validate:"gt=0"`
	RefreshCooldown time.Duration `yaml:"refresh_cooldown" split_words:"true" validate:"gte=0"`
	// PrefetchInterval of zero disables the background reload.
	PrefetchInterval time.Duration `yaml:"prefetch_interval" split_words:"true" validate:"gte=0"`
}

type DashboardConfig struct {
	Title string `yaml:"title" split_words:"true" validate:"required"`
	// CoordinatesFile replaces the built-in coordinate table when set.
	CoordinatesFile  string `yaml:"coordinates_file" split_words:"true"`
	JoinPolicy       string `yaml:"join_policy" split_words:"true" validate:"required,oneof=condition-dates union"`
	CompareLocations int    `yaml:"compare_locations" split_words:"true" validate:"min=1"`
}

type LogConfig struct {
	Level string `yaml:"level" split_words:"true" validate:"required,oneof=debug info warn error"`
}

type SentryConfig struct {
	DSN string `yaml:"dsn" split_words:"true" validate:"omitempty,url"`
}

// ConfigProvider loads and validates a Config.
type ConfigProvider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

// FileConfigProvider layers built-in defaults, the YAML file, the .env file
// and the process environment, later sources winning.
type FileConfigProvider struct {
	configPath string
	envFile    string
	validate   *validator.Validate
}

func NewFileConfigProvider(configPath string) *FileConfigProvider {
	return NewFileConfigProviderWithEnv(configPath, DefaultEnvFile)
}

func NewFileConfigProviderWithEnv(configPath, envFile string) *FileConfigProvider {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &FileConfigProvider{
		configPath: configPath,
		envFile:    envFile,
		validate:   v,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "cwa-dashboard",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		CWA: CWAConfig{
			BaseURL:         "https://opendata.cwa.gov.tw/fileapi/v1/opendataapi",
			Dataset:         "F-A0010-001",
			Timeout:         30 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: time.Minute,
		},
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			RefreshCooldown: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			Title:            "農業氣象 一週預報儀表板",
			JoinPolicy:       "condition-dates",
			CompareLocations: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (p *FileConfigProvider) Load() (*Config, error) {
	config := Default()

	if err := p.loadFromFile(config); err != nil {
		return nil, err
	}
	if err := p.loadEnvFile(); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	return config, nil
}

// loadFromFile merges the YAML file into config. A missing file is not an error.
func (p *FileConfigProvider) loadFromFile(config *Config) error {
	data, err := os.ReadFile(p.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", p.configPath, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config %s: %w", p.configPath, err)
	}
	return nil
}

// loadEnvFile exports the .env entries that are not already set.
func (p *FileConfigProvider) loadEnvFile() error {
	if p.envFile == "" {
		return nil
	}
	err := godotenv.Load(p.envFile)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", p.envFile, err)
}

func (p *FileConfigProvider) Validate(config *Config) error {
	err := p.validate.Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is "Config.cwa.api_key"; drop the root type.
	name := fe.Namespace()
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "url":
		return name + " must be a valid URL"
	case "numeric":
		return name + " must be numeric"
	}
	return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
}

func NewConfig() (*Config, error) {
	return NewConfigWithProvider(NewFileConfigProvider(DefaultConfigPath))
}

func NewConfigWithProvider(provider ConfigProvider) (*Config, error) {
	config, err := provider.Load()
	if err != nil {
		return nil, err
	}
	if err := provider.Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
