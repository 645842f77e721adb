package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "BEGONE_"

// Config holds application configuration
type Config struct {
	Registry  RegistryConfig  `koanf:"registry"`
	Cache     CacheConfig     `koanf:"cache"`
	Output    OutputConfig    `koanf:"output"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// RegistryConfig configures the number-range registry client
type RegistryConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	ResourceID        string        `koanf:"resource_id" validate:"required"`
	MnemonicField     string        `koanf:"mnemonic_field" validate:"required"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
}

// CacheConfig configures the optional Redis range cache
type CacheConfig struct {
	RedisURL string        `koanf:"redis_url"`
	TTL      time.Duration `koanf:"ttl" validate:"gte=0"`
}

// OutputConfig configures the property-list writer
type OutputConfig struct {
	Format string `koanf:"format" validate:"oneof=binary xml"`
}

// LogConfig configures logging
type LogConfig struct {
	Format string `koanf:"format" validate:"oneof=json console"`
	Debug  bool   `koanf:"debug"`
}

// TelemetryConfig configures OpenTelemetry tracing
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string `koanf:"service_name"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		Registry: RegistryConfig{
			BaseURL:       "https://tabular-api.data.gouv.fr/api/resources",
			ResourceID:    "90e8bdd0-0f5c-47ac-bd39-5f46463eb806",
			MnemonicField: "Mnémo",
			Timeout:       10 * time.Second,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Output: OutputConfig{
			Format: "binary",
		},
		Log: LogConfig{
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "begone",
		},
	}
}

// Load loads configuration from defaults, an optional YAML file and
// BEGONE_* environment variables, in increasing order of precedence.
// An empty path skips the file; a missing non-empty path is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s does not exist", path)
			}
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// BEGONE_REGISTRY_BASE_URL -> registry.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}
