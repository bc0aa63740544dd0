package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Store      StoreConfig      `mapstructure:"store"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Validation ValidationConfig `mapstructure:"validation"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"oneof=development production test"`
}

// StoreConfig holds the location and layout of the data file
type StoreConfig struct {
	Path   string `mapstructure:"path" validate:"required"`
	Indent int    `mapstructure:"indent" validate:"gte=0,lte=8"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format   string `mapstructure:"format" validate:"oneof=console json"`
	Output   string `mapstructure:"output" validate:"oneof=stderr file"`
	Filename string `mapstructure:"filename" validate:"required_if=Output file"`
}

// ValidationConfig controls how strictly user input is checked
type ValidationConfig struct {
	StrictEmail    bool `mapstructure:"strict_email"`
	MaxFieldLength int  `mapstructure:"max_field_length" validate:"gte=0"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from defaults, an optional .env file and the
// environment.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "proyecto")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	// Store defaults
	v.SetDefault("store.path", "database.json")
	v.SetDefault("store.indent", 4)

	// Logger defaults
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "")

	v.SetDefault("validation.strict_email", false)
	v.SetDefault("validation.max_field_length", 0)
	v.SetDefault("metrics.enabled", false)
}

func bindEnvVars(v *viper.Viper) error {
	bindings := [][2]string{
		{"app.name", "APP_NAME"},
		{"app.version", "APP_VERSION"},
		{"app.environment", "APP_ENVIRONMENT"},

		{"store.path", "DB_FILE"},
		{"store.indent", "DB_INDENT"},

		{"logger.level", "LOG_LEVEL"},
		{"logger.format", "LOG_FORMAT"},
		{"logger.output", "LOG_OUTPUT"},
		{"logger.filename", "LOG_FILE"},

		{"validation.strict_email", "STRICT_EMAIL"},
		{"validation.max_field_length", "MAX_FIELD_LENGTH"},
		{"metrics.enabled", "ENABLE_METRICS"},
	}

	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return err
		}
	}
	return nil
}

func validateConfig(cfg *Config) error {
	return validator.New().Struct(cfg)
}
