package config

import (
	"log"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Port             string `mapstructure:"port"`
	AuthBaseURL      string `mapstructure:"auth_base_url"`
	SchedulerBaseURL string `mapstructure:"scheduler_base_url"`
	DatabaseURL      string `mapstructure:"database_url"`
	RedisURL         string `mapstructure:"redis_url"`

	// Generation service
	OpenAI OpenAIConfig `mapstructure:"openai"`

	// Upstream request behavior
	RequestTimeoutSeconds  int `mapstructure:"request_timeout_seconds"`
	MaxAvailabilityEntries int `mapstructure:"max_availability_entries"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	BaseURL     string  `mapstructure:"base_url"`
}

// App holds the global config instance
var App Config

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) error {
	// Auto-load .env file if present so 'go run' works without manually
	// exporting env vars. A missing .env is fine (Production/Docker).
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	v := viper.New()

	// Set default values
	v.SetDefault("port", "8080")
	v.SetDefault("auth_base_url", "https://dev-hv-auth.azurewebsites.net")
	v.SetDefault("scheduler_base_url", "https://dev-hapivet-sch.azurewebsites.net")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("max_availability_entries", 12)

	// Config file settings
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("dev.config")
		v.SetConfigType("yaml")
	}

	// Bind standard environment variables (Docker/deploy compatibility)
	v.SetEnvPrefix("hapivet")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("auth_base_url", "AUTH_BASE_URL")
	_ = v.BindEnv("scheduler_base_url", "SCHEDULER_BASE_URL")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.model", "OPENAI_MODEL")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("max_availability_entries", "MAX_AVAILABILITY_ENTRIES")

	v.AutomaticEnv()

	// 1. Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and environment variables")
		} else if path != "" {
			return err
		}
	} else {
		log.Printf("Loaded config from: %s", v.ConfigFileUsed())
	}

	// 2. Unmarshal into struct. Weak typing lets env-var overrides (always
	// strings) land in the numeric fields.
	if err := v.Unmarshal(&App, func(c *mapstructure.DecoderConfig) {
		c.WeaklyTypedInput = true
	}); err != nil {
		return err
	}

	// 3. Backfill environment variables for tooling that still reads os.Getenv
	setEnvIfEmpty("PORT", App.Port)
	setEnvIfEmpty("AUTH_BASE_URL", App.AuthBaseURL)
	setEnvIfEmpty("SCHEDULER_BASE_URL", App.SchedulerBaseURL)
	setEnvIfEmpty("OPENAI_API_KEY", App.OpenAI.APIKey)

	return nil
}

func setEnvIfEmpty(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}
