package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Email     EmailConfig     `mapstructure:"email"`
	SMS       SMSConfig       `mapstructure:"sms"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// GeoConfig holds the endpoints and tuning of the external geo
// services. Base URLs are injected so tests can point clients at
// httptest servers.
type GeoConfig struct {
	GeocoderURL  string        `mapstructure:"geocoder_url"`
	PlacesURL    string        `mapstructure:"places_url"`
	RoutingURL   string        `mapstructure:"routing_url"`
	DetailsURL   string        `mapstructure:"details_url"`
	APIKey       string        `mapstructure:"api_key"`
	SearchRadius int           `mapstructure:"search_radius_meters"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SMSConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	Token      string `mapstructure:"token"`
	Sender     string `mapstructure:"sender"`
}

type DeliveryConfig struct {
	MaxAttempts      int           `mapstructure:"max_attempts"`
	InitialBackoff   time.Duration `mapstructure:"initial_backoff"`
	CompletedHistory int           `mapstructure:"completed_history"`
	FailedHistory    int           `mapstructure:"failed_history"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Secrets are values that must never live in the config file. They
// override whatever the file carries.
type Secrets struct {
	GeoAPIKey     string `envconfig:"GEO_API_KEY"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	SMSToken      string `envconfig:"SMS_TOKEN"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process("geonotify", &secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	applySecrets(&config, secrets)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", "100ms")
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)
	viper.SetDefault("geo.search_radius_meters", 5000)
	viper.SetDefault("geo.timeout", "5s")
	viper.SetDefault("geo.cache_ttl", "10m")
	viper.SetDefault("email.port", 587)
	viper.SetDefault("delivery.max_attempts", 3)
	viper.SetDefault("delivery.initial_backoff", "1s")
	viper.SetDefault("delivery.completed_history", 20)
	viper.SetDefault("delivery.failed_history", 50)
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
}

func applySecrets(cfg *Config, s Secrets) {
	if s.GeoAPIKey != "" {
		cfg.Geo.APIKey = s.GeoAPIKey
	}
	if s.SMTPPassword != "" {
		cfg.Email.Password = s.SMTPPassword
	}
	if s.SMSToken != "" {
		cfg.SMS.Token = s.SMSToken
	}
	if s.DBPassword != "" {
		cfg.Database.Password = s.DBPassword
	}
}
