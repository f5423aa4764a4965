package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Google Maps API Key.
	GoogleAPIKey string `mapstructure:"GOOGLE_API_KEY"`
	GeocodeURL   string `mapstructure:"GEOCODE_URL"`

	// Upstream catalog/pricing and cart services.
	CoreAPIURL  string        `mapstructure:"CORE_API_URL"`
	CartAPIURL  string        `mapstructure:"CART_API_URL"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`

	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`
	CatalogCacheTTL    time.Duration `mapstructure:"CATALOG_CACHE_TTL"`
	CatalogRefreshCron string        `mapstructure:"CATALOG_REFRESH_CRON"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers the default value of every known key.
func SetDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_SESSION_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "coolie")
	viper.SetDefault("GOOGLE_API_KEY", "")
	viper.SetDefault("GEOCODE_URL", "https://maps.googleapis.com/maps/api/geocode/json")
	viper.SetDefault("CORE_API_URL", "https://api.coolieno1.in/v1.0/core")
	viper.SetDefault("CART_API_URL", "https://api.coolieno1.in/v1.0/users")
	viper.SetDefault("HTTP_TIMEOUT", "10s")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("CATALOG_CACHE_TTL", "15m")
	viper.SetDefault("CATALOG_REFRESH_CRON", "@every 10m")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Validate rejects settings that are unsafe to run with. Production requires
// an explicit JWT secret.
func Validate() error {
	if IsProduction() && AppConfig.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}
