package config

import (
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
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Feed behaviour.
	FeedPageSize         int           `mapstructure:"FEED_PAGE_SIZE"`
	FeedSuggestionStride int           `mapstructure:"FEED_SUGGESTION_STRIDE"`
	FeedPrefetchTTL      time.Duration `mapstructure:"FEED_PREFETCH_TTL"`
	FeedSessionIdle      time.Duration `mapstructure:"FEED_SESSION_IDLE"`

	// Stripe.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeSuccessURL    string `mapstructure:"STRIPE_SUCCESS_URL"`
	StripeCancelURL     string `mapstructure:"STRIPE_CANCEL_URL"`

	// Object storage: "cloudinary" or "firebase".
	StorageBackend          string `mapstructure:"STORAGE_BACKEND"`
	CloudinaryCloudName     string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey        string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret     string `mapstructure:"CLOUDINARY_API_SECRET"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseBucket          string `mapstructure:"FIREBASE_BUCKET"`

	// TierOrder lists subscription tiers from lowest to highest.
	TierOrder []string `mapstructure:"TIER_ORDER"`
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

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "creatorhub")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("FEED_PAGE_SIZE", 20)
	viper.SetDefault("FEED_SUGGESTION_STRIDE", 5)
	viper.SetDefault("FEED_PREFETCH_TTL", 2*time.Minute)
	viper.SetDefault("FEED_SESSION_IDLE", 15*time.Minute)
	viper.SetDefault("STRIPE_SUCCESS_URL", "http://localhost:5173/subscription/success")
	viper.SetDefault("STRIPE_CANCEL_URL", "http://localhost:5173/subscription/cancel")
	viper.SetDefault("STORAGE_BACKEND", "cloudinary")
	viper.SetDefault("TIER_ORDER", []string{"basic", "premium", "vip"})

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
