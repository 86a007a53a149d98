package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// Config holds all service configuration
type Config struct {
	Port     string
	AppURL   string
	LogLevel string

	Shopify ShopifyConfig
	Store   StoreConfig
	Redis   RedisConfig
	// RabbitMQURL is optional; without it sync jobs are recorded but not announced
	RabbitMQURL string

	CORSAllowOrigins []string
}

// ShopifyConfig holds the app credentials issued by Shopify
type ShopifyConfig struct {
	APIKey        string
	APISecret     string
	EncryptionKey string // 64 hex chars
}

// StoreConfig selects and configures persistence
type StoreConfig struct {
	Driver        string // mongo or memory
	MongoURI      string
	MongoDatabase string
}

// RedisConfig holds the admission lock connection. An empty Addr selects the
// in-process locker.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables, applying defaults
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("app_url", "http://localhost:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("store_driver", StoreDriverMongo)
	v.SetDefault("mongodb_uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb_database", "shopify_connector")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cors_allow_origins", "*")

	cfg := &Config{
		Port:     v.GetString("port"),
		AppURL:   strings.TrimRight(v.GetString("app_url"), "/"),
		LogLevel: v.GetString("log_level"),
		Shopify: ShopifyConfig{
			APIKey:        v.GetString("shopify_api_key"),
			APISecret:     v.GetString("shopify_api_secret"),
			EncryptionKey: v.GetString("shopify_encryption_key"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(v.GetString("store_driver")),
			MongoURI:      v.GetString("mongodb_uri"),
			MongoDatabase: v.GetString("mongodb_database"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		RabbitMQURL:      v.GetString("rabbitmq_url"),
		CORSAllowOrigins: splitList(v.GetString("cors_allow_origins")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppURL == "" {
		return fmt.Errorf("APP_URL is required")
	}
	if c.Shopify.APIKey == "" {
		return fmt.Errorf("SHOPIFY_API_KEY is required")
	}
	if c.Shopify.APISecret == "" {
		return fmt.Errorf("SHOPIFY_API_SECRET is required")
	}
	key, err := hex.DecodeString(c.Shopify.EncryptionKey)
	if err != nil || len(key) != 32 {
		return fmt.Errorf("SHOPIFY_ENCRYPTION_KEY must be 64 hex characters")
	}
	switch c.Store.Driver {
	case StoreDriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_URI and MONGODB_DATABASE are required for the mongo store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverMongo, StoreDriverMemory, c.Store.Driver)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
