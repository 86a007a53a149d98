package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
	t.Setenv("SHOPIFY_ENCRYPTION_KEY", validKey)
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "http://localhost:8080", cfg.AppURL)
		assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
		assert.Equal(t, "shopify_connector", cfg.Store.MongoDatabase)
		assert.Empty(t, cfg.Redis.Addr)
		assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	})

	t.Run("environment overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("APP_URL", "https://connector.example.com/")
		t.Setenv("STORE_DRIVER", "MEMORY")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("REDIS_DB", "2")
		t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://connector.example.com", cfg.AppURL)
		assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, 2, cfg.Redis.DB)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowOrigins)
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing api key", map[string]string{"SHOPIFY_API_KEY": ""}, "SHOPIFY_API_KEY"},
		{"missing api secret", map[string]string{"SHOPIFY_API_SECRET": ""}, "SHOPIFY_API_SECRET"},
		{"short key", map[string]string{"SHOPIFY_ENCRYPTION_KEY": "abcd"}, "SHOPIFY_ENCRYPTION_KEY"},
		{"non hex key", map[string]string{"SHOPIFY_ENCRYPTION_KEY": "zz" + validKey[2:]}, "SHOPIFY_ENCRYPTION_KEY"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
