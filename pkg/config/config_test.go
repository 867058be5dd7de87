package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "tailingsiq",
		Password: "s3cret",
		Database: "tailingsiq_engine",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=tailingsiq password=s3cret dbname=tailingsiq_engine sslmode=require",
		cfg.ConnectionString())
}

func TestAuthConfig_TokenTTL(t *testing.T) {
	cfg := AuthConfig{TokenTTLHours: 24}
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := Config{Auth: AuthConfig{JWTSecret: "secret", TokenTTLHours: 24}}
		assert.NoError(t, cfg.validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := Config{Auth: AuthConfig{TokenTTLHours: 24}}
		err := cfg.validate()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("non-positive token ttl", func(t *testing.T) {
		cfg := Config{Auth: AuthConfig{JWTSecret: "secret", TokenTTLHours: 0}}
		err := cfg.validate()
		assert.ErrorContains(t, err, "token TTL")
	})
}
