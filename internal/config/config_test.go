package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:      "8080",
		JWTSecret: "a-long-enough-development-secret-value",
		Env:       "development",
	}
}

func TestValidate(t *testing.T) {
	t.Run("development defaults pass", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing port fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing jwt secret fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects default secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires smtp credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
		cfg.DBPassword = "strong-enough"
		assert.Error(t, cfg.Validate())

		cfg.SMTPUser = "mailer@example.com"
		cfg.SMTPPassword = "app-password"
		cfg.ContactEmail = "owner@example.com"
		assert.NoError(t, cfg.Validate())
	})
}
