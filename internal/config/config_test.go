package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, 40, cfg.GoogleBooks.MaxResults)
	assert.Equal(t, 24*time.Hour, cfg.Codes.PasswordResetTTL)
	assert.Equal(t, "0 0 * * * *", cfg.Codes.PurgeSchedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9999")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_EXPIRY_MINUTES", "15")
	t.Setenv("GOOGLE_BOOKS_MAX_RESULTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL())
	assert.Equal(t, 40, cfg.GoogleBooks.MaxResults, "unparsable ints fall back")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}},
		{name: "zero expiry", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRY_MINUTES": "0"}},
		{name: "mailjet without keys", env: map[string]string{"JWT_SECRET": testSecret, "EMAIL_PROVIDER": "mailjet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
