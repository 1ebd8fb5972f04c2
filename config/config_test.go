package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"DB_DRIVER", "SESSION_ROLE_RETRY_ATTEMPTS", "SESSION_ROLE_RETRY_DELAY", "JWT_ACCESS_TOKEN_EXPIRY_MINUTES",
		"FRONTEND_URL", "PASSWORD_RESET_URL", "PASSWORD_RESET_EXPIRY_MINUTES",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Session.RoleRetryAttempts)
	assert.Equal(t, 3*time.Second, cfg.Session.RoleRetryDelay)
	assert.Equal(t, 60, cfg.JWT.AccessTokenExpiryMinutes)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "http://localhost:3000/reset-password", cfg.Mail.PasswordResetURL)
	assert.Equal(t, 30, cfg.Mail.PasswordResetExpiryMinutes)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverMemory)
	t.Setenv("SESSION_ROLE_RETRY_ATTEMPTS", "2")
	t.Setenv("SESSION_ROLE_RETRY_DELAY", "250ms")
	t.Setenv("PUSH_QUEUE_SIZE", "8")
	t.Setenv("FRONTEND_URL", "https://club.example")
	t.Setenv("PASSWORD_RESET_URL", "")
	os.Unsetenv("PASSWORD_RESET_URL")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 2, cfg.Session.RoleRetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.RoleRetryDelay)
	assert.Equal(t, 8, cfg.Push.QueueSize)
	assert.Equal(t, "https://club.example/reset-password", cfg.Mail.PasswordResetURL)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"DB_DRIVER":                       "mongo",
		"SESSION_ROLE_RETRY_ATTEMPTS":     "0",
		"SESSION_ROLE_RETRY_DELAY":        "soon",
		"JWT_ACCESS_TOKEN_EXPIRY_MINUTES": "an hour",
		"PASSWORD_RESET_EXPIRY_MINUTES":   "half an hour",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password = "db", "5432", "club", "pw"
	cfg.DB.Name, cfg.DB.SSLMode, cfg.DB.TimeZone = "clubhub", "disable", "UTC"
	assert.Equal(t, "host=db user=club password=pw dbname=clubhub port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
