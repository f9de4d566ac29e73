package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PLATFORM_FEE_PERCENT", "")

	LoadConfig()

	assert.Equal(t, "3000", AppConfig.Port)
	assert.Equal(t, "postgres", AppConfig.DBDriver)
	assert.Equal(t, 10, AppConfig.PlatformFeePercent)
	assert.Equal(t, 24, AppConfig.JWTTTLHours)
	assert.Equal(t, "UTC", AppConfig.CronTimezone)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PLATFORM_FEE_PERCENT", "15")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("SALT_ROUND", "2")

	LoadConfig()

	assert.Equal(t, "8081", AppConfig.Port)
	assert.Equal(t, "sqlite", AppConfig.DBDriver)
	assert.Equal(t, 15, AppConfig.PlatformFeePercent)
	assert.Equal(t, 8, AppConfig.MaxUploadMB)
	// bcrypt refuses costs below 4
	assert.Equal(t, 10, AppConfig.SaltRound)
}
