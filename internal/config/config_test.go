package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("JWT_SECRET", "secret")
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, PhotoStorageDisk, cfg.Photo.Mode)
	assert.Equal(t, "uploads", cfg.Photo.UploadsDir)
	assert.Equal(t, 7, cfg.Backup.Retain)
	assert.Equal(t, "0 2 * * *", cfg.Backup.Cron)
	assert.Equal(t, "0 9 * * *", cfg.Reminder.Cron)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 1, cfg.Twilio.MaxAttempts)
	assert.False(t, cfg.Backup.UsesS3())
	assert.False(t, cfg.Twilio.Enabled())
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_Validation(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		_, err := FromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("unknown photo mode", func(t *testing.T) {
		v := baseViper()
		v.Set("PHOTO_STORAGE_MODE", "cloud")
		_, err := FromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PHOTO_STORAGE_MODE")
	})

	t.Run("inline mode is case insensitive", func(t *testing.T) {
		v := baseViper()
		v.Set("PHOTO_STORAGE_MODE", " Inline ")
		cfg, err := FromViper(v)
		require.NoError(t, err)
		assert.Equal(t, PhotoStorageInline, cfg.Photo.Mode)
	})

	t.Run("s3 bucket requires keys", func(t *testing.T) {
		v := baseViper()
		v.Set("BACKUP_S3_BUCKET", "gym-backups")
		_, err := FromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BACKUP_S3_ACCESS_KEY")
	})
}

func TestPostgresDSN(t *testing.T) {
	cfg, err := FromViper(baseViper())
	require.NoError(t, err)
	assert.Equal(t, "host=localhost port=5432 user=gym password= dbname=gym_crm sslmode=disable", cfg.PostgresDSN())

	cfg.Database.DatabaseURL = "postgres://u:p@db/gym"
	assert.Equal(t, "postgres://u:p@db/gym", cfg.PostgresDSN())
}
