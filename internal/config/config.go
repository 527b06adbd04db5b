// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gym_crm_backend/pkg/utils"
)

// PhotoStorageMode selects where uploaded client photos are kept.
type PhotoStorageMode string

const (
	// PhotoStorageDisk writes photo files under the uploads directory and stores the relative path.
	PhotoStorageDisk PhotoStorageMode = "disk"
	// PhotoStorageInline embeds base64 photo bytes in the client record.
	PhotoStorageInline PhotoStorageMode = "inline"
)

// Config holds all application configuration.
type Config struct {
	Port               string
	CORSAllowedOrigins []string
	LogLevel           string
	LogPretty          bool

	Database  DatabaseConfig
	JWT       JWTConfig
	Photo     PhotoConfig
	Backup    BackupConfig
	Reminder  ReminderConfig
	Scheduler SchedulerConfig
	Redis     RedisConfig
	Twilio    TwilioConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
// DatabaseURL wins over the individual fields when set.
type DatabaseConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	ApplySchema bool
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// PhotoConfig holds client photo storage settings.
type PhotoConfig struct {
	Mode       PhotoStorageMode
	UploadsDir string
}

// BackupConfig holds backup job settings.
type BackupConfig struct {
	Dir        string
	Retain     int
	Cron       string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Access   string
	S3Secret   string
}

// UsesS3 reports whether backups go to an S3 compatible bucket instead of BackupDir.
func (b BackupConfig) UsesS3() bool {
	return b.S3Bucket != ""
}

// ReminderConfig holds fee reminder job settings.
type ReminderConfig struct {
	Cron string
}

// SchedulerConfig holds settings shared by the daily job triggers.
type SchedulerConfig struct {
	CheckInterval time.Duration
	JobTimeout    time.Duration
}

// RedisConfig enables the cross-replica job lock when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TwilioConfig holds SMS gateway credentials. Empty AccountSID disables real sends.
type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	From        string
	MaxAttempts int
}

// Enabled reports whether all Twilio credentials are present.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("config: no .env file found, using environment variables only")
	}
	return FromViper(newViper())
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		Port:               v.GetString("PORT"),
		CORSAllowedOrigins: utils.SplitTrimmed(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogPretty:          v.GetBool("LOG_PRETTY"),
		Database: DatabaseConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			ApplySchema: v.GetBool("DB_APPLY_SCHEMA"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Photo: PhotoConfig{
			Mode:       PhotoStorageMode(strings.ToLower(strings.TrimSpace(v.GetString("PHOTO_STORAGE_MODE")))),
			UploadsDir: v.GetString("UPLOADS_DIR"),
		},
		Backup: BackupConfig{
			Dir:        v.GetString("BACKUP_DIR"),
			Retain:     v.GetInt("BACKUP_RETAIN"),
			Cron:       v.GetString("BACKUP_CRON"),
			S3Bucket:   v.GetString("BACKUP_S3_BUCKET"),
			S3Region:   v.GetString("BACKUP_S3_REGION"),
			S3Endpoint: v.GetString("BACKUP_S3_ENDPOINT"),
			S3Access:   v.GetString("BACKUP_S3_ACCESS_KEY"),
			S3Secret:   v.GetString("BACKUP_S3_SECRET_KEY"),
		},
		Reminder: ReminderConfig{
			Cron: v.GetString("REMINDER_CRON"),
		},
		Scheduler: SchedulerConfig{
			CheckInterval: v.GetDuration("JOB_CHECK_INTERVAL"),
			JobTimeout:    v.GetDuration("JOB_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Twilio: TwilioConfig{
			AccountSID:  v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:   v.GetString("TWILIO_AUTH_TOKEN"),
			From:        v.GetString("TWILIO_FROM"),
			MaxAttempts: v.GetInt("MESSAGING_MAX_ATTEMPTS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN returns the full PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	d := c.Database
	if d.DatabaseURL != "" {
		return d.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWT.Secret)
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.Photo.Mode {
	case PhotoStorageDisk, PhotoStorageInline:
	default:
		errs = append(errs, fmt.Errorf("PHOTO_STORAGE_MODE must be %q or %q, got %q", PhotoStorageDisk, PhotoStorageInline, c.Photo.Mode))
	}
	if c.Backup.Retain < 1 {
		errs = append(errs, errors.New("BACKUP_RETAIN must be at least 1"))
	}
	if c.Backup.UsesS3() && (c.Backup.S3Access == "" || c.Backup.S3Secret == "") {
		errs = append(errs, errors.New("BACKUP_S3_ACCESS_KEY and BACKUP_S3_SECRET_KEY are required with BACKUP_S3_BUCKET"))
	}
	if c.Scheduler.CheckInterval <= 0 || c.Scheduler.CheckInterval > time.Minute {
		errs = append(errs, errors.New("JOB_CHECK_INTERVAL must be in (0, 1m]"))
	}
	if c.Twilio.MaxAttempts < 1 {
		errs = append(errs, errors.New("MESSAGING_MAX_ATTEMPTS must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "gym")
	v.SetDefault("DB_NAME", "gym_crm")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_APPLY_SCHEMA", true)

	v.SetDefault("JWT_TTL", 12*time.Hour)

	v.SetDefault("PHOTO_STORAGE_MODE", string(PhotoStorageDisk))
	v.SetDefault("UPLOADS_DIR", "uploads")

	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("BACKUP_RETAIN", 7)
	v.SetDefault("BACKUP_CRON", "0 2 * * *")
	v.SetDefault("BACKUP_S3_REGION", "us-east-1")

	v.SetDefault("REMINDER_CRON", "0 9 * * *")
	v.SetDefault("JOB_CHECK_INTERVAL", 30*time.Second)
	v.SetDefault("JOB_TIMEOUT", 10*time.Minute)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MESSAGING_MAX_ATTEMPTS", 1)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}
