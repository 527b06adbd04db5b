package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"gym_crm_backend/internal/config"
	"gym_crm_backend/internal/database"
	"gym_crm_backend/internal/jobs"
	"gym_crm_backend/internal/messaging"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/internal/router"
	"gym_crm_backend/internal/storage"
	"gym_crm_backend/pkg/utils"
)

const (
	shutdownTimeout = 15 * time.Second
	smsTimeout      = 10 * time.Second
	smsRetryBackoff = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", false)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if cfg.Database.ApplySchema {
		if err := database.ApplySchema(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database schema")
		}
	}

	if err := utils.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register request validators")
	}

	photoFiles, err := storage.NewLocalStore(cfg.Photo.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare uploads directory")
	}

	backupStore, err := newBackupStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare backup storage")
	}

	locker, redisClient := newLocker(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	clientRepo := repositories.NewClientRepository(db)
	backupJob := jobs.NewBackupJob(clientRepo, repositories.NewAttendanceRepository(db), repositories.NewAuthRepository(db), backupStore, cfg.Backup.Retain, nil)
	reminderJob := jobs.NewFeeReminderJob(clientRepo, newSender(cfg), nil)

	triggers, err := newTriggers(cfg, locker, backupJob, reminderJob)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure job schedules")
	}
	for _, trigger := range triggers {
		if err := trigger.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start job trigger")
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, router.Dependencies{
		DB:         db,
		Config:     cfg,
		PhotoFiles: photoFiles,
		Backups:    backupJob,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "photo_mode": string(cfg.Photo.Mode)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "HTTP server shutdown failed")
	}
	for _, trigger := range triggers {
		if err := trigger.Stop(shutdownCtx); err != nil {
			utils.LogError(err, "Job trigger shutdown failed")
		}
	}
	utils.LogInfo("Server stopped")
}

// newBackupStore picks S3 when a bucket is configured, the local backup directory otherwise.
func newBackupStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.Backup.UsesS3() {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.Backup.S3Bucket,
			Region:    cfg.Backup.S3Region,
			Endpoint:  cfg.Backup.S3Endpoint,
			AccessKey: cfg.Backup.S3Access,
			SecretKey: cfg.Backup.S3Secret,
		})
		if err != nil {
			return nil, err
		}
		utils.LogInfo("Backups go to S3", map[string]interface{}{"bucket": store.Bucket()})
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.Backup.Dir)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Backups go to local directory", map[string]interface{}{"dir": store.Root()})
	return store, nil
}

// newLocker uses Redis when configured. An unreachable Redis falls back to the in-process lock.
func newLocker(ctx context.Context, cfg *config.Config) (jobs.Locker, *redis.Client) {
	if cfg.Redis.Addr == "" {
		return jobs.NewLocalLocker(), nil
	}
	client, err := jobs.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		utils.LogWarn(err, "Redis unavailable, job locks are local to this process", map[string]interface{}{"addr": cfg.Redis.Addr})
		return jobs.NewLocalLocker(), nil
	}
	return jobs.NewRedisLocker(client, ""), client
}

// newSender returns the Twilio sender when credentials are set, a logging sender otherwise.
func newSender(cfg *config.Config) messaging.Sender {
	var sender messaging.Sender
	if cfg.Twilio.Enabled() {
		sender = messaging.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, smsTimeout)
	} else {
		utils.LogInfo("Twilio credentials not set, reminders are only logged")
		sender = messaging.NewLogSender()
	}
	if cfg.Twilio.MaxAttempts > 1 {
		sender = messaging.NewRetryingSender(sender, cfg.Twilio.MaxAttempts, smsRetryBackoff)
	}
	return sender
}

func newTriggers(cfg *config.Config, locker jobs.Locker, backup *jobs.BackupJob, reminder *jobs.FeeReminderJob) ([]*jobs.CronTrigger, error) {
	backupHour, backupMinute, err := jobs.ParseDailySchedule(cfg.Backup.Cron)
	if err != nil {
		return nil, err
	}
	reminderHour, reminderMinute, err := jobs.ParseDailySchedule(cfg.Reminder.Cron)
	if err != nil {
		return nil, err
	}

	return []*jobs.CronTrigger{
		jobs.NewCronTrigger(jobs.CronTriggerConfig{
			Name:          "backup",
			Hour:          backupHour,
			Minute:        backupMinute,
			CheckInterval: cfg.Scheduler.CheckInterval,
			JobTimeout:    cfg.Scheduler.JobTimeout,
		}, backup.Run, locker),
		jobs.NewCronTrigger(jobs.CronTriggerConfig{
			Name:          "fee-reminder",
			Hour:          reminderHour,
			Minute:        reminderMinute,
			CheckInterval: cfg.Scheduler.CheckInterval,
			JobTimeout:    cfg.Scheduler.JobTimeout,
		}, reminder.Run, locker),
	}, nil
}
