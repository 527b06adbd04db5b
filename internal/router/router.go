package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gym_crm_backend/internal/config"
	"gym_crm_backend/internal/handlers"
	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/internal/storage"
)

// Dependencies carries what the HTTP layer needs from main.
type Dependencies struct {
	DB     *sql.DB
	Config *config.Config
	// PhotoFiles holds disk-mode photo files; may be nil in inline mode.
	PhotoFiles storage.ObjectStore
	Backups    handlers.BackupRunner
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Dependencies) {
	db := deps.DB
	cfg := deps.Config

	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	trainerRepo := repositories.NewTrainerRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db, cfg.JWTKey(), cfg.JWT.TTL)
	photoService := services.NewPhotoService(clientRepo, deps.PhotoFiles, cfg.Photo.Mode, db, deps.Clock)
	clientService := services.NewClientService(clientRepo, trainerRepo, photoService, db)
	trainerService := services.NewTrainerService(trainerRepo, db)
	attendanceService := services.NewAttendanceService(attendanceRepo, db, deps.Clock)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	trainerHandler := handlers.NewTrainerHandler(trainerService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if cfg.Photo.Mode == config.PhotoStorageDisk && cfg.Photo.UploadsDir != "" {
		engine.Static("/uploads", cfg.Photo.UploadsDir)
	}

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(cfg.JWTKey()))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupClientRoutes(authenticated, clientHandler, photoHandler, attendanceHandler)
		SetupAttendanceRoutes(authenticated, attendanceHandler)
		SetupTrainerRoutes(authenticated, trainerHandler)
		if deps.Backups != nil {
			SetupAdminRoutes(authenticated, handlers.NewBackupHandler(deps.Backups))
		}
	}
}

// SetupPublicAuthRoutes registers the routes reachable without a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.LogoutUser)
	group.GET("/me", authHandler.GetCurrentUser)
	group.POST("/users", middleware.RoleAuthMiddleware(models.RoleAdmin), authHandler.CreateUser)
}
