package router

import (
	"github.com/gin-gonic/gin"

	"gym_crm_backend/internal/handlers"
	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/models"
)

// SetupClientRoutes sets up the client routes, including photos and per-client attendance.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler, photoHandler *handlers.PhotoHandler, attendanceHandler *handlers.AttendanceHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	clientRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", clientHandler.DeleteClient)

		clientRoutes.POST("/:id/photo", photoHandler.UploadPhoto)
		clientRoutes.GET("/:id/photo", photoHandler.GetPhoto)

		clientRoutes.POST("/:id/timein", attendanceHandler.TimeIn)
		clientRoutes.PUT("/:id/timeout", attendanceHandler.TimeOut)
		clientRoutes.GET("/:id/attendance", attendanceHandler.GetOpenSession)
		clientRoutes.GET("/:id/attendances", attendanceHandler.ListAttendances)
		clientRoutes.DELETE("/:id/attendances/today", attendanceHandler.PurgeToday)
	}
}

// SetupAttendanceRoutes sets up the cross-client attendance routes.
func SetupAttendanceRoutes(authenticatedGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	attendanceRoutes := authenticatedGroup.Group("/attendances")
	attendanceRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		attendanceRoutes.GET("/today", attendanceHandler.ListToday)
	}
}

// SetupTrainerRoutes sets up the trainer routes.
func SetupTrainerRoutes(authenticatedGroup *gin.RouterGroup, trainerHandler *handlers.TrainerHandler) {
	trainerRoutes := authenticatedGroup.Group("/trainers")
	trainerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		trainerRoutes.GET("", trainerHandler.GetTrainers)
		trainerRoutes.POST("", trainerHandler.CreateTrainer)
		trainerRoutes.DELETE("/:id", trainerHandler.DeleteTrainer)
	}
}

// SetupAdminRoutes sets up the admin-only maintenance routes.
func SetupAdminRoutes(authenticatedGroup *gin.RouterGroup, backupHandler *handlers.BackupHandler) {
	adminRoutes := authenticatedGroup.Group("/admin")
	adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminRoutes.POST("/backups", backupHandler.RunBackup)
	}
}
