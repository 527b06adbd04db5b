package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_crm_backend/internal/jobs"
	"gym_crm_backend/pkg/utils"
)

// BackupRunner is the on-demand side of the backup job.
type BackupRunner interface {
	RunOnce(ctx context.Context) (*jobs.BackupResult, error)
}

// BackupHandler triggers backups outside the daily schedule.
type BackupHandler struct {
	runner BackupRunner
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(runner BackupRunner) *BackupHandler {
	return &BackupHandler{runner: runner}
}

// RunBackup writes a snapshot now and reports what was stored and pruned.
func (h *BackupHandler) RunBackup(c *gin.Context) {
	result, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, jobs.ErrBackupInProgress) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A backup is already running.", err.Error()))
			return
		}
		utils.RespondInternalError(c, err, "Backup failed.")
		return
	}
	c.JSON(http.StatusCreated, result)
}
