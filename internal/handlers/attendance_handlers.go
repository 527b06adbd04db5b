package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"
)

// AttendanceHandler exposes the time-in / time-out tracker.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

// TimeIn opens a session for the client.
func (h *AttendanceHandler) TimeIn(c *gin.Context) {
	clientID, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	attendance, err := h.attendanceService.TimeIn(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, services.ErrSessionAlreadyOpen) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Client already has an open session.", err.Error()))
			return
		}
		utils.RespondInternalError(c, err, "Failed to record time in.")
		return
	}
	c.JSON(http.StatusCreated, attendance)
}

// TimeOut closes the client's open session.
func (h *AttendanceHandler) TimeOut(c *gin.Context) {
	clientID, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	attendance, err := h.attendanceService.TimeOut(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, services.ErrNoOpenSession) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No open session to close.", err.Error()))
			return
		}
		utils.RespondInternalError(c, err, "Failed to record time out.")
		return
	}
	c.JSON(http.StatusOK, attendance)
}

// GetOpenSession returns the client's open session.
func (h *AttendanceHandler) GetOpenSession(c *gin.Context) {
	clientID, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	attendance, err := h.attendanceService.GetOpenSession(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, services.ErrNoOpenSession) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client has no open session.", err.Error()))
			return
		}
		utils.RespondInternalError(c, err, "Failed to fetch open session.")
		return
	}
	c.JSON(http.StatusOK, attendance)
}

// ListAttendances returns the client's full history, newest first.
func (h *AttendanceHandler) ListAttendances(c *gin.Context) {
	clientID, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	list, err := h.attendanceService.ListAttendances(c.Request.Context(), clientID)
	if err != nil {
		utils.RespondInternalError(c, err, "Failed to fetch attendances.")
		return
	}
	if list == nil {
		list = []models.Attendance{}
	}
	c.JSON(http.StatusOK, list)
}

// PurgeToday deletes the client's sessions dated today (UTC).
func (h *AttendanceHandler) PurgeToday(c *gin.Context) {
	clientID, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	deleted, err := h.attendanceService.PurgeToday(c.Request.Context(), clientID)
	if err != nil {
		utils.RespondInternalError(c, err, "Failed to delete today's attendances.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ListToday returns every session dated today (UTC).
func (h *AttendanceHandler) ListToday(c *gin.Context) {
	list, err := h.attendanceService.ListToday(c.Request.Context())
	if err != nil {
		utils.RespondInternalError(c, err, "Failed to fetch today's attendances.")
		return
	}
	if list == nil {
		list = []models.Attendance{}
	}
	c.JSON(http.StatusOK, list)
}
