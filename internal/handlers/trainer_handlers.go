package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"
)

type TrainerHandler struct {
	trainerService services.TrainerService
}

func NewTrainerHandler(ts services.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: ts}
}

func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	var req services.CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTrainer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	trainer, err := h.trainerService.CreateTrainer(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateTrainer: Error from trainerService.CreateTrainer")
		if errors.Is(err, services.ErrTrainerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create trainer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

func (h *TrainerHandler) GetTrainers(c *gin.Context) {
	trainers, err := h.trainerService.GetTrainers(c.Request.Context())
	if err != nil {
		utils.RespondInternalError(c, err, "Failed to fetch trainers.")
		return
	}
	if trainers == nil {
		trainers = []models.Trainer{}
	}
	c.JSON(http.StatusOK, trainers)
}

func (h *TrainerHandler) DeleteTrainer(c *gin.Context) {
	trainerID, ok := parseIDParam(c, "trainer")
	if !ok {
		return
	}

	if err := h.trainerService.DeleteTrainer(c.Request.Context(), trainerID); err != nil {
		utils.LogError(err, "DeleteTrainer: Error from trainerService.DeleteTrainer for ID "+trainerID.String())
		if errors.Is(err, services.ErrTrainerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Trainer not found to delete.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete trainer.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
