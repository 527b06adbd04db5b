package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"
)

var (
	ErrTrainerNotFound   = errors.New("trainer not found")
	ErrTrainerValidation = errors.New("trainer data validation error")
)

type CreateTrainerRequest struct {
	Name           string  `json:"name" binding:"required"`
	Phone          *string `json:"phone" binding:"omitempty,phone"`
	Specialization *string `json:"specialization"`
}

type TrainerService interface {
	CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error)
	GetTrainers(ctx context.Context) ([]models.Trainer, error)
	DeleteTrainer(ctx context.Context, trainerID uuid.UUID) error
}

type trainerService struct {
	trainerRepo repositories.TrainerRepository
	db          *sql.DB
}

// NewTrainerService creates a new instance of TrainerService.
func NewTrainerService(repo repositories.TrainerRepository, db *sql.DB) TrainerService {
	return &trainerService{trainerRepo: repo, db: db}
}

func (s *trainerService) CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrTrainerValidation)
	}
	if req.Phone != nil && *req.Phone != "" && !utils.IsValidPhone(*req.Phone) {
		return nil, fmt.Errorf("%w: phone number format is invalid", ErrTrainerValidation)
	}

	trainer := &models.Trainer{
		Name: strings.TrimSpace(req.Name),
	}
	if req.Phone != nil {
		trainer.Phone = utils.NewNullString(*req.Phone)
	}
	if req.Specialization != nil {
		trainer.Specialization = utils.NewNullString(*req.Specialization)
	}

	if err := s.trainerRepo.CreateTrainer(ctx, s.db, trainer); err != nil {
		return nil, fmt.Errorf("failed to create trainer: %w", err)
	}
	return trainer, nil
}

func (s *trainerService) GetTrainers(ctx context.Context) ([]models.Trainer, error) {
	trainers, err := s.trainerRepo.GetTrainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get trainers: %w", err)
	}
	return trainers, nil
}

// DeleteTrainer removes the trainer only. Clients keep their trainer_id.
func (s *trainerService) DeleteTrainer(ctx context.Context, trainerID uuid.UUID) error {
	if err := s.trainerRepo.DeleteTrainer(ctx, s.db, trainerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTrainerNotFound
		}
		return fmt.Errorf("failed to delete trainer: %w", err)
	}
	return nil
}
