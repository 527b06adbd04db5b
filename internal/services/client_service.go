package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"
)

const dateLayout = "2006-01-02"

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrClientValidation = errors.New("client data validation error")
	ErrDateFormat       = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrInvalidID        = errors.New("invalid id format")
)

// --- Client DTOs ---
type CreateClientRequest struct {
	Name              string           `json:"name" binding:"required"`
	Phone             string           `json:"phone" binding:"required,phone"`
	Address           string           `json:"address" binding:"required"`
	Email             *string          `json:"email" binding:"omitempty,email"`
	FeeSubmissionDate string           `json:"fee_submission_date" binding:"required"` // Format YYYY-MM-DD
	MonthlyFee        *decimal.Decimal `json:"monthly_fee"`
	TrainerID         *string          `json:"trainer_id"`
}

// UpdateClientRequest is a partial update: nil fields are left unchanged.
// An empty TrainerID string unassigns the trainer.
type UpdateClientRequest struct {
	Name              *string          `json:"name"`
	Phone             *string          `json:"phone" binding:"omitempty,phone"`
	Address           *string          `json:"address"`
	Email             *string          `json:"email"`
	FeeSubmissionDate *string          `json:"fee_submission_date"` // Format YYYY-MM-DD
	MonthlyFee        *decimal.Decimal `json:"monthly_fee"`
	TrainerID         *string          `json:"trainer_id"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	GetClientByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error)
	GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	UpdateClient(ctx context.Context, clientID uuid.UUID, req UpdateClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, clientID uuid.UUID) error
}

// --- clientService Implementation ---
type clientService struct {
	clientRepo  repositories.ClientRepository
	trainerRepo repositories.TrainerRepository
	photos      PhotoFileRemover
	db          *sql.DB
}

// PhotoFileRemover deletes the stored file behind a disk-mode photo path.
type PhotoFileRemover interface {
	RemovePhotoFile(ctx context.Context, photo *models.ClientPhoto)
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository, trainerRepo repositories.TrainerRepository, photos PhotoFileRemover, db *sql.DB) ClientService {
	return &clientService{
		clientRepo:  repo,
		trainerRepo: trainerRepo,
		photos:      photos,
		db:          db,
	}
}

// ParseID parses a path parameter into a UUID.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

func (s *clientService) validateClientData(name, phone, address string, email *string, fee *decimal.Decimal) error {
	if utils.IsEmpty(name) {
		return fmt.Errorf("%w: name cannot be empty", ErrClientValidation)
	}
	if utils.IsEmpty(address) {
		return fmt.Errorf("%w: address cannot be empty", ErrClientValidation)
	}
	if !utils.IsValidPhone(phone) {
		return fmt.Errorf("%w: phone number format is invalid", ErrClientValidation)
	}
	if email != nil && *email != "" && !utils.IsValidEmail(strings.TrimSpace(*email)) {
		return fmt.Errorf("%w: email format is invalid", ErrClientValidation)
	}
	if fee != nil && fee.IsNegative() {
		return fmt.Errorf("%w: monthly fee cannot be negative", ErrClientValidation)
	}
	return nil
}

func parseFeeDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return d, nil
}

// resolveTrainer returns nil for a blank id and ErrTrainerNotFound for an unknown one.
func (s *clientService) resolveTrainer(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := ParseID(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: trainer_id is not a valid id", ErrClientValidation)
	}
	if _, err := s.trainerRepo.GetTrainerByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to check trainer: %w", err)
	}
	return &id, nil
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	if err := s.validateClientData(req.Name, req.Phone, req.Address, req.Email, req.MonthlyFee); err != nil {
		return nil, err
	}

	feeDate, err := parseFeeDate(req.FeeSubmissionDate)
	if err != nil {
		return nil, err
	}

	trainerID, err := s.resolveTrainer(ctx, req.TrainerID)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		Name:              strings.TrimSpace(req.Name),
		Phone:             strings.TrimSpace(req.Phone),
		Address:           strings.TrimSpace(req.Address),
		Email:             req.Email,
		FeeSubmissionDate: feeDate,
		TrainerID:         trainerID,
	}
	if req.MonthlyFee != nil {
		client.MonthlyFee = decimal.NewNullDecimal(*req.MonthlyFee)
	}

	if err := s.clientRepo.CreateClient(ctx, s.db, client); err != nil {
		return nil, fmt.Errorf("failed to create client in repository: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClientByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by ID: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	clients, totalCount, err := s.clientRepo.GetClients(ctx, models.ClientFilters{Search: searchTerm, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get clients: %w", err)
	}
	return clients, totalCount, nil
}

func (s *clientService) UpdateClient(ctx context.Context, clientID uuid.UUID, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}
	if req.Email != nil {
		client.Email = utils.NewNullString(*req.Email)
	}
	if req.MonthlyFee != nil {
		client.MonthlyFee = decimal.NewNullDecimal(*req.MonthlyFee)
	}

	var fee *decimal.Decimal
	if client.MonthlyFee.Valid {
		fee = &client.MonthlyFee.Decimal
	}
	if err := s.validateClientData(client.Name, client.Phone, client.Address, client.Email, fee); err != nil {
		return nil, err
	}

	if req.FeeSubmissionDate != nil {
		feeDate, parseErr := parseFeeDate(*req.FeeSubmissionDate)
		if parseErr != nil {
			return nil, parseErr
		}
		client.FeeSubmissionDate = feeDate
	}
	if req.TrainerID != nil {
		trainerID, trainerErr := s.resolveTrainer(ctx, req.TrainerID)
		if trainerErr != nil {
			return nil, trainerErr
		}
		client.TrainerID = trainerID
	}

	if err := s.clientRepo.UpdateClient(ctx, s.db, client); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client in repository: %w", err)
	}
	return client, nil
}

// DeleteClient removes the record, then the disk photo file best-effort.
// Attendance rows are left in place.
func (s *clientService) DeleteClient(ctx context.Context, clientID uuid.UUID) error {
	client, err := s.GetClientByID(ctx, clientID)
	if err != nil {
		return err
	}

	if err := s.clientRepo.DeleteClient(ctx, s.db, clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if s.photos != nil && client.Photo != nil && !client.Photo.IsInline() {
		s.photos.RemovePhotoFile(ctx, client.Photo)
	}
	return nil
}
