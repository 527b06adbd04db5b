package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gym_crm_backend/internal/models"
)

// TrainerRepository defines the interface for trainer-related database operations.
type TrainerRepository interface {
	CreateTrainer(ctx context.Context, executor SQLExecutor, trainer *models.Trainer) error
	GetTrainerByID(ctx context.Context, id uuid.UUID) (*models.Trainer, error)
	GetTrainers(ctx context.Context) ([]models.Trainer, error)
	DeleteTrainer(ctx context.Context, executor SQLExecutor, id uuid.UUID) error
}

type trainerRepository struct {
	db *sql.DB
}

// NewTrainerRepository creates a new instance of TrainerRepository.
func NewTrainerRepository(db *sql.DB) TrainerRepository {
	return &trainerRepository{db: db}
}

const trainerColumns = `id, name, phone, specialization, created_at, updated_at`

func scanTrainer(row scanner) (*models.Trainer, error) {
	var t models.Trainer
	if err := row.Scan(&t.ID, &t.Name, &t.Phone, &t.Specialization, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trainerRepository) CreateTrainer(ctx context.Context, executor SQLExecutor, trainer *models.Trainer) error {
	query := `INSERT INTO trainers (id, name, phone, specialization, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	if trainer.ID == uuid.Nil {
		trainer.ID = uuid.New()
	}
	currentTime := time.Now().UTC()
	trainer.CreatedAt = currentTime
	trainer.UpdatedAt = currentTime

	_, err := executor.ExecContext(ctx, query,
		trainer.ID, trainer.Name, trainer.Phone, trainer.Specialization, trainer.CreatedAt, trainer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: creating trainer: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *trainerRepository) GetTrainerByID(ctx context.Context, id uuid.UUID) (*models.Trainer, error) {
	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE id = $1`
	t, err := scanTrainer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting trainer by ID %s: %v", ErrDatabaseError, id, err)
	}
	return t, nil
}

func (r *trainerRepository) GetTrainers(ctx context.Context) ([]models.Trainer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+trainerColumns+` FROM trainers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying trainers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	trainers := []models.Trainer{}
	for rows.Next() {
		t, err := scanTrainer(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning trainer: %v", ErrDatabaseError, err)
		}
		trainers = append(trainers, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trainer rows: %v", ErrDatabaseError, err)
	}
	return trainers, nil
}

// DeleteTrainer removes a trainer. Clients referencing it keep the dangling trainer_id.
func (r *trainerRepository) DeleteTrainer(ctx context.Context, executor SQLExecutor, id uuid.UUID) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM trainers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting trainer ID %s: %v", ErrDatabaseError, id, err)
	}
	return requireAffected(result, "deleting trainer ID "+id.String())
}
