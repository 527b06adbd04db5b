package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gym_crm_backend/internal/models"
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(ctx context.Context, executor SQLExecutor, client *models.Client) error
	GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetClients(ctx context.Context, filters models.ClientFilters) ([]models.Client, int, error) // Clients, total count, error
	ListAllClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, executor SQLExecutor, client *models.Client) error
	UpdateClientPhoto(ctx context.Context, executor SQLExecutor, id uuid.UUID, photo *models.ClientPhoto) error
	DeleteClient(ctx context.Context, executor SQLExecutor, id uuid.UUID) error
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, name, phone, address, email, fee_submission_date, monthly_fee, trainer_id,
	photo_path, photo_data, photo_content_type, photo_uploaded_at, created_at, updated_at`

// scanClient scans one row selected with clientColumns followed by any extra destinations.
func scanClient(row scanner, extra ...interface{}) (*models.Client, error) {
	var client models.Client
	var trainerID uuid.NullUUID
	var photoPath, photoData, photoType sql.NullString
	var photoAt sql.NullTime

	dest := []interface{}{
		&client.ID, &client.Name, &client.Phone, &client.Address, &client.Email,
		&client.FeeSubmissionDate, &client.MonthlyFee, &trainerID,
		&photoPath, &photoData, &photoType, &photoAt, &client.CreatedAt, &client.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if trainerID.Valid {
		client.TrainerID = &trainerID.UUID
	}
	switch {
	case photoData.Valid && photoData.String != "":
		photo := &models.ClientPhoto{Data: photoData.String, ContentType: photoType.String}
		if photoAt.Valid {
			photo.UploadedAt = &photoAt.Time
		}
		client.Photo = photo
	case photoPath.Valid && photoPath.String != "":
		client.Photo = &models.ClientPhoto{Path: photoPath.String}
	}
	return &client, nil
}

// photoArgs flattens a photo into its four nullable columns.
func photoArgs(photo *models.ClientPhoto) (path, data, contentType sql.NullString, uploadedAt sql.NullTime) {
	if photo.IsEmpty() {
		return
	}
	if photo.IsInline() {
		data = sql.NullString{String: photo.Data, Valid: true}
		contentType = sql.NullString{String: photo.ContentType, Valid: photo.ContentType != ""}
		if photo.UploadedAt != nil {
			uploadedAt = sql.NullTime{Time: *photo.UploadedAt, Valid: true}
		}
		return
	}
	path = sql.NullString{String: photo.Path, Valid: true}
	return
}

// CreateClient inserts a new client. A nil ID is replaced with a fresh UUID.
func (r *clientRepository) CreateClient(ctx context.Context, executor SQLExecutor, client *models.Client) error {
	query := `INSERT INTO clients (id, name, phone, address, email, fee_submission_date, monthly_fee, trainer_id,
	            photo_path, photo_data, photo_content_type, photo_uploaded_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	currentTime := time.Now().UTC()
	client.CreatedAt = currentTime
	client.UpdatedAt = currentTime

	path, data, contentType, uploadedAt := photoArgs(client.Photo)
	_, err := executor.ExecContext(ctx, query,
		client.ID, client.Name, client.Phone, client.Address, client.Email, client.FeeSubmissionDate,
		client.MonthlyFee, client.TrainerID, path, data, contentType, uploadedAt,
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: creating client: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting client by ID %s: %v", ErrDatabaseError, id, err)
	}
	return client, nil
}

// GetClients retrieves a list of clients with pagination and optional search.
func (r *clientRepository) GetClients(ctx context.Context, filters models.ClientFilters) ([]models.Client, int, error) {
	clients := []models.Client{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + `, COUNT(*) OVER() AS total_count FROM clients`)

	var args []interface{}
	argCount := 1

	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		searchPattern := "%" + strings.ToLower(strings.TrimSpace(*filters.Search)) + "%"
		queryBuilder.WriteString(fmt.Sprintf(" WHERE (LOWER(name) LIKE $%d OR phone LIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY name ASC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		client, err := scanClient(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}

	return clients, totalCount, nil
}

// ListAllClients returns every client, used by the background jobs.
func (r *clientRepository) ListAllClients(ctx context.Context) ([]models.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing all clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, nil
}

// UpdateClient updates the editable fields of an existing client. The photo is left alone.
func (r *clientRepository) UpdateClient(ctx context.Context, executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET
	            name = $1, phone = $2, address = $3, email = $4, fee_submission_date = $5,
	            monthly_fee = $6, trainer_id = $7, updated_at = $8
	          WHERE id = $9`

	client.UpdatedAt = time.Now().UTC()
	result, err := executor.ExecContext(ctx, query,
		client.Name, client.Phone, client.Address, client.Email, client.FeeSubmissionDate,
		client.MonthlyFee, client.TrainerID, client.UpdatedAt, client.ID,
	)
	if err != nil {
		if pqErr, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating client ID %s: %v", ErrDatabaseError, client.ID, err)
	}
	return requireAffected(result, "updating client ID "+client.ID.String())
}

// UpdateClientPhoto replaces the photo columns wholesale; a nil photo clears them.
func (r *clientRepository) UpdateClientPhoto(ctx context.Context, executor SQLExecutor, id uuid.UUID, photo *models.ClientPhoto) error {
	query := `UPDATE clients SET
	            photo_path = $1, photo_data = $2, photo_content_type = $3, photo_uploaded_at = $4, updated_at = $5
	          WHERE id = $6`

	path, data, contentType, uploadedAt := photoArgs(photo)
	result, err := executor.ExecContext(ctx, query, path, data, contentType, uploadedAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: updating photo for client ID %s: %v", ErrDatabaseError, id, err)
	}
	return requireAffected(result, "updating photo for client ID "+id.String())
}

// DeleteClient removes a client from the database. Attendance rows are kept.
func (r *clientRepository) DeleteClient(ctx context.Context, executor SQLExecutor, id uuid.UUID) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting client ID %s: %v", ErrDatabaseError, id, err)
	}
	return requireAffected(result, "deleting client ID "+id.String())
}

// requireAffected turns "zero rows touched" into ErrNotFound.
func requireAffected(result sql.Result, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, action, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
