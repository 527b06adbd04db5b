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

// AttendanceRepository defines the interface for attendance-related database operations.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, executor SQLExecutor, attendance *models.Attendance) error
	GetOpenAttendance(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error)
	CloseOpenAttendance(ctx context.Context, executor SQLExecutor, clientID uuid.UUID, timeOut time.Time) (*models.Attendance, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Attendance, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Attendance, error)
	ListAll(ctx context.Context) ([]models.Attendance, error)
	DeleteByClientAndDateRange(ctx context.Context, executor SQLExecutor, clientID uuid.UUID, from, to time.Time) (int64, error)
}

type attendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, client_id, time_in, time_out, date, created_at`

func scanAttendance(row scanner) (*models.Attendance, error) {
	var a models.Attendance
	var timeOut sql.NullTime
	if err := row.Scan(&a.ID, &a.ClientID, &a.TimeIn, &timeOut, &a.Date, &a.CreatedAt); err != nil {
		return nil, err
	}
	if timeOut.Valid {
		a.TimeOut = &timeOut.Time
	}
	return &a, nil
}

func (r *attendanceRepository) queryAttendances(ctx context.Context, action, query string, args ...interface{}) ([]models.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
	}
	defer rows.Close()

	attendances := []models.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning attendance: %v", ErrDatabaseError, err)
		}
		attendances = append(attendances, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating attendance rows: %v", ErrDatabaseError, err)
	}
	return attendances, nil
}

// CreateAttendance inserts a new session. The partial unique index
// attendances_one_open_session turns a second open session into ErrDuplicateKey.
func (r *attendanceRepository) CreateAttendance(ctx context.Context, executor SQLExecutor, attendance *models.Attendance) error {
	query := `INSERT INTO attendances (id, client_id, time_in, time_out, date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	if attendance.ID == uuid.Nil {
		attendance.ID = uuid.New()
	}
	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = attendance.TimeIn
	}

	_, err := executor.ExecContext(ctx, query,
		attendance.ID, attendance.ClientID, attendance.TimeIn, attendance.TimeOut, attendance.Date, attendance.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: creating attendance for client %s: %v", ErrDatabaseError, attendance.ClientID, err)
	}
	return nil
}

// GetOpenAttendance returns the session with no time_out for the client.
func (r *attendanceRepository) GetOpenAttendance(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances
	          WHERE client_id = $1 AND time_out IS NULL
	          ORDER BY time_in DESC LIMIT 1`
	a, err := scanAttendance(r.db.QueryRowContext(ctx, query, clientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting open attendance for client %s: %v", ErrDatabaseError, clientID, err)
	}
	return a, nil
}

// CloseOpenAttendance stamps time_out on the open session in a single statement.
func (r *attendanceRepository) CloseOpenAttendance(ctx context.Context, executor SQLExecutor, clientID uuid.UUID, timeOut time.Time) (*models.Attendance, error) {
	query := `UPDATE attendances SET time_out = $1
	          WHERE client_id = $2 AND time_out IS NULL
	          RETURNING ` + attendanceColumns
	a, err := scanAttendance(executor.QueryRowContext(ctx, query, timeOut, clientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: closing attendance for client %s: %v", ErrDatabaseError, clientID, err)
	}
	return a, nil
}

// ListByClient returns the client's sessions, newest first.
func (r *attendanceRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE client_id = $1 ORDER BY created_at DESC`
	return r.queryAttendances(ctx, "listing attendances for client "+clientID.String(), query, clientID)
}

// ListByDateRange returns every session whose date lies in [from, to).
func (r *attendanceRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE date >= $1 AND date < $2 ORDER BY time_in DESC`
	return r.queryAttendances(ctx, "listing attendances by date", query, from, to)
}

// ListAll returns every attendance row, used by the backup job.
func (r *attendanceRepository) ListAll(ctx context.Context) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances ORDER BY created_at ASC`
	return r.queryAttendances(ctx, "listing all attendances", query)
}

// DeleteByClientAndDateRange removes the client's sessions whose date lies in [from, to).
func (r *attendanceRepository) DeleteByClientAndDateRange(ctx context.Context, executor SQLExecutor, clientID uuid.UUID, from, to time.Time) (int64, error) {
	query := `DELETE FROM attendances WHERE client_id = $1 AND date >= $2 AND date < $3`
	result, err := executor.ExecContext(ctx, query, clientID, from, to)
	if err != nil {
		return 0, fmt.Errorf("%w: purging attendances for client %s: %v", ErrDatabaseError, clientID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for purging client %s: %v", ErrDatabaseError, clientID, err)
	}
	return deleted, nil
}
