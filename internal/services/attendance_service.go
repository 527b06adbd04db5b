package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"
)

var (
	ErrSessionAlreadyOpen = errors.New("client already has an open attendance session")
	ErrNoOpenSession      = errors.New("client has no open attendance session")
)

// AttendanceService tracks client visits. A client has at most one open
// session (time_out unset) at any moment.
type AttendanceService interface {
	TimeIn(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error)
	GetOpenSession(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error)
	TimeOut(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error)
	ListAttendances(ctx context.Context, clientID uuid.UUID) ([]models.Attendance, error)
	PurgeToday(ctx context.Context, clientID uuid.UUID) (int64, error)
	ListToday(ctx context.Context) ([]models.Attendance, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	db             *sql.DB
	now            func() time.Time
}

// NewAttendanceService creates a new instance of AttendanceService. A nil clock means time.Now.
func NewAttendanceService(repo repositories.AttendanceRepository, db *sql.DB, clock func() time.Time) AttendanceService {
	if clock == nil {
		clock = time.Now
	}
	return &attendanceService{attendanceRepo: repo, db: db, now: clock}
}

// DayBoundsUTC returns [00:00 UTC of now's UTC day, 00:00 UTC of the next day).
func DayBoundsUTC(now time.Time) (time.Time, time.Time) {
	u := now.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// TimeIn opens a session. The client record is not looked up.
func (s *attendanceService) TimeIn(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	open, err := s.attendanceRepo.GetOpenAttendance(ctx, clientID)
	if err == nil && open != nil {
		return nil, ErrSessionAlreadyOpen
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check open session: %w", err)
	}

	now := s.now().UTC()
	attendance := &models.Attendance{
		ClientID:  clientID,
		TimeIn:    now,
		Date:      now,
		CreatedAt: now,
	}
	if err := s.attendanceRepo.CreateAttendance(ctx, s.db, attendance); err != nil {
		// lost a race against a concurrent TimeIn
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSessionAlreadyOpen
		}
		return nil, fmt.Errorf("failed to record time in: %w", err)
	}

	utils.LogDebug("Client timed in", map[string]interface{}{"client_id": clientID.String(), "attendance_id": attendance.ID.String()})
	return attendance, nil
}

func (s *attendanceService) GetOpenSession(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	open, err := s.attendanceRepo.GetOpenAttendance(ctx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenSession
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return open, nil
}

// TimeOut closes the open session. Without one nothing is written.
func (s *attendanceService) TimeOut(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	closed, err := s.attendanceRepo.CloseOpenAttendance(ctx, s.db, clientID, s.now().UTC())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenSession
		}
		return nil, fmt.Errorf("failed to record time out: %w", err)
	}
	return closed, nil
}

func (s *attendanceService) ListAttendances(ctx context.Context, clientID uuid.UUID) ([]models.Attendance, error) {
	list, err := s.attendanceRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	return list, nil
}

// PurgeToday deletes the client's sessions dated within the current UTC day.
func (s *attendanceService) PurgeToday(ctx context.Context, clientID uuid.UUID) (int64, error) {
	from, to := DayBoundsUTC(s.now())
	deleted, err := s.attendanceRepo.DeleteByClientAndDateRange(ctx, s.db, clientID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to purge today's attendances: %w", err)
	}
	utils.LogInfo("Purged today's attendances", map[string]interface{}{"client_id": clientID.String(), "deleted": deleted})
	return deleted, nil
}

// ListToday returns every session dated within the current UTC day.
func (s *attendanceService) ListToday(ctx context.Context) ([]models.Attendance, error) {
	from, to := DayBoundsUTC(s.now())
	list, err := s.attendanceRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's attendances: %w", err)
	}
	return list, nil
}
