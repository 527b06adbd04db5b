package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// MockClientRepository is a mock implementation of repositories.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) CreateClient(ctx context.Context, executor repositories.SQLExecutor, client *models.Client) error {
	args := m.Called(ctx, executor, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientRepository) GetClients(ctx context.Context, filters models.ClientFilters) ([]models.Client, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Client), args.Int(1), args.Error(2)
}

func (m *MockClientRepository) ListAllClients(ctx context.Context) ([]models.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Client), args.Error(1)
}

func (m *MockClientRepository) UpdateClient(ctx context.Context, executor repositories.SQLExecutor, client *models.Client) error {
	args := m.Called(ctx, executor, client)
	return args.Error(0)
}

func (m *MockClientRepository) UpdateClientPhoto(ctx context.Context, executor repositories.SQLExecutor, id uuid.UUID, photo *models.ClientPhoto) error {
	args := m.Called(ctx, executor, id, photo)
	return args.Error(0)
}

func (m *MockClientRepository) DeleteClient(ctx context.Context, executor repositories.SQLExecutor, id uuid.UUID) error {
	args := m.Called(ctx, executor, id)
	return args.Error(0)
}

// MockTrainerRepository is a mock implementation of repositories.TrainerRepository
type MockTrainerRepository struct {
	mock.Mock
}

func (m *MockTrainerRepository) CreateTrainer(ctx context.Context, executor repositories.SQLExecutor, trainer *models.Trainer) error {
	args := m.Called(ctx, executor, trainer)
	return args.Error(0)
}

func (m *MockTrainerRepository) GetTrainerByID(ctx context.Context, id uuid.UUID) (*models.Trainer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trainer), args.Error(1)
}

func (m *MockTrainerRepository) GetTrainers(ctx context.Context) ([]models.Trainer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trainer), args.Error(1)
}

func (m *MockTrainerRepository) DeleteTrainer(ctx context.Context, executor repositories.SQLExecutor, id uuid.UUID) error {
	args := m.Called(ctx, executor, id)
	return args.Error(0)
}

// MockAttendanceRepository is a mock implementation of repositories.AttendanceRepository
type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) CreateAttendance(ctx context.Context, executor repositories.SQLExecutor, attendance *models.Attendance) error {
	args := m.Called(ctx, executor, attendance)
	return args.Error(0)
}

func (m *MockAttendanceRepository) GetOpenAttendance(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) CloseOpenAttendance(ctx context.Context, executor repositories.SQLExecutor, clientID uuid.UUID, timeOut time.Time) (*models.Attendance, error) {
	args := m.Called(ctx, executor, clientID, timeOut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Attendance, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Attendance, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListAll(ctx context.Context) ([]models.Attendance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) DeleteByClientAndDateRange(ctx context.Context, executor repositories.SQLExecutor, clientID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, executor, clientID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthRepository is a mock implementation of repositories.AuthRepository
type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) CreateUser(ctx context.Context, executor repositories.SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	args := m.Called(ctx, executor, user, hashedPassword)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
