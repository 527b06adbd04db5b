package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gym_crm_backend/internal/jobs"
	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = utils.RegisterValidators()
}

type MockClientService struct{ mock.Mock }

func (m *MockClientService) CreateClient(ctx context.Context, req services.CreateClientRequest) (*models.Client, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func (m *MockClientService) GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func (m *MockClientService) GetClients(ctx context.Context, page, pageSize int, search *string) ([]models.Client, int, error) {
	args := m.Called(ctx, page, pageSize, search)
	list, _ := args.Get(0).([]models.Client)
	return list, args.Int(1), args.Error(2)
}

func (m *MockClientService) UpdateClient(ctx context.Context, id uuid.UUID, req services.UpdateClientRequest) (*models.Client, error) {
	args := m.Called(ctx, id, req)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func (m *MockClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAttendanceService struct{ mock.Mock }

func (m *MockAttendanceService) TimeIn(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	args := m.Called(ctx, clientID)
	a, _ := args.Get(0).(*models.Attendance)
	return a, args.Error(1)
}

func (m *MockAttendanceService) GetOpenSession(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	args := m.Called(ctx, clientID)
	a, _ := args.Get(0).(*models.Attendance)
	return a, args.Error(1)
}

func (m *MockAttendanceService) TimeOut(ctx context.Context, clientID uuid.UUID) (*models.Attendance, error) {
	args := m.Called(ctx, clientID)
	a, _ := args.Get(0).(*models.Attendance)
	return a, args.Error(1)
}

func (m *MockAttendanceService) ListAttendances(ctx context.Context, clientID uuid.UUID) ([]models.Attendance, error) {
	args := m.Called(ctx, clientID)
	list, _ := args.Get(0).([]models.Attendance)
	return list, args.Error(1)
}

func (m *MockAttendanceService) PurgeToday(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttendanceService) ListToday(ctx context.Context) ([]models.Attendance, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Attendance)
	return list, args.Error(1)
}

type MockPhotoService struct{ mock.Mock }

func (m *MockPhotoService) Store(ctx context.Context, clientID uuid.UUID, data []byte, mimeType, filename string) (*models.Client, error) {
	args := m.Called(ctx, clientID, data, mimeType, filename)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func (m *MockPhotoService) Serve(ctx context.Context, clientID uuid.UUID) (*services.PhotoContent, error) {
	args := m.Called(ctx, clientID)
	p, _ := args.Get(0).(*services.PhotoContent)
	return p, args.Error(1)
}

func (m *MockPhotoService) RemovePhotoFile(ctx context.Context, photo *models.ClientPhoto) {
	m.Called(ctx, photo)
}

type MockTrainerService struct{ mock.Mock }

func (m *MockTrainerService) CreateTrainer(ctx context.Context, req services.CreateTrainerRequest) (*models.Trainer, error) {
	args := m.Called(ctx, req)
	t, _ := args.Get(0).(*models.Trainer)
	return t, args.Error(1)
}

func (m *MockTrainerService) GetTrainers(ctx context.Context) ([]models.Trainer, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Trainer)
	return list, args.Error(1)
}

func (m *MockTrainerService) DeleteTrainer(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) CreateUser(ctx context.Context, req services.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) LoginUser(ctx context.Context, req services.LoginRequest) (*services.AuthResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*services.AuthResponse)
	return r, args.Error(1)
}

func (m *MockAuthService) GetUserProfile(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type MockBackupRunner struct{ mock.Mock }

func (m *MockBackupRunner) RunOnce(ctx context.Context) (*jobs.BackupResult, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*jobs.BackupResult)
	return r, args.Error(1)
}

// perform sends a request through the engine and returns the recorder.
func perform(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performJSON(r http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	return perform(r, method, path, body, "application/json")
}

// errorCode extracts error.code from a RespondWithError body.
func errorCode(w *httptest.ResponseRecorder) string {
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Error.Code
}
