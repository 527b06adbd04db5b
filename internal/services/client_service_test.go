package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

type recordingRemover struct {
	removed []*models.ClientPhoto
}

func (r *recordingRemover) RemovePhotoFile(_ context.Context, photo *models.ClientPhoto) {
	r.removed = append(r.removed, photo)
}

func validCreateRequest() CreateClientRequest {
	return CreateClientRequest{
		Name:              "Aigerim Sarsenova",
		Phone:             "+7 701 123 4567",
		Address:           "Abay 10, Almaty",
		FeeSubmissionDate: "2026-01-15",
	}
}

func TestClientService_CreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with parsed fee date and fee", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		svc := NewClientService(clientRepo, new(MockTrainerRepository), nil, nil)

		req := validCreateRequest()
		fee := decimal.RequireFromString("15000.50")
		req.MonthlyFee = &fee

		clientRepo.On("CreateClient", ctx, mock.Anything, mock.MatchedBy(func(c *models.Client) bool {
			return c.Name == "Aigerim Sarsenova" &&
				c.FeeSubmissionDate.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) &&
				c.MonthlyFee.Valid && c.MonthlyFee.Decimal.Equal(fee) &&
				c.TrainerID == nil
		})).Return(nil).Once()

		client, err := svc.CreateClient(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "+7 701 123 4567", client.Phone)
		clientRepo.AssertExpectations(t)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		svc := NewClientService(new(MockClientRepository), new(MockTrainerRepository), nil, nil)
		req := validCreateRequest()
		req.Name = "   "

		_, err := svc.CreateClient(ctx, req)
		assert.ErrorIs(t, err, ErrClientValidation)
	})

	t.Run("bad fee date rejected", func(t *testing.T) {
		svc := NewClientService(new(MockClientRepository), new(MockTrainerRepository), nil, nil)
		req := validCreateRequest()
		req.FeeSubmissionDate = "15/01/2026"

		_, err := svc.CreateClient(ctx, req)
		assert.ErrorIs(t, err, ErrDateFormat)
	})

	t.Run("negative fee rejected", func(t *testing.T) {
		svc := NewClientService(new(MockClientRepository), new(MockTrainerRepository), nil, nil)
		req := validCreateRequest()
		fee := decimal.NewFromInt(-1)
		req.MonthlyFee = &fee

		_, err := svc.CreateClient(ctx, req)
		assert.ErrorIs(t, err, ErrClientValidation)
	})

	t.Run("unknown trainer rejected", func(t *testing.T) {
		trainerRepo := new(MockTrainerRepository)
		svc := NewClientService(new(MockClientRepository), trainerRepo, nil, nil)

		trainerID := uuid.New()
		raw := trainerID.String()
		req := validCreateRequest()
		req.TrainerID = &raw
		trainerRepo.On("GetTrainerByID", ctx, trainerID).Return(nil, repositories.ErrNotFound).Once()

		_, err := svc.CreateClient(ctx, req)
		assert.ErrorIs(t, err, ErrTrainerNotFound)
	})
}

func TestClientService_UpdateClient(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	trainerID := uuid.New()

	existing := func() *models.Client {
		return &models.Client{
			ID: id, Name: "Old Name", Phone: "+77010000000", Address: "Old Address",
			FeeSubmissionDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), TrainerID: &trainerID,
		}
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		svc := NewClientService(clientRepo, new(MockTrainerRepository), nil, nil)

		newName := "New Name"
		clientRepo.On("GetClientByID", ctx, id).Return(existing(), nil).Once()
		clientRepo.On("UpdateClient", ctx, mock.Anything, mock.MatchedBy(func(c *models.Client) bool {
			return c.Name == "New Name" && c.Address == "Old Address" && c.TrainerID != nil && *c.TrainerID == trainerID
		})).Return(nil).Once()

		client, err := svc.UpdateClient(ctx, id, UpdateClientRequest{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, "New Name", client.Name)
		clientRepo.AssertExpectations(t)
	})

	t.Run("empty trainer id unassigns", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		svc := NewClientService(clientRepo, new(MockTrainerRepository), nil, nil)

		empty := ""
		clientRepo.On("GetClientByID", ctx, id).Return(existing(), nil).Once()
		clientRepo.On("UpdateClient", ctx, mock.Anything, mock.MatchedBy(func(c *models.Client) bool {
			return c.TrainerID == nil
		})).Return(nil).Once()

		_, err := svc.UpdateClient(ctx, id, UpdateClientRequest{TrainerID: &empty})
		require.NoError(t, err)
	})

	t.Run("unknown client", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		svc := NewClientService(clientRepo, new(MockTrainerRepository), nil, nil)
		clientRepo.On("GetClientByID", ctx, id).Return(nil, repositories.ErrNotFound).Once()

		_, err := svc.UpdateClient(ctx, id, UpdateClientRequest{})
		assert.ErrorIs(t, err, ErrClientNotFound)
	})
}

func TestClientService_DeleteClient(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("removes disk photo after delete", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		remover := &recordingRemover{}
		svc := NewClientService(clientRepo, new(MockTrainerRepository), remover, nil)

		photo := &models.ClientPhoto{Path: "uploads/1-a.png"}
		clientRepo.On("GetClientByID", ctx, id).Return(&models.Client{ID: id, Photo: photo}, nil).Once()
		clientRepo.On("DeleteClient", ctx, mock.Anything, id).Return(nil).Once()

		require.NoError(t, svc.DeleteClient(ctx, id))
		require.Len(t, remover.removed, 1)
		assert.Equal(t, photo, remover.removed[0])
	})

	t.Run("inline photo needs no cleanup", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		remover := &recordingRemover{}
		svc := NewClientService(clientRepo, new(MockTrainerRepository), remover, nil)

		photo := &models.ClientPhoto{Data: "aGk=", ContentType: "image/png"}
		clientRepo.On("GetClientByID", ctx, id).Return(&models.Client{ID: id, Photo: photo}, nil).Once()
		clientRepo.On("DeleteClient", ctx, mock.Anything, id).Return(nil).Once()

		require.NoError(t, svc.DeleteClient(ctx, id))
		assert.Empty(t, remover.removed)
	})

	t.Run("unknown client", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		svc := NewClientService(clientRepo, new(MockTrainerRepository), nil, nil)
		clientRepo.On("GetClientByID", ctx, id).Return(nil, repositories.ErrNotFound).Once()

		assert.ErrorIs(t, svc.DeleteClient(ctx, id), ErrClientNotFound)
	})
}

func TestClientService_GetClients_Paging(t *testing.T) {
	ctx := context.Background()
	clientRepo := new(MockClientRepository)
	svc := NewClientService(clientRepo, new(MockTrainerRepository), nil, nil)

	clientRepo.On("GetClients", ctx, models.ClientFilters{Page: 1, PageSize: 100}).Return([]models.Client{}, 0, nil).Once()

	_, _, err := svc.GetClients(ctx, 0, 500, nil)
	require.NoError(t, err)
	clientRepo.AssertExpectations(t)
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID(" " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("42")
	assert.ErrorIs(t, err, ErrInvalidID)
}
