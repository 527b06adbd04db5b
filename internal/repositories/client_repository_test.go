package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
)

var clientRowColumns = []string{
	"id", "name", "phone", "address", "email", "fee_submission_date", "monthly_fee", "trainer_id",
	"photo_path", "photo_data", "photo_content_type", "photo_uploaded_at", "created_at", "updated_at",
}

func TestClientRepository_GetClientByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	trainerID := uuid.New()
	feeDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("disk photo", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		rows := sqlmock.NewRows(clientRowColumns).AddRow(
			id.String(), "Aigerim", "+77011234567", "Abay 10", nil, feeDate, "15000.00", trainerID.String(),
			"uploads/1700000000000-a.png", nil, nil, nil, now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).WithArgs(id).WillReturnRows(rows)

		client, err := repo.GetClientByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Aigerim", client.Name)
		require.NotNil(t, client.TrainerID)
		assert.Equal(t, trainerID, *client.TrainerID)
		assert.True(t, client.MonthlyFee.Valid)
		assert.True(t, client.MonthlyFee.Decimal.Equal(decimal.NewFromInt(15000)))
		require.NotNil(t, client.Photo)
		assert.False(t, client.Photo.IsInline())
		assert.Equal(t, "uploads/1700000000000-a.png", client.Photo.Path)
		assert.Nil(t, client.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inline photo", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		rows := sqlmock.NewRows(clientRowColumns).AddRow(
			id.String(), "Aigerim", "+77011234567", "Abay 10", "a@b.kz", feeDate, nil, nil,
			nil, "aGVsbG8=", "image/png", now, now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).WithArgs(id).WillReturnRows(rows)

		client, err := repo.GetClientByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, client.TrainerID)
		assert.False(t, client.MonthlyFee.Valid)
		require.NotNil(t, client.Photo)
		assert.True(t, client.Photo.IsInline())
		assert.Equal(t, "image/png", client.Photo.ContentType)
		require.NotNil(t, client.Photo.UploadedAt)
		assert.Equal(t, now, *client.Photo.UploadedAt)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).WithArgs(id).
			WillReturnRows(sqlmock.NewRows(clientRowColumns))

		_, err := repo.GetClientByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClientRepository_GetClients(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	columns := append(append([]string{}, clientRowColumns...), "total_count")
	rows := sqlmock.NewRows(columns).
		AddRow(uuid.NewString(), "Aidar", "+77010000001", "Addr", nil, now, nil, nil, nil, nil, nil, nil, now, now, 12).
		AddRow(uuid.NewString(), "Aigerim", "+77010000002", "Addr", nil, now, nil, nil, nil, nil, nil, nil, now, now, 12)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (LOWER(name) LIKE $1 OR phone LIKE $1) ORDER BY name ASC LIMIT $2 OFFSET $3")).
		WithArgs("%ai%", 2, 2).
		WillReturnRows(rows)

	search := " Ai "
	clients, total, err := repo.GetClients(context.Background(), models.ClientFilters{Search: &search, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	assert.Equal(t, 12, total)
	assert.Nil(t, clients[0].Photo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepository_UpdateClientPhoto(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("path mode clears inline columns", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE clients SET")).
			WithArgs("uploads/x.png", nil, nil, nil, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateClientPhoto(ctx, db, id, &models.ClientPhoto{Path: "uploads/x.png"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inline mode clears path", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE clients SET")).
			WithArgs(nil, "aGVsbG8=", "image/png", at, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		photo := &models.ClientPhoto{Data: "aGVsbG8=", ContentType: "image/png", UploadedAt: &at}
		require.NoError(t, repo.UpdateClientPhoto(ctx, db, id, photo))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing client", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE clients SET")).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateClientPhoto(ctx, db, id, &models.ClientPhoto{Path: "uploads/x.png"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClientRepository_DeleteClient(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clients WHERE id = $1")).WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.DeleteClient(ctx, db, id))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clients WHERE id = $1")).WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.DeleteClient(ctx, db, id), ErrNotFound)
	})
}
