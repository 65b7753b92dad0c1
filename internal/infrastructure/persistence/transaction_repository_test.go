package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nau/billing/internal/domain/billing"
	"github.com/nau/billing/internal/infrastructure/persistence/models"
)

func setupTransactionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.TransactionRecordModel{})
	require.NoError(t, err)

	return db
}

func TestTransactionRecordRepository_GetOrCreate(t *testing.T) {
	db := setupTransactionTestDB(t)
	repo := NewTransactionRecordRepository(db)
	ctx := context.Background()

	record, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, record.BasketID)
	assert.Equal(t, int64(42), *record.BasketID)
	assert.Equal(t, billing.TransactionStateToBeSent, record.State)

	// Same basket again returns the existing row, not a second one
	again, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.TransactionRecordModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRecordRepository_GetOrCreate_DistinctBaskets(t *testing.T) {
	db := setupTransactionTestDB(t)
	repo := NewTransactionRecordRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, 2)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestTransactionRecordRepository_GetOrCreate_PersistsNullJSON(t *testing.T) {
	db := setupTransactionTestDB(t)
	repo := NewTransactionRecordRepository(db)

	_, err := repo.GetOrCreate(context.Background(), 42)
	require.NoError(t, err)

	// A fresh record has no request or response yet. The columns must be
	// NULL, not the empty string, which postgres rejects as jsonb.
	var model models.TransactionRecordModel
	require.NoError(t, db.Where("basket_id = ?", 42).First(&model).Error)
	assert.Nil(t, model.RequestJSON)
	assert.Nil(t, model.ResponseJSON)
}

func TestTransactionRecordRepository_FindByBasket_NotFound(t *testing.T) {
	db := setupTransactionTestDB(t)
	repo := NewTransactionRecordRepository(db)

	_, err := repo.FindByBasket(context.Background(), 999)
	assert.ErrorIs(t, err, billing.ErrRecordNotFound)
}

func TestTransactionRecordRepository_Save_RoundTrip(t *testing.T) {
	db := setupTransactionTestDB(t)
	repo := NewTransactionRecordRepository(db)
	ctx := context.Background()

	record, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)

	record.Request = &billing.TransactionPayload{
		TransactionID:   "NAU-100042",
		TransactionType: "credit",
		ClientName:      "Maria Santos",
		Email:           "maria@example.com",
	}
	record.ApplyOutcome(201, []byte(`{"id":"NAU-100042"}`))
	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.FindByBasket(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, billing.TransactionStateSentWithSuccess, loaded.State)
	require.NotNil(t, loaded.Request)
	assert.Equal(t, "NAU-100042", loaded.Request.TransactionID)
	assert.JSONEq(t, `{"id":"NAU-100042"}`, string(loaded.Response))
}

func TestTransactionRecordRepository_FindRetryable(t *testing.T) {
	db := setupTransactionTestDB(t)
	repo := NewTransactionRecordRepository(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-time.Hour)
	recent := time.Now().UTC()

	insert := func(basketID int64, state billing.TransactionState, createdAt time.Time) {
		record := billing.NewTransactionRecord(basketID)
		record.State = state
		record.CreatedAt = createdAt
		record.UpdatedAt = createdAt
		var model models.TransactionRecordModel
		model.FromDomain(record)
		require.NoError(t, db.Create(&model).Error)
	}

	insert(1, billing.TransactionStateToBeSent, old)
	insert(2, billing.TransactionStateSentWithError, old)
	insert(3, billing.TransactionStateSentWithSuccess, old)
	insert(4, billing.TransactionStateToBeSent, recent)

	cutoff := time.Now().UTC().Add(-5 * time.Minute)
	records, err := repo.FindRetryable(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Ordered oldest first, successes and too-recent rows excluded
	assert.Equal(t, int64(1), *records[0].BasketID)
	assert.Equal(t, int64(2), *records[1].BasketID)
}
