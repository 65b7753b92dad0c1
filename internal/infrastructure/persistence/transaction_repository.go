package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nau/billing/internal/domain/billing"
	"github.com/nau/billing/internal/infrastructure/persistence/models"
)

// TransactionRecordRepository implements billing.TransactionRepository using GORM
type TransactionRecordRepository struct {
	db *gorm.DB
}

// NewTransactionRecordRepository creates a new transaction record repository
func NewTransactionRecordRepository(db *gorm.DB) *TransactionRecordRepository {
	return &TransactionRecordRepository{db: db}
}

// GetOrCreate returns the record for the basket, inserting a fresh TO_BE_SENT
// one when none exists. The unique index on basket_id decides races between
// concurrent callers: the loser re-reads the winner's row.
func (r *TransactionRecordRepository) GetOrCreate(ctx context.Context, basketID int64) (*billing.TransactionRecord, error) {
	record, err := r.FindByBasket(ctx, basketID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, billing.ErrRecordNotFound) {
		return nil, err
	}

	fresh := billing.NewTransactionRecord(basketID)
	now := time.Now().UTC()
	fresh.CreatedAt = now
	fresh.UpdatedAt = now

	var model models.TransactionRecordModel
	model.FromDomain(fresh)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.FindByBasket(ctx, basketID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBasket returns the record attached to the basket
func (r *TransactionRecordRepository) FindByBasket(ctx context.Context, basketID int64) (*billing.TransactionRecord, error) {
	var model models.TransactionRecordModel
	err := r.db.WithContext(ctx).Where("basket_id = ?", basketID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrRecordNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists the record's current state, request and response
func (r *TransactionRecordRepository) Save(ctx context.Context, record *billing.TransactionRecord) error {
	record.UpdatedAt = time.Now().UTC()
	var model models.TransactionRecordModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindRetryable returns records still worth resending: never sent or failed,
// and old enough that the synchronous checkout path is not racing with us.
func (r *TransactionRecordRepository) FindRetryable(ctx context.Context, createdBefore time.Time) ([]*billing.TransactionRecord, error) {
	var rows []models.TransactionRecordModel
	err := r.db.WithContext(ctx).
		Where("state IN ? AND created_at <= ?",
			[]string{billing.TransactionStateToBeSent.String(), billing.TransactionStateSentWithError.String()},
			createdBefore).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]*billing.TransactionRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToDomain())
	}
	return records, nil
}

var _ billing.TransactionRepository = (*TransactionRecordRepository)(nil)
