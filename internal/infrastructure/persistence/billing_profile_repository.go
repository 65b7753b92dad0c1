package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nau/billing/internal/domain/billing"
	"github.com/nau/billing/internal/infrastructure/persistence/models"
)

// BillingProfileRepository implements billing.BillingProfileRepository using GORM
type BillingProfileRepository struct {
	db *gorm.DB
}

// NewBillingProfileRepository creates a new billing profile repository
func NewBillingProfileRepository(db *gorm.DB) *BillingProfileRepository {
	return &BillingProfileRepository{db: db}
}

// FindByBasket returns the billing profile attached to the basket
func (r *BillingProfileRepository) FindByBasket(ctx context.Context, basketID int64) (*billing.BillingProfile, error) {
	var model models.BillingProfileModel
	err := r.db.WithContext(ctx).Where("basket_id = ?", basketID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrProfileNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the profile. There is at most one profile per basket, so a
// second save for the same basket replaces the first.
func (r *BillingProfileRepository) Save(ctx context.Context, profile *billing.BillingProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	var model models.BillingProfileModel
	model.FromDomain(profile)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "basket_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "line1", "line2", "line3", "line4",
				"state", "postal_code", "country_code", "vatin", "updated_at",
			}),
		}).
		Create(&model).Error
}

var _ billing.BillingProfileRepository = (*BillingProfileRepository)(nil)
