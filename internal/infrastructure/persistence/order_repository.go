package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nau/billing/internal/domain/billing"
	"github.com/nau/billing/internal/infrastructure/persistence/models"
)

// OrderRepository implements billing.OrderRepository using GORM.
// Orders are written by the storefront; this repository only reads.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByBasket returns the order placed for the basket
func (r *OrderRepository) FindByBasket(ctx context.Context, basketID int64) (*billing.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).Preload("Lines").Where("basket_id = ?", basketID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber returns the order with the given order number
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*billing.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).Preload("Lines").Where("number = ?", number).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ billing.OrderRepository = (*OrderRepository)(nil)
