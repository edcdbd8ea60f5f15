package repositories

import (
	"context"

	"github.com/farellandr/tixflow/internal/models"
	"gorm.io/gorm"
)

type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(ctx context.Context, discount *models.Discount) error {
	return translate(r.db.WithContext(ctx).Create(discount).Error, "discount")
}

func (r *DiscountRepository) FindByCode(ctx context.Context, code string) ([]models.Discount, error) {
	var discounts []models.Discount
	if err := r.db.WithContext(ctx).Where("code = ?", code).Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r *DiscountRepository) SaveApplication(ctx context.Context, application *models.DiscountApplication) error {
	return translate(r.db.WithContext(ctx).Create(application).Error, "discount application")
}

// FindApplication returns the discounts applied to a payment. It never
// mutates usage counters; those are recorded when the order is created.
func (r *DiscountRepository) FindApplication(ctx context.Context, paymentIntentID string) (*models.DiscountApplication, error) {
	var application models.DiscountApplication
	err := r.db.WithContext(ctx).
		Preload("DiscountedTickets").
		Where("payment_intent_id = ?", paymentIntentID).
		First(&application).Error
	if err != nil {
		return nil, translate(err, "discount application")
	}
	return &application, nil
}
