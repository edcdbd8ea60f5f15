package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores the order graph, one ticket unit per admitted person, and
// the usage of any discounts applied to the payment, in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, applied *models.DiscountApplication) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translate(err, "order")
		}

		for i := range order.Events {
			group := &order.Events[i]
			group.OrderID = order.ID
			if err := tx.Omit(clause.Associations).Create(group).Error; err != nil {
				return fmt.Errorf("create order event: %w", err)
			}

			for j := range group.Tickets {
				line := &group.Tickets[j]
				line.OrderEventID = group.ID
				line.OrderID = order.ID
				if err := tx.Omit(clause.Associations).Create(line).Error; err != nil {
					return fmt.Errorf("create order ticket: %w", err)
				}

				line.Units = make([]models.TicketUnit, 0, line.Quantity)
				for seq := 1; seq <= line.Quantity; seq++ {
					line.Units = append(line.Units, models.TicketUnit{
						OrderTicketID: line.ID,
						OrderID:       order.ID,
						EventID:       group.EventID,
						TicketTypeID:  line.TicketTypeID,
						Seq:           seq,
					})
				}
				if err := tx.Create(&line.Units).Error; err != nil {
					return fmt.Errorf("create ticket units: %w", err)
				}
			}
		}

		if applied == nil {
			return nil
		}
		for _, discounted := range applied.DiscountedTickets {
			err := tx.Model(&models.Discount{}).
				Where("code = ? AND event_id = ? AND ticket_type_id = ?",
					discounted.DiscountCode, discounted.EventID, discounted.TicketTypeID).
				UpdateColumn("used_count", gorm.Expr("used_count + ?", discounted.Quantity)).Error
			if err != nil {
				return fmt.Errorf("record discount usage: %w", err)
			}
		}
		return nil
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Events.Event").
		Preload("Events.Tickets.TicketType").
		Preload("Events.Tickets.Units").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, translate(err, "order")
	}
	return &order, nil
}

func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("payment_intent_id = ?", paymentIntentID).First(&order).Error; err != nil {
		return nil, translate(err, "order")
	}
	return &order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Events.Tickets.Units").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status domain.DeliveryStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("delivery_status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "order"}
	}
	return nil
}

// Redeem marks one ticket unit as used. The guard on used_at IS NULL makes
// concurrent redemptions of the same unit succeed exactly once.
func (r *OrderRepository) Redeem(ctx context.Context, record domain.QRCodeRecord, by uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.TicketUnit{}).
		Where("order_id = ? AND event_id = ? AND ticket_type_id = ? AND seq = ? AND used_at IS NULL",
			record.OrderID, record.EventID, record.TicketTypeID, record.SequenceIndex).
		Updates(map[string]interface{}{"used_at": at, "used_by": by})
	if result.Error != nil {
		return fmt.Errorf("redeem ticket: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TicketUnit{}).
		Where("order_id = ? AND event_id = ? AND ticket_type_id = ? AND seq = ?",
			record.OrderID, record.EventID, record.TicketTypeID, record.SequenceIndex).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.NotFoundError{Resource: "ticket"}
	}
	return domain.AlreadyUsedError{Index: record.SequenceIndex}
}
