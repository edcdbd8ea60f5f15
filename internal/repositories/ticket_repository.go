package repositories

import (
	"context"
	"fmt"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketRepository is the inventory ledger. Remaining counters are changed
// only by single conditional UPDATE statements, never read-modify-write.
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.TicketType) error {
	return translate(r.db.WithContext(ctx).Create(ticket).Error, "ticket")
}

func (r *TicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TicketType, error) {
	var ticket models.TicketType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error; err != nil {
		return nil, translate(err, "ticket")
	}
	return &ticket, nil
}

func (r *TicketRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.TicketType, error) {
	var tickets []models.TicketType
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tickets).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.TicketType, len(tickets))
	for _, t := range tickets {
		out[t.ID] = t
	}
	return out, nil
}

// Reserve decrements remaining by quantity if and only if enough is left.
func (r *TicketRepository) Reserve(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return domain.ValidationError{Field: "quantity", Msg: "must be greater than zero"}
	}

	result := r.db.WithContext(ctx).
		Model(&models.TicketType{}).
		Where("id = ? AND remaining >= ?", id, quantity).
		UpdateColumn("remaining", gorm.Expr("remaining - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("reserve ticket %s: %w", id, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var ticket models.TicketType
	if err := r.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&ticket).Error; err != nil {
		return translate(err, "ticket")
	}
	return domain.InsufficientInventoryError{TicketTypeID: id, Requested: quantity}
}

// Release returns previously reserved units to the pool.
func (r *TicketRepository) Release(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return domain.ValidationError{Field: "quantity", Msg: "must be greater than zero"}
	}

	result := r.db.WithContext(ctx).
		Model(&models.TicketType{}).
		Where("id = ?", id).
		UpdateColumn("remaining", gorm.Expr("remaining + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("release ticket %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "ticket"}
	}
	return nil
}
