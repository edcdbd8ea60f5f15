package services

import (
	"context"
	"time"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/farellandr/tixflow/internal/notify"
	"github.com/farellandr/tixflow/internal/repositories"
	"github.com/google/uuid"
)

// InventoryLedger reserves and releases ticket stock atomically.
type InventoryLedger interface {
	Create(ctx context.Context, ticket *models.TicketType) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TicketType, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.TicketType, error)
	Reserve(ctx context.Context, id uuid.UUID, quantity int) error
	Release(ctx context.Context, id uuid.UUID, quantity int) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order, applied *models.DiscountApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status domain.DeliveryStatus) error
	Redeem(ctx context.Context, record domain.QRCodeRecord, by uuid.UUID, at time.Time) error
}

type EventCatalog interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Event, error)
	Search(ctx context.Context, filter repositories.EventFilter) ([]models.Event, int64, error)
}

type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type DiscountStore interface {
	Create(ctx context.Context, discount *models.Discount) error
	FindByCode(ctx context.Context, code string) ([]models.Discount, error)
	SaveApplication(ctx context.Context, application *models.DiscountApplication) error
	FindApplication(ctx context.Context, paymentIntentID string) (*models.DiscountApplication, error)
}

type TicketIssuer interface {
	Issue(orderID, eventID, ticketTypeID uuid.UUID, quantity int) ([]domain.QRCodeRecord, error)
	Decode(data string) (domain.QRCodeRecord, error)
}

type DocumentRenderer interface {
	Render(ctx context.Context, order *models.Order, records []domain.QRCodeRecord) ([]byte, error)
}

type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Locker serialises create-order attempts for one payment confirmation.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Requester is the authenticated caller.
type Requester struct {
	ID   uuid.UUID
	Role string
}
