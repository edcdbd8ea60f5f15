package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	FirstName       string       `gorm:"not null" json:"first_name"`
	LastName        string       `gorm:"not null" json:"last_name"`
	Email           string       `gorm:"not null" json:"email"`
	TotalPrice      int64        `gorm:"not null" json:"total_price"` // minor units, see domain.MinorUnitExponent
	Currency        string       `json:"currency"`
	PaymentStatus   string       `gorm:"not null" json:"payment_status"`
	PaymentIntentID string       `gorm:"not null;uniqueIndex" json:"payment_intent_id"`
	PaymentMethodID string       `json:"payment_method_id"`
	DeliveryStatus  string       `gorm:"not null;default:pending" json:"delivery_status"`
	Events          []OrderEvent `json:"events"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (order *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return
}

// OrderEvent groups the ticket lines bought for one event.
type OrderEvent struct {
	ID      uuid.UUID     `gorm:"type:uuid;primaryKey" json:"-"`
	OrderID uuid.UUID     `gorm:"type:uuid;not null;index" json:"-"`
	EventID uuid.UUID     `gorm:"type:uuid;not null" json:"event_id"`
	Event   *Event        `json:"event,omitempty"`
	Tickets []OrderTicket `json:"tickets"`
}

func (group *OrderEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	return
}

type OrderTicket struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"-"`
	OrderEventID uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	OrderID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	TicketTypeID uuid.UUID    `gorm:"type:uuid;not null" json:"ticket_id"`
	TicketType   *TicketType  `json:"ticket,omitempty"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	Units        []TicketUnit `json:"-"`
}

func (line *OrderTicket) BeforeCreate(tx *gorm.DB) (err error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return
}

// UsedMarkers lists the redeemed sequence indices of the line in ascending order.
func (line OrderTicket) UsedMarkers() []int {
	used := []int{}
	for _, unit := range line.Units {
		if unit.UsedAt != nil {
			used = append(used, unit.Seq)
		}
	}
	sort.Ints(used)
	return used
}

// TicketUnit is one physical ticket. A unit is redeemed at most once: UsedAt
// only moves from NULL to a timestamp.
type TicketUnit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderTicketID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_unit"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_unit"`
	TicketTypeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_unit"`
	Seq           int       `gorm:"not null;uniqueIndex:idx_ticket_unit"`
	UsedAt        *time.Time
	UsedBy        *uuid.UUID `gorm:"type:uuid"`
}

func (unit *TicketUnit) BeforeCreate(tx *gorm.DB) (err error) {
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	return
}
