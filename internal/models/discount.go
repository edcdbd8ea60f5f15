package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Discount struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code              string     `gorm:"not null;uniqueIndex:idx_discount_code" json:"code"`
	EventID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_discount_code" json:"event_id"`
	TicketTypeID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_discount_code" json:"ticket_id"`
	DiscountPerTicket int64      `gorm:"not null" json:"discount_per_ticket"`
	UsedCount         int        `gorm:"not null;default:0" json:"used_count"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (discount *Discount) BeforeCreate(tx *gorm.DB) (err error) {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	return
}

// DiscountApplication records the discounts applied at checkout for one
// payment confirmation.
type DiscountApplication struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentIntentID   string             `gorm:"not null;uniqueIndex" json:"payment_intent_id"`
	DiscountedTickets []DiscountedTicket `json:"discounted_tickets"`
	CreatedAt         time.Time          `json:"created_at"`
}

func (application *DiscountApplication) BeforeCreate(tx *gorm.DB) (err error) {
	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	return
}

type DiscountedTicket struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	DiscountApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	EventID               uuid.UUID `gorm:"type:uuid;not null" json:"event_id"`
	TicketTypeID          uuid.UUID `gorm:"type:uuid;not null" json:"ticket_id"`
	OriginalPrice         int64     `json:"original_price"`
	DiscountPerTicket     int64     `json:"discount_per_ticket"`
	NewPrice              int64     `json:"new_price"`
	Quantity              int       `json:"quantity"`
	DiscountCode          string    `json:"discount_code"`
}

func (ticket *DiscountedTicket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
