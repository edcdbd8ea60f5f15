package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketType is one admission category of an event. Remaining is only ever
// changed through the inventory ledger's conditional updates.
type TicketType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Event     *Event    `json:"event,omitempty"`
	Type      string    `gorm:"not null" json:"type"`
	Price     int64     `gorm:"not null" json:"price"`
	Remaining int       `gorm:"not null;check:remaining >= 0" json:"quantity_available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ticket *TicketType) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
