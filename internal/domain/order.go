package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending        PaymentStatus = "pending"
	PaymentRequiresAction PaymentStatus = "requires_action"
	PaymentSucceeded      PaymentStatus = "succeeded"
	PaymentFailed         PaymentStatus = "failed"
	PaymentCanceled       PaymentStatus = "canceled"
	PaymentUnknown        PaymentStatus = "unknown"
)

// ManifestEntry is one row of the ticket-detail manifest embedded in a
// payment confirmation.
type ManifestEntry struct {
	EventID      uuid.UUID `json:"eventId"`
	TicketTypeID uuid.UUID `json:"ticketId"`
	Quantity     int       `json:"quantity"`
}

// PaymentConfirmation is the provider-issued record for a charge. Amount is in
// minor currency units as defined by MinorUnitExponent (whole rupiah for IDR).
type PaymentConfirmation struct {
	ID              string
	Status          PaymentStatus
	Amount          int64
	Currency        string
	BuyerID         string
	Manifest        []ManifestEntry
	PaymentMethodID string
	Created         time.Time
}

type BillingAddress struct {
	City       *string `json:"city"`
	Country    *string `json:"country"`
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	PostalCode *string `json:"postal_code"`
	State      *string `json:"state"`
}

type PaymentMethod struct {
	ID       string         `json:"id"`
	Brand    string         `json:"brand"`
	ExpMonth string         `json:"exp_month"`
	ExpYear  string         `json:"exp_year"`
	Last4    string         `json:"last4"`
	Billing  BillingAddress `json:"billing_address"`
	HasCard  bool           `json:"-"`
}

// QRCodeRecord identifies one physical ticket unit. Sequence indices start at 1.
type QRCodeRecord struct {
	OrderID       uuid.UUID
	EventID       uuid.UUID
	TicketTypeID  uuid.UUID
	SequenceIndex int
}

// Stage is a state of the order workflow.
type Stage string

const (
	StageValidatingPayment  Stage = "validating_payment"
	StageReservingInventory Stage = "reserving_inventory"
	StagePersistingOrder    Stage = "persisting_order"
	StageIssuingQRCodes     Stage = "issuing_qr_codes"
	StageRenderingDocument  Stage = "rendering_document"
	StageNotifying          Stage = "notifying"
	StageDone               Stage = "done"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)
