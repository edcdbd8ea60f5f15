// Package tickets issues one signed QR token per physical ticket unit.
package tickets

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// ImageSize is the edge length in pixels of generated QR images.
const ImageSize = 256

type payload struct {
	OrderID      uuid.UUID `json:"orderId"`
	EventID      uuid.UUID `json:"eventId"`
	TicketTypeID uuid.UUID `json:"ticketId"`
	Index        int       `json:"index"`
	Sig          string    `json:"sig,omitempty"`
}

type Issuer struct {
	secret string
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: secret}
}

// Issue returns one record per unit, indexed from 1 to quantity.
func (i *Issuer) Issue(orderID, eventID, ticketTypeID uuid.UUID, quantity int) ([]domain.QRCodeRecord, error) {
	if quantity <= 0 {
		return nil, domain.ValidationError{Field: "quantity", Msg: "must be greater than zero"}
	}

	records := make([]domain.QRCodeRecord, 0, quantity)
	for index := 1; index <= quantity; index++ {
		records = append(records, domain.QRCodeRecord{
			OrderID:       orderID,
			EventID:       eventID,
			TicketTypeID:  ticketTypeID,
			SequenceIndex: index,
		})
	}
	return records, nil
}

// Encode serialises a record to its canonical signed payload. The output is a
// pure function of the record and the secret.
func (i *Issuer) Encode(record domain.QRCodeRecord) (string, error) {
	p := payload{
		OrderID:      record.OrderID,
		EventID:      record.EventID,
		TicketTypeID: record.TicketTypeID,
		Index:        record.SequenceIndex,
	}
	if i.secret != "" {
		p.Sig = i.sign(p)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return string(data), nil
}

// Decode parses a scanned payload back into its record, rejecting payloads
// whose signature does not match.
func (i *Issuer) Decode(data string) (domain.QRCodeRecord, error) {
	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return domain.QRCodeRecord{}, domain.ValidationError{Field: "qr_data", Msg: "invalid QR code format", Err: err}
	}
	if p.OrderID == uuid.Nil || p.EventID == uuid.Nil || p.TicketTypeID == uuid.Nil || p.Index < 1 {
		return domain.QRCodeRecord{}, domain.ValidationError{Field: "qr_data", Msg: "invalid QR code format"}
	}
	if i.secret != "" && !helpers.ValidateSignature(i.secret, p.Sig, i.signedParts(p)...) {
		return domain.QRCodeRecord{}, domain.ValidationError{Field: "qr_data", Msg: "invalid QR code signature"}
	}

	return domain.QRCodeRecord{
		OrderID:       p.OrderID,
		EventID:       p.EventID,
		TicketTypeID:  p.TicketTypeID,
		SequenceIndex: p.Index,
	}, nil
}

// Image renders the record's payload as a PNG QR code.
func (i *Issuer) Image(record domain.QRCodeRecord) ([]byte, error) {
	data, err := i.Encode(record)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(data, qrcode.Medium, ImageSize)
	if err != nil {
		return nil, fmt.Errorf("generate qr image: %w", err)
	}
	return png, nil
}

func (i *Issuer) sign(p payload) string {
	return helpers.GenerateSignature(i.secret, i.signedParts(p)...)
}

func (i *Issuer) signedParts(p payload) []string {
	return []string{p.OrderID.String(), p.EventID.String(), p.TicketTypeID.String(), strconv.Itoa(p.Index)}
}
