package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/google/uuid"
	"github.com/xendit/xendit-go/v6"
	"github.com/xendit/xendit-go/v6/common"
)

const dependencyName = "payment provider"

// XenditProvider reads payment requests and payment methods through the
// Xendit API.
type XenditProvider struct {
	client *xendit.APIClient
}

func NewXenditProvider(client *xendit.APIClient) *XenditProvider {
	return &XenditProvider{client: client}
}

func (p *XenditProvider) GetConfirmation(ctx context.Context, id string) (*domain.PaymentConfirmation, error) {
	pr, resp, xerr := p.client.PaymentRequestApi.GetPaymentRequestByID(ctx, id).Execute()
	if xerr != nil {
		return nil, classify(ctx, resp, xerr, "payment confirmation")
	}

	raw, err := json.Marshal(pr)
	if err != nil {
		return nil, domain.DependencyError{Dependency: dependencyName, Err: err}
	}
	return decodePaymentRequest(raw)
}

func (p *XenditProvider) GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	pm, resp, xerr := p.client.PaymentMethodApi.GetPaymentMethodByID(ctx, id).Execute()
	if xerr != nil {
		return nil, classify(ctx, resp, xerr, "payment method")
	}

	raw, err := json.Marshal(pm)
	if err != nil {
		return nil, domain.DependencyError{Dependency: dependencyName, Err: err}
	}
	return decodePaymentMethod(raw)
}

func classify(ctx context.Context, resp *http.Response, xerr *common.XenditSdkError, resource string) error {
	if ctx.Err() != nil {
		return domain.DependencyError{Dependency: dependencyName, Timeout: true, Err: ctx.Err()}
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return domain.NotFoundError{Resource: resource}
	}
	return domain.DependencyError{Dependency: dependencyName, Err: fmt.Errorf("%s", xerr.Error())}
}

type xenditPaymentRequest struct {
	ID            string                 `json:"id"`
	Status        string                 `json:"status"`
	Amount        *float64               `json:"amount"`
	Currency      string                 `json:"currency"`
	Metadata      map[string]interface{} `json:"metadata"`
	PaymentMethod *struct {
		ID string `json:"id"`
	} `json:"payment_method"`
	Created string `json:"created"`
}

func decodePaymentRequest(raw []byte) (*domain.PaymentConfirmation, error) {
	var pr xenditPaymentRequest
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, domain.DependencyError{Dependency: dependencyName, Err: fmt.Errorf("decode payment request: %w", err)}
	}

	confirmation := &domain.PaymentConfirmation{
		ID:       pr.ID,
		Status:   mapStatus(pr.Status),
		Currency: pr.Currency,
		BuyerID:  metadataString(pr.Metadata, "userId", "buyerId", "buyer_id"),
	}
	if pr.Amount != nil {
		confirmation.Amount = domain.ToMinorUnits(*pr.Amount, pr.Currency)
	}
	if pr.PaymentMethod != nil {
		confirmation.PaymentMethodID = pr.PaymentMethod.ID
	}
	if pr.Created != "" {
		if created, err := time.Parse(time.RFC3339, pr.Created); err == nil {
			confirmation.Created = created
		}
	}

	manifest, err := decodeManifest(pr.Metadata["allTicketsDetails"])
	if err != nil {
		return nil, err
	}
	confirmation.Manifest = manifest
	return confirmation, nil
}

func mapStatus(status string) domain.PaymentStatus {
	switch strings.ToUpper(status) {
	case "SUCCEEDED":
		return domain.PaymentSucceeded
	case "PENDING", "AWAITING_CAPTURE":
		return domain.PaymentPending
	case "REQUIRES_ACTION":
		return domain.PaymentRequiresAction
	case "FAILED":
		return domain.PaymentFailed
	case "CANCELED", "VOIDED":
		return domain.PaymentCanceled
	default:
		return domain.PaymentUnknown
	}
}

func metadataString(metadata map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

type manifestRow struct {
	EventID  string `json:"eventId"`
	TicketID string `json:"ticketId"`
	Quantity int    `json:"quantity"`
}

// decodeManifest accepts the ticket manifest either as a JSON encoded string
// or as an embedded array.
func decodeManifest(value interface{}) ([]domain.ManifestEntry, error) {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		raw = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, domain.ValidationError{Field: "allTicketsDetails", Msg: "malformed ticket manifest", Err: err}
		}
		raw = encoded
	}

	var rows []manifestRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, domain.ValidationError{Field: "allTicketsDetails", Msg: "malformed ticket manifest", Err: err}
	}

	entries := make([]domain.ManifestEntry, 0, len(rows))
	for _, row := range rows {
		eventID, err := uuid.Parse(row.EventID)
		if err != nil {
			return nil, domain.ValidationError{Field: "eventId", Msg: "malformed ticket manifest", Err: err}
		}
		ticketID, err := uuid.Parse(row.TicketID)
		if err != nil {
			return nil, domain.ValidationError{Field: "ticketId", Msg: "malformed ticket manifest", Err: err}
		}
		entries = append(entries, domain.ManifestEntry{EventID: eventID, TicketTypeID: ticketID, Quantity: row.Quantity})
	}
	return entries, nil
}

type xenditPaymentMethod struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Card *struct {
		CardInformation *struct {
			MaskedCardNumber string `json:"masked_card_number"`
			Network          string `json:"network"`
			ExpiryMonth      string `json:"expiry_month"`
			ExpiryYear       string `json:"expiry_year"`
		} `json:"card_information"`
	} `json:"card"`
	BillingInformation *struct {
		City        *string `json:"city"`
		Country     *string `json:"country"`
		StreetLine1 *string `json:"street_line1"`
		StreetLine2 *string `json:"street_line2"`
		PostalCode  *string `json:"postal_code"`
		Province    *string `json:"province_state"`
	} `json:"billing_information"`
}

func decodePaymentMethod(raw []byte) (*domain.PaymentMethod, error) {
	var pm xenditPaymentMethod
	if err := json.Unmarshal(raw, &pm); err != nil {
		return nil, domain.DependencyError{Dependency: dependencyName, Err: fmt.Errorf("decode payment method: %w", err)}
	}

	method := &domain.PaymentMethod{ID: pm.ID, Brand: pm.Type}
	if pm.Card != nil && pm.Card.CardInformation != nil {
		info := pm.Card.CardInformation
		method.HasCard = true
		method.Brand = info.Network
		method.ExpMonth = info.ExpiryMonth
		method.ExpYear = info.ExpiryYear
		method.Last4 = lastFour(info.MaskedCardNumber)
	}
	if b := pm.BillingInformation; b != nil {
		method.Billing = domain.BillingAddress{
			City:       b.City,
			Country:    b.Country,
			Line1:      b.StreetLine1,
			Line2:      b.StreetLine2,
			PostalCode: b.PostalCode,
			State:      b.Province,
		}
	}
	return method, nil
}

func lastFour(masked string) string {
	if len(masked) <= 4 {
		return masked
	}
	return masked[len(masked)-4:]
}
