package services

import (
	"context"
	"strings"
	"time"

	"github.com/farellandr/tixflow/internal/applog"
	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrderDetails is an order joined with its payment and discount records.
type OrderDetails struct {
	Order             *models.Order             `json:"order"`
	PaymentMethod     *domain.PaymentMethod     `json:"payment_method"`
	BillingAddress    *domain.BillingAddress    `json:"billing_address"`
	Created           time.Time                 `json:"created"`
	DiscountedTickets []models.DiscountedTicket `json:"discounted_tickets"`
}

// GetOrder returns the order with payment method and discount details. It
// has no side effects.
func (s *OrderService) GetOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*OrderDetails, error) {
	if _, err := s.users.FindByID(ctx, requester.ID); err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.ID {
		return nil, domain.AuthorizationError{Msg: "you don't have permission to access this order"}
	}

	details := &OrderDetails{Order: order, DiscountedTickets: []models.DiscountedTicket{}}

	var confirmation *domain.PaymentConfirmation
	err = callDependency(ctx, s.timeouts.Payment, "payment provider", func(ctx context.Context) error {
		var err error
		confirmation, err = s.payments.GetConfirmation(ctx, order.PaymentIntentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	details.Created = confirmation.Created

	if order.PaymentMethodID != "" {
		var method *domain.PaymentMethod
		err = callDependency(ctx, s.timeouts.Payment, "payment provider", func(ctx context.Context) error {
			var err error
			method, err = s.payments.GetPaymentMethod(ctx, order.PaymentMethodID)
			return err
		})
		if err != nil {
			return nil, err
		}
		details.PaymentMethod = method
		details.BillingAddress = &method.Billing
	}

	applied, err := s.discountApplication(ctx, order.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if applied != nil {
		details.DiscountedTickets = applied.DiscountedTickets
	}
	return details, nil
}

func (s *OrderService) ListOrders(ctx context.Context, requester Requester) ([]models.Order, error) {
	if _, err := s.users.FindByID(ctx, requester.ID); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, requester.ID)
}

// GetOrderByQR looks up the order a scanned code points at.
func (s *OrderService) GetOrderByQR(ctx context.Context, qrCodeID string) (*models.Order, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(qrCodeID))
	if err != nil {
		return nil, domain.NotFoundError{Resource: "order"}
	}
	return s.orders.FindByID(ctx, orderID)
}

// RedeemRequest identifies the unit to redeem either by its fields or by the
// signed payload scanned from the QR code.
type RedeemRequest struct {
	OrderID  string `json:"order_id"`
	EventID  string `json:"event_id"`
	TicketID string `json:"ticket_id"`
	Index    *int   `json:"index"`
	QRData   string `json:"qr_data"`
}

func (r RedeemRequest) record(issuer TicketIssuer) (domain.QRCodeRecord, error) {
	if strings.TrimSpace(r.QRData) != "" {
		return issuer.Decode(r.QRData)
	}

	if r.OrderID == "" || r.EventID == "" || r.TicketID == "" || r.Index == nil {
		return domain.QRCodeRecord{}, domain.ValidationError{Msg: "missing required fields: order_id, event_id, ticket_id or index"}
	}
	orderID, err := uuid.Parse(r.OrderID)
	if err != nil {
		return domain.QRCodeRecord{}, domain.ValidationError{Field: "order_id", Err: err}
	}
	eventID, err := uuid.Parse(r.EventID)
	if err != nil {
		return domain.QRCodeRecord{}, domain.ValidationError{Field: "event_id", Err: err}
	}
	ticketID, err := uuid.Parse(r.TicketID)
	if err != nil {
		return domain.QRCodeRecord{}, domain.ValidationError{Field: "ticket_id", Err: err}
	}
	if *r.Index < 1 {
		return domain.QRCodeRecord{}, domain.ValidationError{Field: "index", Msg: "must be at least 1"}
	}

	return domain.QRCodeRecord{OrderID: orderID, EventID: eventID, TicketTypeID: ticketID, SequenceIndex: *r.Index}, nil
}

// RedeemTicket marks one physical ticket as used. Only the organizer of the
// ticket's event (or an admin) may redeem it, and each unit redeems once.
func (s *OrderService) RedeemTicket(ctx context.Context, requester Requester, req RedeemRequest) error {
	record, err := req.record(s.issuer)
	if err != nil {
		return err
	}

	if _, err := s.orders.FindByID(ctx, record.OrderID); err != nil {
		return err
	}

	event, err := s.events.FindByID(ctx, record.EventID)
	if err != nil {
		return err
	}
	if event.UserID != requester.ID && requester.Role != models.RoleAdmin {
		return domain.AuthorizationError{Msg: "you don't have permission to validate this ticket"}
	}

	if err := s.orders.Redeem(ctx, record, requester.ID, s.now()); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": applog.RequestID(ctx),
		"order_id":   record.OrderID,
		"ticket_id":  record.TicketTypeID,
		"index":      record.SequenceIndex,
	}).Info("ticket redeemed")
	return nil
}
