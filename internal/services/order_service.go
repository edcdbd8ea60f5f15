package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farellandr/tixflow/internal/applog"
	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/farellandr/tixflow/internal/notify"
	"github.com/farellandr/tixflow/internal/payment"
	"github.com/farellandr/tixflow/internal/saga"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const persistStep = "persist_order"

type Timeouts struct {
	Order   time.Duration
	Payment time.Duration
	Render  time.Duration
	Mail    time.Duration
}

type OrderService struct {
	logger    *logrus.Logger
	timeouts  Timeouts
	payments  payment.Provider
	tickets   InventoryLedger
	orders    OrderStore
	events    EventCatalog
	users     UserDirectory
	discounts DiscountStore
	issuer    TicketIssuer
	renderer  DocumentRenderer
	notifier  Notifier
	locker    Locker
	now       func() time.Time
}

type OrderServiceProperty struct {
	Logger    *logrus.Logger
	Timeouts  Timeouts
	Payments  payment.Provider
	Tickets   InventoryLedger
	Orders    OrderStore
	Events    EventCatalog
	Users     UserDirectory
	Discounts DiscountStore
	Issuer    TicketIssuer
	Renderer  DocumentRenderer
	Notifier  Notifier
	Locker    Locker
}

func NewOrderService(props OrderServiceProperty) *OrderService {
	return &OrderService{
		logger:    props.Logger,
		timeouts:  props.Timeouts,
		payments:  props.Payments,
		tickets:   props.Tickets,
		orders:    props.Orders,
		events:    props.Events,
		users:     props.Users,
		discounts: props.Discounts,
		issuer:    props.Issuer,
		renderer:  props.Renderer,
		notifier:  props.Notifier,
		locker:    props.Locker,
		now:       time.Now,
	}
}

type CreateOrderRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
}

type CreateOrderResult struct {
	OrderID  uuid.UUID `json:"order_id"`
	Replayed bool      `json:"replayed,omitempty"`
}

func (r CreateOrderRequest) validate() error {
	switch {
	case strings.TrimSpace(r.PaymentIntentID) == "":
		return domain.ValidationError{Field: "payment_intent_id", Msg: "is required"}
	case strings.TrimSpace(r.FirstName) == "":
		return domain.ValidationError{Field: "first_name", Msg: "is required"}
	case strings.TrimSpace(r.LastName) == "":
		return domain.ValidationError{Field: "last_name", Msg: "is required"}
	case strings.TrimSpace(r.Email) == "":
		return domain.ValidationError{Field: "email", Msg: "is required"}
	}
	return nil
}

// CreateOrder turns a succeeded payment confirmation into a persisted order
// and delivers its tickets. Inventory reservation and persistence either
// both happen or neither does. Delivery failures leave the order in place
// and are reported as a DeliveryError.
func (s *OrderService) CreateOrder(ctx context.Context, requester Requester, req CreateOrderRequest) (*CreateOrderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if s.timeouts.Order > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeouts.Order)
		defer cancel()
	}

	log := s.logger.WithFields(logrus.Fields{
		"request_id":        applog.RequestID(ctx),
		"payment_intent_id": req.PaymentIntentID,
		"user_id":           requester.ID,
	})

	if _, err := s.users.FindByID(ctx, requester.ID); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	defer release()

	if result, err := s.replay(ctx, requester, req.PaymentIntentID); result != nil || err != nil {
		if result != nil {
			log.WithField("order_id", result.OrderID).Info("create-order replayed")
		}
		return result, err
	}

	log.WithField("stage", domain.StageValidatingPayment).Debug("validating payment")
	confirmation, err := s.validatePayment(ctx, requester, req.PaymentIntentID)
	if err != nil {
		log.WithError(err).WithField("stage", domain.StageValidatingPayment).Warn("payment rejected")
		return nil, domain.WorkflowError{Stage: domain.StageValidatingPayment, Err: err}
	}

	order, err := s.assemble(ctx, requester, req, confirmation)
	if err != nil {
		log.WithError(err).WithField("stage", domain.StageValidatingPayment).Warn("manifest rejected")
		return nil, domain.WorkflowError{Stage: domain.StageValidatingPayment, Err: err}
	}
	log = log.WithField("order_id", order.ID)

	applied, err := s.discountApplication(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, domain.WorkflowError{Stage: domain.StagePersistingOrder, Err: err}
	}

	if err := s.commit(ctx, log, order, applied); err != nil {
		if domain.IsConflict(err) {
			if result, replayErr := s.replay(ctx, requester, req.PaymentIntentID); result != nil {
				return result, nil
			} else if replayErr != nil {
				return nil, replayErr
			}
		}
		return nil, err
	}
	log.WithField("stage", domain.StagePersistingOrder).Info("order persisted")

	if err := s.deliver(ctx, log, order.ID); err != nil {
		return nil, err
	}

	log.WithField("stage", domain.StageDone).Info("order created")
	return &CreateOrderResult{OrderID: order.ID}, nil
}

// replay returns the existing order for a payment confirmation, if any.
func (s *OrderService) replay(ctx context.Context, requester Requester, paymentIntentID string) (*CreateOrderResult, error) {
	existing, err := s.orders.FindByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if existing.UserID != requester.ID {
		return nil, domain.PaymentMismatchError{Reason: domain.MismatchBuyer}
	}
	return &CreateOrderResult{OrderID: existing.ID, Replayed: true}, nil
}

func (s *OrderService) validatePayment(ctx context.Context, requester Requester, paymentIntentID string) (*domain.PaymentConfirmation, error) {
	var confirmation *domain.PaymentConfirmation
	err := callDependency(ctx, s.timeouts.Payment, "payment provider", func(ctx context.Context) error {
		var err error
		confirmation, err = s.payments.GetConfirmation(ctx, paymentIntentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if confirmation.BuyerID != requester.ID.String() {
		return nil, domain.PaymentMismatchError{Reason: domain.MismatchBuyer, Status: confirmation.Status}
	}
	if confirmation.Status != domain.PaymentSucceeded {
		return nil, domain.PaymentMismatchError{Reason: domain.MismatchNotSucceeded, Status: confirmation.Status}
	}
	if confirmation.PaymentMethodID == "" {
		return nil, domain.ValidationError{Field: "payment_method", Msg: "payment method is required"}
	}
	return confirmation, nil
}

// assemble groups the manifest by event, aggregating repeated ticket types.
// Group and line order follow first appearance in the manifest.
func (s *OrderService) assemble(ctx context.Context, requester Requester, req CreateOrderRequest, confirmation *domain.PaymentConfirmation) (*models.Order, error) {
	if len(confirmation.Manifest) == 0 {
		return nil, domain.ValidationError{Field: "allTicketsDetails", Msg: "payment carries no tickets"}
	}

	var (
		ticketIDs []uuid.UUID
		eventIDs  []uuid.UUID
		seenEvent = make(map[uuid.UUID]bool)
	)
	for _, entry := range confirmation.Manifest {
		if entry.Quantity <= 0 {
			return nil, domain.ValidationError{Field: "quantity", Msg: fmt.Sprintf("must be greater than zero for ticket %s", entry.TicketTypeID)}
		}
		ticketIDs = append(ticketIDs, entry.TicketTypeID)
		if !seenEvent[entry.EventID] {
			seenEvent[entry.EventID] = true
			eventIDs = append(eventIDs, entry.EventID)
		}
	}

	ticketTypes, err := s.tickets.FindByIDs(ctx, ticketIDs)
	if err != nil {
		return nil, err
	}
	events, err := s.events.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          requester.ID,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.TrimSpace(req.Email),
		TotalPrice:      confirmation.Amount,
		Currency:        confirmation.Currency,
		PaymentStatus:   string(confirmation.Status),
		PaymentIntentID: confirmation.ID,
		PaymentMethodID: confirmation.PaymentMethodID,
		DeliveryStatus:  string(domain.DeliveryPending),
	}
	if order.PaymentIntentID == "" {
		order.PaymentIntentID = req.PaymentIntentID
	}

	groupIndex := make(map[uuid.UUID]int)
	lineIndex := make(map[uuid.UUID]int)
	for _, entry := range confirmation.Manifest {
		if _, ok := events[entry.EventID]; !ok {
			return nil, domain.NotFoundError{Resource: fmt.Sprintf("event %s", entry.EventID)}
		}
		ticket, ok := ticketTypes[entry.TicketTypeID]
		if !ok {
			return nil, domain.NotFoundError{Resource: fmt.Sprintf("ticket %s", entry.TicketTypeID)}
		}
		if ticket.EventID != entry.EventID {
			return nil, domain.ValidationError{Field: "ticketId", Msg: fmt.Sprintf("ticket %s does not belong to event %s", entry.TicketTypeID, entry.EventID)}
		}

		g, ok := groupIndex[entry.EventID]
		if !ok {
			order.Events = append(order.Events, models.OrderEvent{EventID: entry.EventID})
			g = len(order.Events) - 1
			groupIndex[entry.EventID] = g
		}

		if l, ok := lineIndex[entry.TicketTypeID]; ok {
			order.Events[g].Tickets[l].Quantity += entry.Quantity
			continue
		}
		order.Events[g].Tickets = append(order.Events[g].Tickets, models.OrderTicket{
			TicketTypeID: entry.TicketTypeID,
			Quantity:     entry.Quantity,
		})
		lineIndex[entry.TicketTypeID] = len(order.Events[g].Tickets) - 1
	}
	return order, nil
}

func (s *OrderService) discountApplication(ctx context.Context, paymentIntentID string) (*models.DiscountApplication, error) {
	applied, err := s.discounts.FindApplication(ctx, paymentIntentID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return applied, nil
}

// commit reserves every line and persists the order as one saga. Any
// failure releases whatever was reserved.
func (s *OrderService) commit(ctx context.Context, log *logrus.Entry, order *models.Order, applied *models.DiscountApplication) error {
	var steps []saga.Step
	for _, group := range order.Events {
		for _, line := range group.Tickets {
			ticketTypeID, quantity := line.TicketTypeID, line.Quantity
			steps = append(steps, saga.Step{
				Name: "reserve " + ticketTypeID.String(),
				Do: func(ctx context.Context) error {
					return s.tickets.Reserve(ctx, ticketTypeID, quantity)
				},
				Compensate: func(ctx context.Context) error {
					return s.tickets.Release(ctx, ticketTypeID, quantity)
				},
			})
		}
	}
	steps = append(steps, saga.Step{
		Name: persistStep,
		Do: func(ctx context.Context) error {
			return s.orders.Create(ctx, order, applied)
		},
	})

	log.WithField("stage", domain.StageReservingInventory).Debug("reserving inventory")

	compensateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	err := saga.Run(ctx, compensateCtx, steps...)
	if err == nil {
		return nil
	}

	stage := domain.StageReservingInventory
	var sagaErr *saga.Error
	if errors.As(err, &sagaErr) {
		if sagaErr.Step == persistStep {
			stage = domain.StagePersistingOrder
		}
		for _, cerr := range sagaErr.Compensations {
			log.WithError(cerr).WithField("stage", stage).Error("failed to release reserved inventory")
		}
	}
	log.WithError(err).WithField("stage", stage).Warn("order commit failed")

	cause := errors.Unwrap(err)
	if cause == nil {
		cause = err
	}
	return domain.WorkflowError{Stage: stage, Err: cause}
}

// deliver issues QR codes, renders the ticket document and mails it, then
// records the delivery outcome on the order.
func (s *OrderService) deliver(ctx context.Context, log *logrus.Entry, orderID uuid.UUID) error {
	stage, err := s.sendTickets(ctx, orderID)

	status := domain.DeliverySent
	if err != nil {
		status = domain.DeliveryFailed
	}
	statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if uerr := s.orders.UpdateDeliveryStatus(statusCtx, orderID, status); uerr != nil {
		log.WithError(uerr).Error("failed to record delivery status")
	}

	if err != nil {
		log.WithError(err).WithField("stage", stage).Error("ticket delivery failed")
		return domain.WorkflowError{Stage: stage, Err: domain.DeliveryError{OrderID: orderID, Err: err}}
	}
	log.WithField("stage", domain.StageNotifying).Info("tickets sent")
	return nil
}

func (s *OrderService) sendTickets(ctx context.Context, orderID uuid.UUID) (domain.Stage, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.StageIssuingQRCodes, err
	}

	var records []domain.QRCodeRecord
	for _, group := range order.Events {
		for _, line := range group.Tickets {
			issued, err := s.issuer.Issue(order.ID, group.EventID, line.TicketTypeID, line.Quantity)
			if err != nil {
				return domain.StageIssuingQRCodes, err
			}
			records = append(records, issued...)
		}
	}

	var document []byte
	err = callDependency(ctx, s.timeouts.Render, "renderer", func(ctx context.Context) error {
		var err error
		document, err = s.renderer.Render(ctx, order, records)
		return err
	})
	if err != nil {
		return domain.StageRenderingDocument, err
	}

	err = callDependency(ctx, s.timeouts.Mail, "mail transport", func(ctx context.Context) error {
		return s.notifier.Send(ctx, notify.Message{
			To:        order.Email,
			FirstName: order.FirstName,
			LastName:  order.LastName,
			OrderID:   order.ID,
			Document:  document,
		})
	})
	if err != nil {
		return domain.StageNotifying, err
	}
	return domain.StageDone, nil
}

// ResendTickets repeats the delivery phase for an existing order.
func (s *OrderService) ResendTickets(ctx context.Context, requester Requester, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != requester.ID {
		return domain.AuthorizationError{Msg: "you don't have permission to access this order"}
	}

	log := s.logger.WithFields(logrus.Fields{
		"request_id":        applog.RequestID(ctx),
		"payment_intent_id": order.PaymentIntentID,
		"order_id":          order.ID,
	})
	log.Info("resending tickets")
	return s.deliver(ctx, log, order.ID)
}

// callDependency bounds fn by timeout and classifies its failure as a
// DependencyError unless it already carries a domain meaning.
func callDependency(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := fn(callCtx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return domain.DependencyError{Dependency: name, Timeout: true, Err: err}
	case domain.IsDependency(err), domain.IsNotFound(err), domain.IsValidation(err):
		return err
	default:
		return domain.DependencyError{Dependency: name, Err: err}
	}
}
