package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/farellandr/tixflow/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CatalogService manages events, their ticket types and discount codes.
type CatalogService struct {
	logger    *logrus.Logger
	events    EventCatalog
	tickets   InventoryLedger
	discounts DiscountStore
	now       func() time.Time
}

func NewCatalogService(logger *logrus.Logger, events EventCatalog, tickets InventoryLedger, discounts DiscountStore) *CatalogService {
	return &CatalogService{logger: logger, events: events, tickets: tickets, discounts: discounts, now: time.Now}
}

type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     *time.Time `json:"end_time"`
	Location    string     `json:"location" binding:"required"`
	City        string     `json:"city"`
	ImageURL    string     `json:"image_url"`
}

func (s *CatalogService) CreateEvent(ctx context.Context, requester Requester, req CreateEventRequest) (*models.Event, error) {
	if requester.Role != models.RoleOrganizer && requester.Role != models.RoleAdmin {
		return nil, domain.AuthorizationError{Msg: "only organizers can create events"}
	}

	end := req.StartTime.Add(24 * time.Hour)
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if end.Before(req.StartTime) {
		return nil, domain.ValidationError{Field: "end_time", Msg: "must not be before start_time"}
	}

	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     end,
		Location:    strings.TrimSpace(req.Location),
		City:        strings.TrimSpace(req.City),
		ImageURL:    req.ImageURL,
		UserID:      requester.ID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"event_id": event.ID, "user_id": requester.ID}).Info("event created")
	return event, nil
}

func (s *CatalogService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *CatalogService) SearchEvents(ctx context.Context, filter repositories.EventFilter) ([]models.Event, int64, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, domain.ValidationError{Field: "end_date", Msg: "must not be before start_date"}
	}
	return s.events.Search(ctx, filter)
}

type CreateTicketTypeRequest struct {
	EventID  uuid.UUID `json:"event_id" binding:"required"`
	Type     string    `json:"type" binding:"required"`
	Price    int64     `json:"price"`
	Quantity int       `json:"quantity" binding:"required"`
}

func (s *CatalogService) CreateTicketType(ctx context.Context, requester Requester, req CreateTicketTypeRequest) (*models.TicketType, error) {
	if req.Price < 0 {
		return nil, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if req.Quantity <= 0 {
		return nil, domain.ValidationError{Field: "quantity", Msg: "must be greater than zero"}
	}

	if _, err := s.ownedEvent(ctx, requester, req.EventID); err != nil {
		return nil, err
	}

	ticket := &models.TicketType{
		EventID:   req.EventID,
		Type:      strings.TrimSpace(req.Type),
		Price:     req.Price,
		Remaining: req.Quantity,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *CatalogService) GetTicketType(ctx context.Context, id uuid.UUID) (*models.TicketType, error) {
	return s.tickets.FindByID(ctx, id)
}

type CreateDiscountRequest struct {
	Code              string     `json:"code" binding:"required"`
	EventID           uuid.UUID  `json:"event_id" binding:"required"`
	TicketID          uuid.UUID  `json:"ticket_id" binding:"required"`
	DiscountPerTicket int64      `json:"discount_per_ticket" binding:"required"`
	ValidUntil        *time.Time `json:"valid_until"`
}

func (s *CatalogService) CreateDiscount(ctx context.Context, requester Requester, req CreateDiscountRequest) (*models.Discount, error) {
	if _, err := s.ownedEvent(ctx, requester, req.EventID); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.FindByID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.EventID != req.EventID {
		return nil, domain.ValidationError{Field: "ticket_id", Msg: "ticket does not belong to event"}
	}
	if req.DiscountPerTicket <= 0 || req.DiscountPerTicket > ticket.Price {
		return nil, domain.ValidationError{Field: "discount_per_ticket", Msg: "must be between 1 and the ticket price"}
	}

	discount := &models.Discount{
		Code:              strings.ToUpper(strings.TrimSpace(req.Code)),
		EventID:           req.EventID,
		TicketTypeID:      req.TicketID,
		DiscountPerTicket: req.DiscountPerTicket,
		ValidUntil:        req.ValidUntil,
	}
	if err := s.discounts.Create(ctx, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

type DiscountItem struct {
	EventID      uuid.UUID `json:"event_id" binding:"required"`
	TicketID     uuid.UUID `json:"ticket_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required"`
	DiscountCode string    `json:"discount_code" binding:"required"`
}

type ApplyDiscountsRequest struct {
	PaymentIntentID string         `json:"payment_intent_id" binding:"required"`
	Items           []DiscountItem `json:"items" binding:"required,min=1,dive"`
}

// ApplyDiscounts records the discounts used at checkout for a payment. Usage
// counters are not touched here; they move when the order is created.
func (s *CatalogService) ApplyDiscounts(ctx context.Context, req ApplyDiscountsRequest) (*models.DiscountApplication, error) {
	application := &models.DiscountApplication{PaymentIntentID: strings.TrimSpace(req.PaymentIntentID)}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, domain.ValidationError{Field: "quantity", Msg: "must be greater than zero"}
		}

		discount, err := s.findDiscount(ctx, item)
		if err != nil {
			return nil, err
		}
		ticket, err := s.tickets.FindByID(ctx, item.TicketID)
		if err != nil {
			return nil, err
		}

		newPrice := ticket.Price - discount.DiscountPerTicket
		if newPrice < 0 {
			newPrice = 0
		}
		application.DiscountedTickets = append(application.DiscountedTickets, models.DiscountedTicket{
			EventID:           item.EventID,
			TicketTypeID:      item.TicketID,
			OriginalPrice:     ticket.Price,
			DiscountPerTicket: discount.DiscountPerTicket,
			NewPrice:          newPrice,
			Quantity:          item.Quantity,
			DiscountCode:      discount.Code,
		})
	}

	if err := s.discounts.SaveApplication(ctx, application); err != nil {
		return nil, err
	}
	return application, nil
}

func (s *CatalogService) findDiscount(ctx context.Context, item DiscountItem) (*models.Discount, error) {
	code := strings.ToUpper(strings.TrimSpace(item.DiscountCode))
	candidates, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		d := candidates[i]
		if d.EventID != item.EventID || d.TicketTypeID != item.TicketID {
			continue
		}
		if d.ValidUntil != nil && s.now().After(*d.ValidUntil) {
			return nil, domain.ValidationError{Field: "discount_code", Msg: fmt.Sprintf("discount %s has expired", code)}
		}
		return &d, nil
	}
	return nil, domain.NotFoundError{Resource: fmt.Sprintf("discount %s", code)}
}

func (s *CatalogService) ownedEvent(ctx context.Context, requester Requester, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.UserID != requester.ID && requester.Role != models.RoleAdmin {
		return nil, domain.AuthorizationError{Msg: "you don't own this event"}
	}
	return event, nil
}
