package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/farellandr/tixflow/internal/repositories"
	"github.com/farellandr/tixflow/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogService interface {
	CreateEvent(ctx context.Context, requester services.Requester, req services.CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	SearchEvents(ctx context.Context, filter repositories.EventFilter) ([]models.Event, int64, error)
	CreateTicketType(ctx context.Context, requester services.Requester, req services.CreateTicketTypeRequest) (*models.TicketType, error)
	GetTicketType(ctx context.Context, id uuid.UUID) (*models.TicketType, error)
	CreateDiscount(ctx context.Context, requester services.Requester, req services.CreateDiscountRequest) (*models.Discount, error)
	ApplyDiscounts(ctx context.Context, req services.ApplyDiscountsRequest) (*models.DiscountApplication, error)
}

// CatalogHandler serves events, ticket types and discount codes.
type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) CreateEvent(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}

	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	event, err := h.catalog.CreateEvent(c.Request.Context(), caller, req)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event created successfully.",
		"event_id": event.ID,
	})
}

func (h *CatalogHandler) GetEvent(c *gin.Context) {
	eventID, err := helpers.ParseUUIDParam(c, "id", "event")
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	event, err := h.catalog.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *CatalogHandler) ListEvents(c *gin.Context) {
	page, limit, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	startDate, err := helpers.ParseDateQuery(c, "start_date")
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	endDate, err := helpers.ParseDateQuery(c, "end_date")
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	filter := repositories.EventFilter{
		Location:  strings.TrimSpace(c.Query("location")),
		Keyword:   strings.TrimSpace(c.Query("keyword")),
		StartDate: startDate,
		EndDate:   endDate,
		Page:      page,
		Limit:     limit,
	}

	events, total, err := h.catalog.SearchEvents(c.Request.Context(), filter)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"pagination": gin.H{
			"current_page": page,
			"per_page":     limit,
			"total":        total,
			"total_pages":  (total + int64(limit) - 1) / int64(limit),
		},
	})
}
