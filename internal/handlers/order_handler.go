package handlers

import (
	"context"
	"net/http"

	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/farellandr/tixflow/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderService interface {
	CreateOrder(ctx context.Context, requester services.Requester, req services.CreateOrderRequest) (*services.CreateOrderResult, error)
	GetOrder(ctx context.Context, requester services.Requester, orderID uuid.UUID) (*services.OrderDetails, error)
	ListOrders(ctx context.Context, requester services.Requester) ([]models.Order, error)
	GetOrderByQR(ctx context.Context, qrCodeID string) (*models.Order, error)
	RedeemTicket(ctx context.Context, requester services.Requester, req services.RedeemRequest) error
	ResendTickets(ctx context.Context, requester services.Requester, orderID uuid.UUID) error
}

type OrderHandler struct {
	orders OrderService
}

func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	result, err := h.orders.CreateOrder(c.Request.Context(), caller, req)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	if result.Replayed {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}
	orderID, err := helpers.ParseUUIDParam(c, "id", "order")
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	details, err := h.orders.GetOrder(c.Request.Context(), caller, orderID)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), caller)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetOrderByQR(c *gin.Context) {
	if _, ok := requester(c); !ok {
		return
	}

	order, err := h.orders.GetOrderByQR(c.Request.Context(), c.Param("qrCodeId"))
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) RedeemTicket(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}

	var req services.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	if err := h.orders.RedeemTicket(c.Request.Context(), caller, req); err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket verified"})
}

func (h *OrderHandler) ResendTickets(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}
	orderID, err := helpers.ParseUUIDParam(c, "id", "order")
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	if err := h.orders.ResendTickets(c.Request.Context(), caller, orderID); err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tickets sent", "order_id": orderID})
}
