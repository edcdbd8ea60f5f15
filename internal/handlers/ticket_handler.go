package handlers

import (
	"net/http"

	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/farellandr/tixflow/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *CatalogHandler) CreateTicketType(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}

	var req services.CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	ticket, err := h.catalog.CreateTicketType(c.Request.Context(), caller, req)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket created successfully.",
		"ticket":  ticket,
	})
}

func (h *CatalogHandler) GetTicketType(c *gin.Context) {
	ticketID, err := helpers.ParseUUIDParam(c, "id", "ticket")
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	ticket, err := h.catalog.GetTicketType(c.Request.Context(), ticketID)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
