package handlers

import (
	"net/http"

	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/farellandr/tixflow/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *CatalogHandler) CreateDiscount(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}

	var req services.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	discount, err := h.catalog.CreateDiscount(c.Request.Context(), caller, req)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Discount created successfully.",
		"discount": discount,
	})
}

// ApplyDiscounts records the codes used at checkout against a payment
// confirmation id.
func (h *CatalogHandler) ApplyDiscounts(c *gin.Context) {
	if _, ok := requester(c); !ok {
		return
	}

	var req services.ApplyDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	application, err := h.catalog.ApplyDiscounts(c.Request.Context(), req)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}
