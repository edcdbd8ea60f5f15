package helpers

import (
	"errors"
	"net/http"

	"github.com/farellandr/tixflow/internal/applog"
	"github.com/farellandr/tixflow/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error     string     `json:"error"`
	Message   string     `json:"message"`
	Code      string     `json:"code,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     HTTPStatusText(statusCode),
		Message:   customMessage,
		RequestID: applog.RequestID(c.Request.Context()),
	})
}

// RespondDomainError writes err with the status its domain class maps to.
// Messages of unclassified errors are never exposed.
func RespondDomainError(c *gin.Context, err error) {
	status, code := classify(err)

	resp := ErrorResponse{
		Error:     HTTPStatusText(status),
		Message:   err.Error(),
		Code:      code,
		RequestID: applog.RequestID(c.Request.Context()),
	}

	var delivery domain.DeliveryError
	var dependency domain.DependencyError
	switch {
	case errors.As(err, &delivery):
		resp.OrderID = &delivery.OrderID
		resp.Message = "order created but ticket delivery failed"
	case errors.As(err, &dependency):
		resp.Message = dependencyMessage(dependency)
	case status == http.StatusInternalServerError:
		resp.Message = "Internal server error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// dependencyMessage names the failing collaborator without its cause, which
// may carry addresses or provider credentials.
func dependencyMessage(dep domain.DependencyError) string {
	name := dep.Dependency
	if name == "" {
		name = "upstream service"
	}
	if dep.Timeout {
		return name + " timed out"
	}
	return name + " unavailable"
}

func classify(err error) (int, string) {
	switch {
	case domain.IsDelivery(err):
		if domain.IsTimeout(err) {
			return http.StatusGatewayTimeout, "delivery_timeout"
		}
		return http.StatusBadGateway, "delivery_failed"
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_error"
	case domain.IsPaymentMismatch(err):
		return http.StatusBadRequest, "payment_mismatch"
	case domain.IsInsufficientInventory(err):
		return http.StatusBadRequest, "insufficient_inventory"
	case domain.IsAlreadyUsed(err):
		return http.StatusBadRequest, "already_used"
	case domain.IsUnauthenticated(err):
		return http.StatusUnauthorized, "unauthenticated"
	case domain.IsAuthorization(err):
		return http.StatusForbidden, "forbidden"
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case domain.IsConflict(err):
		return http.StatusConflict, "conflict"
	case domain.IsTimeout(err):
		return http.StatusGatewayTimeout, "dependency_timeout"
	case domain.IsDependency(err):
		return http.StatusBadGateway, "dependency_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
