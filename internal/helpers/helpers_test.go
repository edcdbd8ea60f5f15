package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(err error) (*httptest.ResponseRecorder, ErrorResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondDomainError(c, err)

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondDomainErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ValidationError{Field: "email", Msg: "is required"}, http.StatusBadRequest},
		{domain.PaymentMismatchError{Reason: domain.MismatchBuyer}, http.StatusBadRequest},
		{domain.InsufficientInventoryError{TicketTypeID: uuid.New(), Requested: 2}, http.StatusBadRequest},
		{domain.AlreadyUsedError{Index: 1}, http.StatusBadRequest},
		{domain.UnauthenticatedError{}, http.StatusUnauthorized},
		{domain.AuthorizationError{}, http.StatusForbidden},
		{domain.NotFoundError{Resource: "order"}, http.StatusNotFound},
		{domain.ConflictError{Resource: "user"}, http.StatusConflict},
		{domain.DependencyError{Dependency: "payment provider", Timeout: true, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{domain.DependencyError{Dependency: "payment provider", Err: errors.New("503")}, http.StatusBadGateway},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w, _ := respond(domain.WorkflowError{Stage: domain.StageValidatingPayment, Err: tc.err})
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestRespondDomainErrorHidesInternalMessage(t *testing.T) {
	_, body := respond(errors.New("pq: password authentication failed"))
	assert.Equal(t, "Internal server error", body.Message)
	assert.Equal(t, "internal_error", body.Code)
}

func TestRespondDomainErrorHidesDependencyCause(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
		secret  string
	}{
		{
			err:     domain.DependencyError{Dependency: "redis", Err: errors.New("dial tcp 10.0.3.7:6379: connect: connection refused")},
			status:  http.StatusBadGateway,
			message: "redis unavailable",
			secret:  "10.0.3.7",
		},
		{
			err: domain.WorkflowError{
				Stage: domain.StageValidatingPayment,
				Err:   domain.DependencyError{Dependency: "payment provider", Err: errors.New("API_KEY_INVALID: xnd_development_abc123")},
			},
			status:  http.StatusBadGateway,
			message: "payment provider unavailable",
			secret:  "xnd_development_abc123",
		},
		{
			err:     domain.DependencyError{Dependency: "payment provider", Timeout: true, Err: errors.New("read tcp 10.0.3.9:443: i/o timeout")},
			status:  http.StatusGatewayTimeout,
			message: "payment provider timed out",
			secret:  "10.0.3.9",
		},
	}

	for _, tc := range cases {
		w, body := respond(tc.err)
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.message, body.Message)
		assert.NotContains(t, w.Body.String(), tc.secret)
	}
}

func TestRespondDomainErrorCarriesOrderID(t *testing.T) {
	orderID := uuid.New()
	w, body := respond(domain.WorkflowError{
		Stage: domain.StageNotifying,
		Err:   domain.DeliveryError{OrderID: orderID, Err: domain.DependencyError{Dependency: "mail transport", Err: errors.New("550")}},
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.NotNil(t, body.OrderID)
	assert.Equal(t, orderID, *body.OrderID)
	assert.Equal(t, "delivery_failed", body.Code)
}

func TestParsePagination(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=2&limit=500", nil)

	page, limit, err := ParsePagination(c)
	require.NoError(t, err)
	assert.Equal(t, 2, page)
	assert.Equal(t, 100, limit)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=zero", nil)
	_, _, err = ParsePagination(c)
	assert.True(t, domain.IsValidation(err))
}

func TestParseDateQuery(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?start_date=2026-12-01&end_date=tomorrow", nil)

	start, err := ParseDateQuery(c, "start_date")
	require.NoError(t, err)
	assert.Equal(t, 12, int(start.Month()))

	_, err = ParseDateQuery(c, "end_date")
	assert.True(t, domain.IsValidation(err))

	missing, err := ParseDateQuery(c, "other")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSignature(t *testing.T) {
	sig := GenerateSignature("secret", "a", "b")
	assert.Len(t, sig, 64)
	assert.True(t, ValidateSignature("secret", sig, "a", "b"))
	assert.False(t, ValidateSignature("secret", sig, "a", "c"))
	assert.False(t, ValidateSignature("other", sig, "a", "b"))
}
