package handlers

import (
	"net/http"

	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/farellandr/tixflow/internal/middleware"
	"github.com/farellandr/tixflow/internal/services"
	"github.com/gin-gonic/gin"
)

const invalidInput = "Invalid input. Please check your fields."

// requester reads the caller set by the auth middleware. It writes a 401
// and returns false when there is none.
func requester(c *gin.Context) (services.Requester, bool) {
	id, role, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return services.Requester{}, false
	}
	return services.Requester{ID: id, Role: role}, true
}
