package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// JWTAuthMiddleware accepts HS256 bearer tokens issued at login and stores
// the caller's id and role on the context.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authorization header is required.")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			msg := "Invalid token."
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired."
			}
			helpers.RespondWithError(c, http.StatusUnauthorized, msg)
			return
		}

		rawID, _ := claims[UserIDKey].(string)
		userID, err := uuid.Parse(rawID)
		if err != nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token claims.")
			return
		}
		role, _ := claims[RoleKey].(string)

		c.Set(UserIDKey, userID)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// CurrentUser returns the authenticated caller set by JWTAuthMiddleware.
func CurrentUser(c *gin.Context) (uuid.UUID, string, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, "", false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	return id, c.GetString(RoleKey), true
}
