package helpers

import (
	"strconv"
	"time"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParsePagination reads page and limit query parameters, defaulting to 1
// and 10. Limit is capped at 100.
func ParsePagination(c *gin.Context) (int, int, error) {
	page, err := StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, domain.ValidationError{Field: "page", Msg: "must be a positive integer"}
	}

	limit, err := StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		return 0, 0, domain.ValidationError{Field: "limit", Msg: "must be a positive integer"}
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, nil
}

// ParseDateQuery parses an optional YYYY-MM-DD or RFC3339 query parameter.
func ParseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.ValidationError{Field: key, Msg: "must be a date (YYYY-MM-DD)"}
}

// ParseUUIDParam parses a path parameter. A malformed id cannot name any
// stored resource, so it is reported as not found.
func ParseUUIDParam(c *gin.Context, key, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		return uuid.Nil, domain.NotFoundError{Resource: resource, Err: err}
	}
	return id, nil
}
