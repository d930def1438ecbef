package paging

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// Window is a limit/offset pair read from the query string.
type Window struct {
	Limit  int
	Offset int
}

// FromQuery reads limit/offset, clamping limit to [1, MaxLimit] and offset to >= 0.
func FromQuery(c *gin.Context) Window {
	limit := DefaultLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	return Clamp(limit, offset)
}

// Clamp normalizes a window the same way FromQuery does.
func Clamp(limit, offset int) Window {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Window{Limit: limit, Offset: offset}
}
