package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// GetPagination reads page and limit from the query string, falling back to
// defaults for missing or invalid values and capping limit at MaxLimit.
func GetPagination(c *gin.Context) (page, limit int) {
	return ParsePagination(c.Query("page"), c.Query("limit"))
}

func ParsePagination(pageStr, limitStr string) (page, limit int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}
