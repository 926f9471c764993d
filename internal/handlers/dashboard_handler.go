package handlers

import (
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// DashboardStats takes an optional currency (naira or usd).
func DashboardStats(d *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := d.Stats(c.Request.Context(), c.Query("currency"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, stats, "")
	}
}

func ListUsers(d *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := helpers.GetPagination(c)
		res, err := d.ListUsers(c.Request.Context(), page, limit, c.Query("search"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}
