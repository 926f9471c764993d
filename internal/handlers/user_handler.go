package handlers

import (
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// GetProfile returns the caller's own account, user or admin.
func GetProfile(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		account, err := p.GetProfile(c.Request.Context(), claims.UserObjectID())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, account, "")
	}
}

func UpdateProfile(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		var in services.ProfileInput
		if !bindJSON(c, &in) {
			return
		}
		account, err := p.UpdateProfile(c.Request.Context(), claims.UserObjectID(), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, account, "Profile updated successfully")
	}
}

// UploadProfilePicture expects a single image under the "image" form field.
func UploadProfilePicture(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		upload, err := formFile(c, "image")
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		account, err := p.UploadProfilePicture(c.Request.Context(), claims.UserObjectID(), upload)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, account, "Profile picture updated successfully")
	}
}

func bookingQuery(c *gin.Context) services.BookingQuery {
	page, limit := helpers.GetPagination(c)
	return services.BookingQuery{
		Page:          page,
		Limit:         limit,
		Status:        models.BookingStatus(c.Query("status")),
		PackageName:   c.Query("packageName"),
		DestinationID: c.Query("destinationId"),
		UserID:        c.Query("userId"),
		Search:        c.Query("search"),
		BookingType:   c.Query("bookingType"),
		Currency:      models.Currency(c.Query("currency")),
	}
}

// ListMyBookings lists the caller's primary and companion bookings.
func ListMyBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		q := bookingQuery(c)
		q.UserID = ""
		res, err := b.ListUserBookings(c.Request.Context(), claims.UserObjectID(), q)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func GetMyBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		booking, err := b.GetUserBooking(c.Request.Context(), claims.UserObjectID(), param(c, "bookingId"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, booking, "")
	}
}

func MyBookingStats(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		stats, err := b.UserBookingStats(c.Request.Context(), claims.UserObjectID())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, stats, "")
	}
}
