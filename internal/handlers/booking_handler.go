package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type companionsRequest struct {
	Companions []services.CompanionInput `json:"companions"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.CreateBookingInput
		if !bindJSON(c, &in) {
			return
		}
		booking, err := b.CreateBooking(c.Request.Context(), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		created(c, booking, "Booking created successfully")
	}
}

func ListBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := bookingQuery(c)
		isPrimary, err := queryBool(c, "isPrimary")
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		q.IsPrimary = isPrimary
		res, err := b.ListBookings(c.Request.Context(), q)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

// GetBooking accepts either the ObjectID or the TB- booking code.
func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := b.GetBooking(c.Request.Context(), param(c, "bookingId"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, booking, "")
	}
}

func UpdateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.UpdateBookingInput
		if !bindJSON(c, &in) {
			return
		}
		booking, err := b.UpdateBooking(c.Request.Context(), param(c, "bookingId"), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, booking, "Booking updated successfully")
	}
}

func UpdateBookingStatus(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if !bindJSON(c, &req) {
			return
		}
		booking, err := b.UpdateStatus(c.Request.Context(), param(c, "bookingId"), req.Status)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, booking, "Booking status updated successfully")
	}
}

func DeleteBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := b.DeleteBooking(c.Request.Context(), param(c, "bookingId")); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Booking deleted successfully")
	}
}

func AddCompanions(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req companionsRequest
		if !bindJSON(c, &req) {
			return
		}
		if len(req.Companions) == 0 {
			helpers.RespondError(c, apperr.Validation("At least one companion is required"))
			return
		}
		res, err := b.AddCompanions(c.Request.Context(), param(c, "bookingId"), req.Companions)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "Companions added successfully")
	}
}

func RemoveCompanion(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := b.RemoveCompanion(c.Request.Context(), param(c, "bookingId"), param(c, "companionId"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, booking, "Companion removed successfully")
	}
}

// UploadAttachments stores up to ten files sent under the kind's form field
// ("documents" or "itineraries").
func UploadAttachments(b *services.BookingService, kind services.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		uploads, err := formFiles(c, string(kind))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		booking, err := b.AddAttachments(c.Request.Context(), param(c, "bookingId"), kind, uploads)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, booking, fmt.Sprintf("%d file(s) uploaded successfully", len(uploads)))
	}
}

func RemoveAttachment(b *services.BookingService, kind services.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(param(c, "index"))
		if err != nil {
			helpers.RespondError(c, apperr.Validation("Index must be a number"))
			return
		}
		booking, err := b.RemoveAttachment(c.Request.Context(), param(c, "bookingId"), kind, index)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, booking, "File removed successfully")
	}
}

func GetUserInfoAndBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := b.GetUserInfoAndBookings(c.Request.Context(), param(c, "userId"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

// ExportBookings sends the filtered bookings as an xlsx download.
func ExportBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := b.ExportBookings(c.Request.Context(), &buf, bookingQuery(c)); err != nil {
			helpers.RespondError(c, err)
			return
		}
		name := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

// UploadMedia stores admin files under the optional "purpose" form value.
func UploadMedia(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uploads, err := formFiles(c, "files")
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		stored, err := p.UploadMedia(c.Request.Context(), c.PostForm("purpose"), uploads)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		created(c, stored, "Files uploaded successfully")
	}
}
