package handlers

import (
	"fmt"
	"net/http"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type bulkDestinationsRequest struct {
	Destinations []services.DestinationInput `json:"destinations"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func CreateDestination(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.DestinationInput
		if !bindJSON(c, &in) {
			return
		}
		dest, err := d.Create(c.Request.Context(), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		created(c, dest, "Destination created successfully")
	}
}

// BulkCreateDestinations reports created and failed items separately; a
// partially failed batch still answers 201 when anything was created.
func BulkCreateDestinations(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkDestinationsRequest
		if !bindJSON(c, &req) {
			return
		}
		if len(req.Destinations) == 0 {
			helpers.RespondError(c, apperr.Validation("destinations must be a non-empty array"))
			return
		}
		res, err := d.BulkCreate(c.Request.Context(), req.Destinations)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		status := http.StatusCreated
		if len(res.Created) == 0 {
			status = http.StatusBadRequest
		}
		msg := fmt.Sprintf("%d destination(s) created, %d failed", len(res.Created), len(res.Failed))
		c.JSON(status, helpers.ApiResponse{Success: len(res.Created) > 0, Message: msg, Data: res})
	}
}

func GetDestination(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dest, err := d.Get(c.Request.Context(), param(c, "id"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, dest, "")
	}
}

func UpdateDestination(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.DestinationUpdate
		if !bindJSON(c, &in) {
			return
		}
		dest, err := d.Update(c.Request.Context(), param(c, "id"), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, dest, "Destination updated successfully")
	}
}

func DeleteDestination(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Delete(c.Request.Context(), param(c, "id")); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Destination deleted successfully")
	}
}

func BulkDeleteDestinations(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req idsRequest
		if !bindJSON(c, &req) {
			return
		}
		if len(req.IDs) == 0 {
			helpers.RespondError(c, apperr.Validation("ids must be a non-empty array"))
			return
		}
		n, err := d.BulkDelete(c.Request.Context(), req.IDs)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, gin.H{"deletedCount": n}, fmt.Sprintf("%d destination(s) deleted", n))
	}
}

// ListDestinations is the paginated public listing of active destinations.
func ListDestinations(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := helpers.GetPagination(c)
		res, err := d.List(c.Request.Context(), page, limit, c.Query("search"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func ListAllDestinations(d *services.DestinationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dests, err := d.ListActive(c.Request.Context())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, dests, "")
	}
}
