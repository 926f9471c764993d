package handlers

import (
	"strconv"
	"strings"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// CreateReview takes JSON, or a multipart form with optional "images".
func CreateReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		var in services.ReviewInput
		var images []*storage.Upload
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			if err := c.ShouldBind(&in); err != nil {
				helpers.RespondError(c, helpers.BindError(err))
				return
			}
			if form, err := c.MultipartForm(); err == nil && len(form.File["images"]) > 0 {
				var ferr error
				if images, ferr = formFiles(c, "images"); ferr != nil {
					helpers.RespondError(c, ferr)
					return
				}
			}
		} else if !bindJSON(c, &in) {
			return
		}

		review, err := r.Create(c.Request.Context(), claims.UserObjectID(), in, images)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		created(c, review, "Review submitted and awaiting approval")
	}
}

// ListPublicReviews lists approved, active reviews.
func ListPublicReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := helpers.GetPagination(c)
		res, err := r.ListPublic(c.Request.Context(), page, limit)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func GetPublicReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, err := r.GetPublic(c.Request.Context(), param(c, "reviewId"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, review, "")
	}
}

func ListMyReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		page, limit := helpers.GetPagination(c)
		res, err := r.ListMine(c.Request.Context(), claims.UserObjectID(), page, limit)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func UpdateMyReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		var in services.ReviewUpdate
		if !bindJSON(c, &in) {
			return
		}
		review, err := r.UpdateMine(c.Request.Context(), claims.UserObjectID(), param(c, "reviewId"), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, review, "Review updated and awaiting approval")
	}
}

func DeleteMyReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		if err := r.DeleteMine(c.Request.Context(), claims.UserObjectID(), param(c, "reviewId")); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Review deleted successfully")
	}
}

// ListReviews is the admin listing with moderation filters.
func ListReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := helpers.GetPagination(c)
		q := services.ReviewQuery{Page: page, Limit: limit, Search: c.Query("search")}
		var err error
		if q.IsApproved, err = queryBool(c, "isApproved"); err != nil {
			helpers.RespondError(c, err)
			return
		}
		if q.IsActive, err = queryBool(c, "isActive"); err != nil {
			helpers.RespondError(c, err)
			return
		}
		if raw := c.Query("rating"); raw != "" {
			if q.Rating, err = strconv.Atoi(raw); err != nil {
				helpers.RespondError(c, apperr.Validation("rating must be a number"))
				return
			}
		}
		res, err := r.List(c.Request.Context(), q)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, res, "")
	}
}

func GetReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, err := r.Get(c.Request.Context(), param(c, "reviewId"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, review, "")
	}
}

// ModerateReview approves or rejects a review.
func ModerateReview(r *services.ReviewService, approved bool) gin.HandlerFunc {
	msg := "Review rejected"
	if approved {
		msg = "Review approved"
	}
	return func(c *gin.Context) {
		review, err := r.SetApproved(c.Request.Context(), param(c, "reviewId"), approved)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, review, msg)
	}
}

func ToggleReviewActive(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, err := r.ToggleActive(c.Request.Context(), param(c, "reviewId"))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, review, "Review visibility updated")
	}
}

func DeleteReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := r.Delete(c.Request.Context(), param(c, "reviewId")); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Review deleted permanently")
	}
}

func ReviewStats(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := r.Stats(c.Request.Context())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, stats, "")
	}
}
