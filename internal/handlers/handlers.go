package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/middleware"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// principal returns the authenticated caller or writes a 401.
func principal(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	claims, found := middleware.Claims(c)
	if !found {
		helpers.RespondError(c, apperr.Unauthorized("Unauthorized access"))
		return nil, false
	}
	return claims, true
}

// bindJSON decodes the body into dst. Field validation is left to the services.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		helpers.RespondError(c, helpers.BindError(err))
		return false
	}
	return true
}

func param(c *gin.Context, name string) string {
	return strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
}

// queryBool parses an optional boolean filter. Absent means no filter.
func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation(key + " must be true or false")
	}
	return &b, nil
}

// formFiles reads every file sent under field, checks the count and runs
// each one through the size and type checks.
func formFiles(c *gin.Context, field string) ([]*storage.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.Validation("Expected a multipart form with files")
	}
	headers := form.File[field]
	if err := storage.CheckCount(len(headers)); err != nil {
		return nil, err
	}

	uploads := make([]*storage.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > storage.MaxFileSize {
			return nil, apperr.Validation("File " + fh.Filename + " exceeds the 10MB limit")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperr.Internal("Failed to open upload", err)
		}
		upload, err := storage.ReadUpload(fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

// formFile reads a single required file.
func formFile(c *gin.Context, field string) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, apperr.Validation("No file uploaded under " + field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal("Failed to open upload", err)
	}
	defer f.Close()
	return storage.ReadUpload(fh.Filename, f)
}

func ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, helpers.SuccessResponse(data, message))
}

func created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, helpers.SuccessResponse(data, message))
}
