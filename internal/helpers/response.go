package helpers

import (
	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/gin-gonic/gin"
)

type ApiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"errors,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

// RespondError writes err with the status its kind maps to. Internal errors
// are attached to the context for the error logging middleware and never
// leak their cause.
func RespondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if apperr.KindOf(err) == apperr.KindInternal {
		_ = c.Error(err)
	}
	res := ErrorResponse(apperr.Message(err))
	res.Fields = apperr.FieldsOf(err)
	c.AbortWithStatusJSON(status, res)
}

// BindError converts a request binding failure into a validation error.
func BindError(err error) error {
	if fields := ValidationMessages(err); fields != nil {
		return apperr.Invalid("Validation failed", fields)
	}
	return apperr.Validation("Invalid request body: " + err.Error())
}

// ValidateStruct runs struct validation and returns a validation error on failure.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return BindError(err)
	}
	return nil
}
