package helpers

import (
	"errors"
	"fmt"

	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationMessages turns validator errors into a field -> message map.
// It returns nil for errors that did not come from the validator.
func ValidationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gtfield", "gtefield":
		return fmt.Sprintf("must be after %s", fe.Param())
	case "mongodb":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

var validate = models.Validate
