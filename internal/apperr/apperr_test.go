package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("Destination not found"), http.StatusNotFound},
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"conflict", Conflict("email taken"), http.StatusConflict},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("admins only"), http.StatusForbidden},
		{"internal", Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{"plain error", errors.New("not found"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("loading booking: %w", NotFound("Booking not found")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("failed to save booking", errors.New("connection refused"))
	if got := Message(err); got != "Internal server error" {
		t.Errorf("Message() = %q", got)
	}
	if !errors.Is(err, err.Err) {
		t.Error("Internal error should unwrap to its cause")
	}
}

func TestInvalidCarriesFields(t *testing.T) {
	err := Invalid("Validation failed", map[string]string{"email": "Invalid email format"})
	if KindOf(err) != KindValidation {
		t.Fatalf("KindOf() = %v", KindOf(err))
	}
	if FieldsOf(err)["email"] != "Invalid email format" {
		t.Errorf("FieldsOf() = %v", FieldsOf(err))
	}
	if !Is(err, KindValidation) || Is(nil, KindValidation) {
		t.Error("Is() mismatch")
	}
}
