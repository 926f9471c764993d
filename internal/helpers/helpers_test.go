package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/gin-gonic/gin"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("S3cure!pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPassword("S3cure!pass", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password matched")
	}
	if CheckPassword("S3cure!pass", "") {
		t.Error("empty hash must never match")
	}
}

func TestIsPasswordStrong(t *testing.T) {
	tests := map[string]bool{
		"short1!":     false,
		"alllower1!":  false,
		"NoDigits!!":  false,
		"NoSpecial12": false,
		"Good1pass!":  true,
	}
	for pw, want := range tests {
		if got := IsPasswordStrong(pw); got != want {
			t.Errorf("IsPasswordStrong(%q) = %v, want %v", pw, got, want)
		}
	}
}

func TestGeneratedSecrets(t *testing.T) {
	temp, err := GenerateTempPassword()
	if err != nil {
		t.Fatalf("GenerateTempPassword() error = %v", err)
	}
	if len(temp) != 8 || !regexp.MustCompile(`^[A-Za-z0-9]{8}$`).MatchString(temp) {
		t.Errorf("temp password %q", temp)
	}

	otp, err := GenerateOTP()
	if err != nil {
		t.Fatalf("GenerateOTP() error = %v", err)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(otp) {
		t.Errorf("otp %q", otp)
	}
}

func TestGenerateBookingIDUnique(t *testing.T) {
	pattern := regexp.MustCompile(`^TB-[0-9A-Z]+-[0-9A-Z]{5}$`)
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, err := GenerateBookingID(now)
		if err != nil {
			t.Fatalf("GenerateBookingID() error = %v", err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("booking id %q has unexpected format", id)
		}
		if seen[id] {
			t.Fatalf("duplicate booking id %q", id)
		}
		seen[id] = true
	}
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	tests := []struct {
		name string
		want string
	}{
		{"passport.pdf", "documents/1700000000000-passport.pdf"},
		{"../../etc/passwd", "documents/1700000000000-passwd"},
		{`C:\Users\ada\my visa.png`, "documents/1700000000000-my-visa.png"},
		{"", "documents/1700000000000-file"},
	}
	for _, tt := range tests {
		if got := ObjectKey("documents", tt.name, now); got != tt.want {
			t.Errorf("ObjectKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 10},
		{"3", "25", 3, 25},
		{"0", "-4", 1, 10},
		{"abc", "500", 1, 100},
	}
	for _, tt := range tests {
		p, l := ParsePagination(tt.page, tt.limit)
		if p != tt.wantPage || l != tt.wantLimit {
			t.Errorf("ParsePagination(%q, %q) = %d, %d", tt.page, tt.limit, p, l)
		}
	}
}

func TestValidateStructReportsJSONFields(t *testing.T) {
	type body struct {
		Email string `json:"email" validate:"required,email"`
		Age   int    `json:"age" validate:"min=18"`
	}
	err := ValidateStruct(body{Email: "nope", Age: 3})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := apperr.FieldsOf(err)
	if fields["email"] == "" || fields["age"] != "must be at least 18" {
		t.Errorf("fields = %v", fields)
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{apperr.NotFound("Booking not found"), http.StatusNotFound, "Booking not found"},
		{apperr.Conflict("Companion email matches primary"), http.StatusConflict, "Companion email matches primary"},
		{apperr.Internal("db down", errors.New("socket closed")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("raw"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondError(c, tt.err)

		if w.Code != tt.wantStatus {
			t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
		}
		var res ApiResponse
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if res.Success || res.Error != tt.wantMsg {
			t.Errorf("response = %+v", res)
		}
		if strings.Contains(w.Body.String(), "socket closed") {
			t.Error("internal cause leaked to client")
		}
	}
}
