package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookings(t *testing.T) {
	travel := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	bookings := []*models.Booking{
		{
			BookingID:   "TB-ABC-12345",
			PackageName: "TB-ABC-12345",
			TravelDate:  travel,
			TotalAmount: 2500,
			Currency:    models.CurrencyUSD,
			Status:      models.StatusPaid,
			IsPrimary:   true,
			User:        &models.AccountSummary{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"},
			Destination: &models.Destination{City: "zanzibar", Country: "tanzania"},
		},
		{
			BookingID:   "TB-ABC-67890",
			PackageName: "TB-ABC-12345",
			TravelDate:  travel,
			Status:      models.StatusPaid,
		},
	}

	var buf bytes.Buffer
	if err := WriteBookings(&buf, bookings); err != nil {
		t.Fatalf("WriteBookings() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(BookingsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Booking ID" || rows[1][0] != "TB-ABC-12345" {
		t.Errorf("unexpected first column: %q, %q", rows[0][0], rows[1][0])
	}
	if rows[1][2] != "Yes" || rows[2][2] != "No" {
		t.Errorf("primary column = %q, %q", rows[1][2], rows[2][2])
	}
	if rows[1][3] != "Ada Obi" || rows[1][6] != "20.12.2026" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if got := f.GetSheetList(); len(got) != 1 || got[0] != BookingsSheet {
		t.Errorf("sheets = %v", got)
	}
}
