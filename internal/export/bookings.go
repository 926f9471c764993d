package export

import (
	"fmt"
	"io"

	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

const BookingsSheet = "Bookings"

const dateLayout = "02.01.2006"

var bookingHeaders = []string{
	"Booking ID", "Package", "Primary", "Traveler", "Email", "Destination",
	"Travel Date", "Return Date", "Status", "Currency", "Total Amount", "Booking Amount",
	"Companions", "Created",
}

// WriteBookings renders bookings as an xlsx workbook into w. Bookings are
// expected to be populated with their user and destination.
func WriteBookings(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(BookingsSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("error removing default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(BookingsSheet); err == nil {
		f.SetActiveSheet(index)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	for i, header := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(BookingsSheet, cell, header)
	}
	last, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
	f.SetCellStyle(BookingsSheet, "A1", last, headerStyle)

	for i, b := range bookings {
		row := i + 2
		traveler, email := "", ""
		if b.User != nil {
			traveler = b.User.FirstName + " " + b.User.LastName
			email = b.User.Email
		}
		destination := ""
		if b.Destination != nil {
			destination = b.Destination.Label()
		}
		returnDate := ""
		if b.ReturnDate != nil {
			returnDate = b.ReturnDate.Format(dateLayout)
		}

		values := []interface{}{
			b.BookingID,
			b.PackageName,
			boolToYesNo(b.IsPrimary),
			traveler,
			email,
			destination,
			b.TravelDate.Format(dateLayout),
			returnDate,
			string(b.Status),
			string(b.Currency),
			b.TotalAmount,
			b.BookingAmount,
			len(b.Companions),
			b.CreatedAt.Format("02.01.2006 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(BookingsSheet, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
	}

	f.SetColWidth(BookingsSheet, "A", "B", 22)
	f.SetColWidth(BookingsSheet, "C", "C", 10)
	f.SetColWidth(BookingsSheet, "D", "F", 25)
	f.SetColWidth(BookingsSheet, "G", "J", 14)
	f.SetColWidth(BookingsSheet, "K", "L", 16)
	f.SetColWidth(BookingsSheet, "M", "N", 18)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func boolToYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
