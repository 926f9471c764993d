package memrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ models.AccountRepo     = (*Repo)(nil)
	_ models.DestinationRepo = (*Repo)(nil)
	_ models.BookingRepo     = (*Repo)(nil)
	_ models.CompanionRepo   = (*Repo)(nil)
	_ models.ReviewRepo      = (*Repo)(nil)
	_ models.WaitlistRepo    = (*Repo)(nil)
	_ models.NewsletterRepo  = (*Repo)(nil)
	_ models.ContactRepo     = (*Repo)(nil)
)

func TestUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	r := New()

	if err := r.CreateAccount(ctx, models.NewUserAccount("Ada", "Obi", "ada@example.com", models.UserProfile{})); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	err := r.CreateAccount(ctx, models.NewUserAccount("Ada", "Obi", "ADA@example.com", models.UserProfile{}))
	if !errors.Is(err, models.ErrDuplicate) {
		t.Errorf("duplicate email error = %v", err)
	}

	if err := r.CreateDestination(ctx, &models.Destination{City: "Lagos", Country: "Nigeria"}); err != nil {
		t.Fatalf("CreateDestination() error = %v", err)
	}
	err = r.CreateDestination(ctx, &models.Destination{City: " lagos", Country: "NIGERIA "})
	if !errors.Is(err, models.ErrDuplicate) {
		t.Errorf("duplicate destination error = %v", err)
	}
}

func TestListBookingsPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := New()
	user := primitive.NewObjectID()
	for i := 0; i < 25; i++ {
		b := &models.Booking{BookingID: primitive.NewObjectID().Hex(), UserID: user, IsPrimary: true}
		if err := r.CreateBooking(ctx, b); err != nil {
			t.Fatalf("CreateBooking() error = %v", err)
		}
	}

	items, total, err := r.ListBookings(ctx, models.BookingFilter{UserID: &user}, models.PageOptions(3, 10))
	if err != nil {
		t.Fatalf("ListBookings() error = %v", err)
	}
	if total != 25 || len(items) != 5 {
		t.Errorf("total = %d, items = %d", total, len(items))
	}

	first, _, _ := r.ListBookings(ctx, models.BookingFilter{}, models.ListOptions{Limit: 2})
	sameInstant := first[0].CreatedAt.Equal(first[1].CreatedAt)
	if first[0].CreatedAt.Before(first[1].CreatedAt) || (sameInstant && first[0].ID.Hex() < first[1].ID.Hex()) {
		t.Error("expected newest booking first")
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	r := New()
	b := &models.Booking{BookingID: "TB-1", Documents: []models.Attachment{{Name: "a.pdf"}}}
	if err := r.CreateBooking(ctx, b); err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	got, _ := r.FindBookingByID(ctx, b.ID)
	got.Documents[0].Name = "changed"
	got.Status = models.StatusPaid

	again, _ := r.FindBookingByID(ctx, b.ID)
	if again.Documents[0].Name != "a.pdf" || again.Status != models.StatusPending {
		t.Errorf("stored booking was mutated through a returned copy: %+v", again)
	}
}

func TestUpsertCompanionIsKeyedByEmailAndBooking(t *testing.T) {
	ctx := context.Background()
	r := New()
	booking := primitive.NewObjectID()

	first, err := r.UpsertCompanion(ctx, &models.Companion{Email: "Sam@Example.com", BookingID: booking, FirstName: "Sam"})
	if err != nil {
		t.Fatalf("UpsertCompanion() error = %v", err)
	}
	second, _ := r.UpsertCompanion(ctx, &models.Companion{Email: "sam@example.com", BookingID: booking, FirstName: "Samuel"})
	if first.ID != second.ID || second.FirstName != "Samuel" || second.AttachState != models.AttachPending {
		t.Errorf("upsert did not refresh the same record: %+v / %+v", first, second)
	}

	other, _ := r.UpsertCompanion(ctx, &models.Companion{Email: "sam@example.com", BookingID: primitive.NewObjectID()})
	if other.ID == first.ID {
		t.Error("a different booking must get its own companion record")
	}

	if err := r.SetCompanionCredentials(ctx, "SAM@example.com", models.CompanionCredentials{TempPassword: "hash"}); err != nil {
		t.Fatalf("SetCompanionCredentials() error = %v", err)
	}
	all, _ := r.FindCompanionsByEmail(ctx, "sam@example.com")
	if len(all) != 2 || all[0].TempPassword != "hash" || all[1].TempPassword != "hash" {
		t.Errorf("credentials not replicated: %+v", all)
	}
}

func TestSumBookingsGroupsByCurrency(t *testing.T) {
	ctx := context.Background()
	r := New()
	add := func(code string, cur models.Currency, amount float64) {
		if err := r.CreateBooking(ctx, &models.Booking{BookingID: code, Currency: cur, TotalAmount: amount, IsPrimary: true}); err != nil {
			t.Fatalf("CreateBooking() error = %v", err)
		}
	}
	add("a", models.CurrencyNaira, 100)
	add("b", models.CurrencyNaira, 50)
	add("c", models.CurrencyUSD, 10)

	totals, err := r.SumBookings(ctx, models.BookingFilter{})
	if err != nil {
		t.Fatalf("SumBookings() error = %v", err)
	}
	if len(totals) != 2 || totals[0].Currency != models.CurrencyNaira || totals[0].TotalAmount != 150 || totals[0].Count != 2 {
		t.Errorf("totals = %+v", totals)
	}

	from := time.Now().Add(time.Hour)
	empty, _ := r.SumBookings(ctx, models.BookingFilter{CreatedFrom: &from})
	if len(empty) != 0 {
		t.Errorf("expected no totals, got %+v", empty)
	}
}

func TestPageBreaksTiesByID(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	low := primitive.NewObjectIDFromTimestamp(at)
	high := primitive.NewObjectIDFromTimestamp(at.Add(time.Second))
	items := []*models.Booking{{ID: low, CreatedAt: at}, {ID: high, CreatedAt: at}}
	key := func(b *models.Booking) time.Time { return b.CreatedAt }
	id := func(b *models.Booking) primitive.ObjectID { return b.ID }

	got, total := page(items, key, id, models.ListOptions{})
	if total != 2 || got[0].ID != high {
		t.Fatalf("descending tie order = %v, %v", got[0].ID, got[1].ID)
	}
	got, _ = page(items, key, id, models.ListOptions{Ascending: true})
	if got[0].ID != low {
		t.Fatalf("ascending tie order = %v, %v", got[0].ID, got[1].ID)
	}
}
