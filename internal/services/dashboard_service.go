package services

import (
	"context"
	"strings"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/jinzhu/now"
)

const (
	upcomingWindowDays = 30
	upcomingListSize   = 10
)

type CurrencySummary struct {
	Currency     models.Currency `json:"currency"`
	PaidBookings int64           `json:"paidBookings"`
	Revenue      float64         `json:"revenue"`
	Deposits     float64         `json:"deposits"`
	Profit       float64         `json:"profit"`
}

type UpcomingTours struct {
	From  time.Time         `json:"from"`
	To    time.Time         `json:"to"`
	Count int64             `json:"count"`
	Tours []*models.Booking `json:"tours"`
}

type DashboardStats struct {
	TotalBookings     int64             `json:"totalBookings"`
	Revenue           []CurrencySummary `json:"revenue"`
	UpcomingTours     UpcomingTours     `json:"upcomingTours"`
	BookingsThisMonth int64             `json:"bookingsThisMonth"`
	TotalUsers        int64             `json:"totalUsers"`
}

// DashboardService computes admin rollups on every request.
type DashboardService struct {
	bookings models.BookingRepo
	accounts models.AccountRepo
	booking  *BookingService
	clock    func() time.Time
}

func NewDashboardService(bookings models.BookingRepo, accounts models.AccountRepo, booking *BookingService) *DashboardService {
	return &DashboardService{
		bookings: bookings,
		accounts: accounts,
		booking:  booking,
		clock:    time.Now,
	}
}

// Stats aggregates bookings, optionally for one currency. Money totals only
// count paid primary bookings since companion bookings repeat the
// primary's amounts.
func (s *DashboardService) Stats(ctx context.Context, currency string) (*DashboardStats, error) {
	cur := models.Currency(strings.ToLower(strings.TrimSpace(currency)))
	if cur != "" && !cur.Valid() {
		return nil, apperr.Validation("currency must be naira or usd")
	}

	stats := &DashboardStats{}
	var err error
	if stats.TotalBookings, err = s.bookings.CountBookings(ctx, models.BookingFilter{Currency: cur}); err != nil {
		return nil, apperr.Internal("Failed to count bookings", err)
	}

	totals, err := s.bookings.SumBookings(ctx, models.BookingFilter{
		Status:    models.StatusPaid,
		IsPrimary: boolPtr(true),
		Currency:  cur,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to sum bookings", err)
	}
	stats.Revenue = currencySummaries(totals, cur)

	t := now.With(s.clock())
	from := t.BeginningOfDay()
	to := now.With(from.AddDate(0, 0, upcomingWindowDays)).EndOfDay()
	upcoming := models.BookingFilter{
		IsPrimary:  boolPtr(true),
		Currency:   cur,
		TravelFrom: &from,
		TravelTo:   &to,
	}
	tours, count, err := s.bookings.ListBookings(ctx, upcoming, models.ListOptions{
		Limit:     upcomingListSize,
		SortField: "travelDate",
		Ascending: true,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to list upcoming tours", err)
	}
	if err := s.booking.populate(ctx, tours...); err != nil {
		return nil, err
	}
	if tours == nil {
		tours = []*models.Booking{}
	}
	stats.UpcomingTours = UpcomingTours{From: from, To: to, Count: count, Tours: tours}

	monthStart := t.BeginningOfMonth()
	stats.BookingsThisMonth, err = s.bookings.CountBookings(ctx, models.BookingFilter{
		IsPrimary:   boolPtr(true),
		Currency:    cur,
		CreatedFrom: &monthStart,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to count bookings", err)
	}

	if stats.TotalUsers, err = s.accounts.CountAccounts(ctx, models.AccountFilter{Role: models.RoleUser}); err != nil {
		return nil, apperr.Internal("Failed to count users", err)
	}
	return stats, nil
}

// currencySummaries reports every known currency, zero-filled, unless one
// currency was asked for.
func currencySummaries(totals []models.CurrencyTotals, only models.Currency) []CurrencySummary {
	byCurrency := make(map[models.Currency]models.CurrencyTotals, len(totals))
	for _, t := range totals {
		byCurrency[t.Currency] = t
	}
	currencies := []models.Currency{models.CurrencyNaira, models.CurrencyUSD}
	if only != "" {
		currencies = []models.Currency{only}
	}
	out := make([]CurrencySummary, 0, len(currencies))
	for _, c := range currencies {
		t := byCurrency[c]
		out = append(out, CurrencySummary{
			Currency:     c,
			PaidBookings: t.Count,
			Revenue:      t.TotalAmount,
			Deposits:     t.BookingAmount,
			Profit:       t.TotalAmount - t.BookingAmount,
		})
	}
	return out
}

func (s *DashboardService) ListUsers(ctx context.Context, page, limit int, search string) (models.Page[*models.Account], error) {
	items, total, err := s.accounts.ListAccounts(ctx, models.AccountFilter{
		Role:   models.RoleUser,
		Search: strings.TrimSpace(search),
	}, models.PageOptions(page, limit))
	if err != nil {
		return models.Page[*models.Account]{}, apperr.Internal("Failed to list users", err)
	}
	return models.NewPage(items, page, limit, total), nil
}
