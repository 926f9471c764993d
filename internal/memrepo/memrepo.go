// Package memrepo is an in-memory implementation of the repository
// interfaces in models. It mirrors the Mongo filters and unique indexes
// closely enough to drive service and handler tests.
package memrepo

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Repo struct {
	mu           sync.RWMutex
	accounts     []*models.Account
	destinations []*models.Destination
	bookings     []*models.Booking
	companions   []*models.Companion
	reviews      []*models.Review
	waitlist     []*models.Waitlist
	newsletter   []*models.Newsletter
	contacts     []*models.Contact
}

func New() *Repo {
	return &Repo{}
}

// clone deep-copies v through a bson round trip, dropping the same
// populated-only fields the database would.
func clone[T any](v *T) *T {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("memrepo: marshal %T: %v", v, err))
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("memrepo: unmarshal %T: %v", v, err))
	}
	return &out
}

func cloneAll[T any](items []*T) []*T {
	out := make([]*T, 0, len(items))
	for _, it := range items {
		out = append(out, clone(it))
	}
	return out
}

func contains(field, q string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(q))
}

func anyContains(q string, fields ...string) bool {
	for _, f := range fields {
		if contains(f, q) {
			return true
		}
	}
	return false
}

func dup(what string) error {
	return fmt.Errorf("%w: %s", models.ErrDuplicate, what)
}

// page sorts by key (newest first unless opts.Ascending) with the id as
// tie-breaker, then applies skip and limit.
func page[T any](items []*T, key func(*T) time.Time, id func(*T) primitive.ObjectID, opts models.ListOptions) ([]*T, int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if !ki.Equal(kj) {
			if opts.Ascending {
				return ki.Before(kj)
			}
			return ki.After(kj)
		}
		ii, jj := id(items[i]), id(items[j])
		c := bytes.Compare(ii[:], jj[:])
		if opts.Ascending {
			return c < 0
		}
		return c > 0
	})

	total := int64(len(items))
	start := opts.Skip
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return cloneAll(items[start:end]), total
}

func ms(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

// ---- accounts

func matchAccount(a *models.Account, f models.AccountFilter) bool {
	if f.Role != "" && a.Role != f.Role {
		return false
	}
	if f.Search != "" && !anyContains(f.Search, a.FirstName, a.LastName, a.Email) {
		return false
	}
	return true
}

func (r *Repo) CreateAccount(_ context.Context, account *models.Account) error {
	if err := account.BeforeCreate(ms(time.Now())); err != nil {
		return fmt.Errorf("failed to prepare account for creation: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return dup("email")
		}
	}
	r.accounts = append(r.accounts, clone(account))
	return nil
}

func (r *Repo) FindAccountByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ID == id {
			return clone(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) FindAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	email = models.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) SaveAccount(_ context.Context, account *models.Account) error {
	if err := account.CheckVariant(); err != nil {
		return err
	}
	account.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.accounts {
		if a.ID == account.ID {
			r.accounts[i] = clone(account)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) ListAccounts(_ context.Context, f models.AccountFilter, opts models.ListOptions) ([]*models.Account, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Account
	for _, a := range r.accounts {
		if matchAccount(a, f) {
			out = append(out, a)
		}
	}
	items, total := page(out,
		func(a *models.Account) time.Time { return a.CreatedAt },
		func(a *models.Account) primitive.ObjectID { return a.ID }, opts)
	return items, total, nil
}

func (r *Repo) CountAccounts(ctx context.Context, f models.AccountFilter) (int64, error) {
	_, total, err := r.ListAccounts(ctx, f, models.ListOptions{Limit: 1})
	return total, err
}

// ---- destinations

func matchDestination(d *models.Destination, f models.DestinationFilter) bool {
	if !f.IncludeInactive && !d.IsActive {
		return false
	}
	if f.Search != "" && !anyContains(f.Search, d.City, d.Country) {
		return false
	}
	return true
}

func (r *Repo) CreateDestination(_ context.Context, d *models.Destination) error {
	d.BeforeCreate(ms(time.Now()))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.destinations {
		if e.City == d.City && e.Country == d.Country {
			return dup("city and country")
		}
	}
	r.destinations = append(r.destinations, clone(d))
	return nil
}

func (r *Repo) FindDestinationByID(_ context.Context, id primitive.ObjectID) (*models.Destination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.destinations {
		if d.ID == id {
			return clone(d), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) FindDestinationByPlace(_ context.Context, city, country string) (*models.Destination, error) {
	probe := &models.Destination{City: city, Country: country}
	probe.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.destinations {
		if d.City == probe.City && d.Country == probe.Country {
			return clone(d), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) SaveDestination(_ context.Context, d *models.Destination) error {
	d.Normalize()
	d.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, e := range r.destinations {
		if e.ID == d.ID {
			idx = i
		} else if e.City == d.City && e.Country == d.Country {
			return dup("city and country")
		}
	}
	if idx < 0 {
		return models.ErrNotFound
	}
	r.destinations[idx] = clone(d)
	return nil
}

func (r *Repo) ListDestinations(_ context.Context, f models.DestinationFilter, opts models.ListOptions) ([]*models.Destination, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Destination
	for _, d := range r.destinations {
		if matchDestination(d, f) {
			out = append(out, d)
		}
	}
	items, total := page(out,
		func(d *models.Destination) time.Time { return d.CreatedAt },
		func(d *models.Destination) primitive.ObjectID { return d.ID }, opts)
	return items, total, nil
}

func (r *Repo) SetDestinationsActive(_ context.Context, ids []primitive.ObjectID, active bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := ms(time.Now())
	for _, d := range r.destinations {
		for _, id := range ids {
			if d.ID == id {
				d.IsActive = active
				d.UpdatedAt = now
				n++
				break
			}
		}
	}
	return n, nil
}

// ---- bookings

func matchBooking(b *models.Booking, f models.BookingFilter) bool {
	switch {
	case !f.IncludeInactive && !b.IsActive:
		return false
	case f.UserID != nil && b.UserID != *f.UserID:
		return false
	case f.DestinationID != nil && b.DestinationID != *f.DestinationID:
		return false
	case f.Status != "" && b.Status != f.Status:
		return false
	case f.PackageName != "" && !contains(b.PackageName, f.PackageName):
		return false
	case f.IsPrimary != nil && b.IsPrimary != *f.IsPrimary:
		return false
	case f.Currency != "" && b.Currency != f.Currency:
		return false
	case f.TravelFrom != nil && b.TravelDate.Before(*f.TravelFrom):
		return false
	case f.TravelTo != nil && b.TravelDate.After(*f.TravelTo):
		return false
	case f.CreatedFrom != nil && b.CreatedAt.Before(*f.CreatedFrom):
		return false
	case f.Search != "" && !anyContains(f.Search, b.BookingID, b.PackageName, b.Description):
		return false
	}
	return true
}

func (r *Repo) CreateBooking(_ context.Context, b *models.Booking) error {
	b.BeforeCreate(ms(time.Now()))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.bookings {
		if e.BookingID == b.BookingID {
			return dup("bookingId")
		}
	}
	r.bookings = append(r.bookings, clone(b))
	return nil
}

func (r *Repo) findBooking(match func(*models.Booking) bool) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if match(b) {
			return clone(b), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) FindBookingByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return r.findBooking(func(b *models.Booking) bool { return b.ID == id })
}

func (r *Repo) FindBookingByCode(_ context.Context, bookingID string) (*models.Booking, error) {
	return r.findBooking(func(b *models.Booking) bool { return b.BookingID == bookingID })
}

func (r *Repo) SaveBooking(_ context.Context, b *models.Booking) error {
	b.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.bookings {
		if e.ID == b.ID {
			r.bookings[i] = clone(b)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) UpsertCompanionBooking(_ context.Context, b *models.Booking) (*models.Booking, error) {
	now := ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.bookings {
		if e.UserID == b.UserID && e.PackageName == b.PackageName && !e.IsPrimary {
			id, code, companions, created := e.ID, e.BookingID, e.Companions, e.CreatedAt
			*e = *clone(b)
			e.ID, e.BookingID, e.Companions, e.CreatedAt = id, code, companions, created
			e.IsPrimary = false
			e.UpdatedAt = now
			return clone(e), nil
		}
	}
	for _, e := range r.bookings {
		if e.BookingID == b.BookingID {
			return nil, dup("bookingId")
		}
	}
	fresh := clone(b)
	fresh.ID = primitive.NewObjectID()
	fresh.IsPrimary = false
	fresh.Companions = []primitive.ObjectID{}
	fresh.CreatedAt, fresh.UpdatedAt = now, now
	r.bookings = append(r.bookings, fresh)
	return clone(fresh), nil
}

func (r *Repo) updateCompanionSet(id primitive.ObjectID, update func(*models.Booking)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			update(b)
			b.UpdatedAt = ms(time.Now())
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) AddBookingCompanion(_ context.Context, bookingID, companionID primitive.ObjectID) error {
	return r.updateCompanionSet(bookingID, func(b *models.Booking) {
		if !b.HasCompanion(companionID) {
			b.Companions = append(b.Companions, companionID)
		}
	})
}

func (r *Repo) RemoveBookingCompanion(_ context.Context, bookingID, companionID primitive.ObjectID) error {
	return r.updateCompanionSet(bookingID, func(b *models.Booking) {
		kept := b.Companions[:0]
		for _, c := range b.Companions {
			if c != companionID {
				kept = append(kept, c)
			}
		}
		b.Companions = kept
	})
}

func (r *Repo) DeleteBooking(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.bookings {
		if b.ID == id {
			r.bookings = append(r.bookings[:i], r.bookings[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) matchingBookings(f models.BookingFilter) []*models.Booking {
	var out []*models.Booking
	for _, b := range r.bookings {
		if matchBooking(b, f) {
			out = append(out, b)
		}
	}
	return out
}

func (r *Repo) ListBookings(_ context.Context, f models.BookingFilter, opts models.ListOptions) ([]*models.Booking, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := func(b *models.Booking) time.Time { return b.CreatedAt }
	if opts.SortField == "travelDate" {
		key = func(b *models.Booking) time.Time { return b.TravelDate }
	}
	items, total := page(r.matchingBookings(f), key,
		func(b *models.Booking) primitive.ObjectID { return b.ID }, opts)
	return items, total, nil
}

func (r *Repo) CountBookings(_ context.Context, f models.BookingFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matchingBookings(f))), nil
}

func (r *Repo) SumBookings(_ context.Context, f models.BookingFilter) ([]models.CurrencyTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byCurrency := map[models.Currency]*models.CurrencyTotals{}
	for _, b := range r.matchingBookings(f) {
		t, ok := byCurrency[b.Currency]
		if !ok {
			t = &models.CurrencyTotals{Currency: b.Currency}
			byCurrency[b.Currency] = t
		}
		t.Count++
		t.TotalAmount += b.TotalAmount
		t.BookingAmount += b.BookingAmount
	}
	out := make([]models.CurrencyTotals, 0, len(byCurrency))
	for _, t := range byCurrency {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

// ---- companions

func (r *Repo) UpsertCompanion(_ context.Context, c *models.Companion) (*models.Companion, error) {
	now := ms(time.Now())
	email := models.NormalizeEmail(c.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.companions {
		if e.Email == email && e.BookingID == c.BookingID {
			e.FirstName, e.LastName = c.FirstName, c.LastName
			e.PhoneNumber, e.Relationship = c.PhoneNumber, c.Relationship
			e.UserID, e.BookingStatus = c.UserID, c.BookingStatus
			if !c.AccountID.IsZero() {
				e.AccountID = c.AccountID
			}
			e.UpdatedAt = now
			return clone(e), nil
		}
	}
	fresh := clone(c)
	fresh.ID = primitive.NewObjectID()
	fresh.Email = email
	fresh.AttachState = models.AttachPending
	fresh.CompanionBookingID = nil
	fresh.CreatedAt, fresh.UpdatedAt = now, now
	r.companions = append(r.companions, fresh)
	return clone(fresh), nil
}

func (r *Repo) FindCompanionByID(_ context.Context, id primitive.ObjectID) (*models.Companion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.companions {
		if c.ID == id {
			return clone(c), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) FindCompanion(_ context.Context, bookingID primitive.ObjectID, email string) (*models.Companion, error) {
	email = models.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.companions {
		if c.BookingID == bookingID && c.Email == email {
			return clone(c), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) companionsWhere(match func(*models.Companion) bool, ascending bool) []*models.Companion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Companion
	for _, c := range r.companions {
		if match(c) {
			out = append(out, c)
		}
	}
	items, _ := page(out,
		func(c *models.Companion) time.Time { return c.CreatedAt },
		func(c *models.Companion) primitive.ObjectID { return c.ID },
		models.ListOptions{Ascending: ascending})
	return items
}

func (r *Repo) FindCompanionsByEmail(_ context.Context, email string) ([]*models.Companion, error) {
	email = models.NormalizeEmail(email)
	return r.companionsWhere(func(c *models.Companion) bool { return c.Email == email }, false), nil
}

func (r *Repo) ListCompanionsByBooking(_ context.Context, bookingID primitive.ObjectID) ([]*models.Companion, error) {
	return r.companionsWhere(func(c *models.Companion) bool { return c.BookingID == bookingID }, true), nil
}

func (r *Repo) SaveCompanion(_ context.Context, c *models.Companion) error {
	c.Email = models.NormalizeEmail(c.Email)
	c.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.companions {
		if e.ID == c.ID {
			r.companions[i] = clone(c)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) SetCompanionCredentials(_ context.Context, email string, creds models.CompanionCredentials) error {
	email = models.NormalizeEmail(email)
	now := ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companions {
		if c.Email == email {
			c.Password = creds.Password
			c.TempPassword = creds.TempPassword
			c.IsRegistered = creds.IsRegistered
			c.UpdatedAt = now
		}
	}
	return nil
}

func (r *Repo) SetCompanionsStatus(_ context.Context, bookingID primitive.ObjectID, status models.BookingStatus) error {
	now := ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companions {
		if c.BookingID == bookingID {
			c.BookingStatus = status
			c.UpdatedAt = now
		}
	}
	return nil
}

func (r *Repo) DeleteCompanion(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.companions {
		if c.ID == id {
			r.companions = append(r.companions[:i], r.companions[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}
