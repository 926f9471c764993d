package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/export"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/metrics"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const bookingIDAttempts = 5

type CompanionInput struct {
	FirstName    string              `json:"firstName" validate:"required,max=50"`
	LastName     string              `json:"lastName" validate:"required,max=50"`
	Email        string              `json:"email" validate:"required,email,max=100"`
	PhoneNumber  string              `json:"phoneNumber" validate:"required,max=20"`
	Relationship models.Relationship `json:"relationship" validate:"required,oneof=friend family spouse colleague other"`
}

type CreateBookingInput struct {
	UserID        string               `json:"userId" validate:"required,mongodb"`
	DestinationID string               `json:"destinationId" validate:"required,mongodb"`
	TravelDate    time.Time            `json:"travelDate" validate:"required"`
	ReturnDate    *time.Time           `json:"returnDate"`
	TotalAmount   float64              `json:"totalAmount" validate:"gte=0"`
	BookingAmount float64              `json:"bookingAmount" validate:"gte=0"`
	Currency      models.Currency      `json:"currency" validate:"omitempty,oneof=naira usd"`
	Description   string               `json:"description" validate:"max=2000"`
	Status        models.BookingStatus `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
	Companions    []CompanionInput     `json:"companions" validate:"max=20,dive"`
}

// UpdateBookingInput merges only the fields that are set.
type UpdateBookingInput struct {
	DestinationID *string               `json:"destinationId" validate:"omitempty,mongodb"`
	TravelDate    *time.Time            `json:"travelDate"`
	ReturnDate    *time.Time            `json:"returnDate"`
	TotalAmount   *float64              `json:"totalAmount" validate:"omitempty,gte=0"`
	BookingAmount *float64              `json:"bookingAmount" validate:"omitempty,gte=0"`
	Currency      *models.Currency      `json:"currency" validate:"omitempty,oneof=naira usd"`
	Description   *string               `json:"description" validate:"omitempty,max=2000"`
	Status        *models.BookingStatus `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
	Companions    []CompanionInput      `json:"companions" validate:"max=20,dive"`
}

// BookingQuery is the list filter accepted by the booking listings.
// BookingType is "primary" or "companion".
type BookingQuery struct {
	Page          int
	Limit         int
	Status        models.BookingStatus
	PackageName   string
	DestinationID string
	UserID        string
	Search        string
	BookingType   string
	IsPrimary     *bool
	Currency      models.Currency
}

func (q BookingQuery) filter() (models.BookingFilter, error) {
	f := models.BookingFilter{
		PackageName: strings.TrimSpace(q.PackageName),
		Search:      strings.TrimSpace(q.Search),
		IsPrimary:   q.IsPrimary,
	}
	if q.Status != "" {
		if !q.Status.Valid() {
			return f, apperr.Validation("Invalid status filter")
		}
		f.Status = q.Status
	}
	if q.Currency != "" {
		if !q.Currency.Valid() {
			return f, apperr.Validation("Invalid currency filter")
		}
		f.Currency = q.Currency
	}
	if q.DestinationID != "" {
		id, err := parseID(q.DestinationID, "destination")
		if err != nil {
			return f, err
		}
		f.DestinationID = &id
	}
	if q.UserID != "" {
		id, err := parseID(q.UserID, "user")
		if err != nil {
			return f, err
		}
		f.UserID = &id
	}
	switch strings.ToLower(strings.TrimSpace(q.BookingType)) {
	case "":
	case "primary":
		f.IsPrimary = boolPtr(true)
	case "companion":
		f.IsPrimary = boolPtr(false)
	default:
		return f, apperr.Validation("bookingType must be primary or companion")
	}
	return f, nil
}

type AttachResult struct {
	Booking    *models.Booking     `json:"booking"`
	Companions []*models.Companion `json:"companions"`
}

type UserBookings struct {
	User     *models.Account   `json:"user"`
	Bookings []*models.Booking `json:"bookings"`
}

type UserBookingStats struct {
	Total     int64                          `json:"total"`
	Primary   int64                          `json:"primary"`
	Companion int64                          `json:"companion"`
	ByStatus  map[models.BookingStatus]int64 `json:"byStatus"`
}

// AttachmentKind selects which attachment list of a booking is changed.
type AttachmentKind string

const (
	AttachmentDocuments   AttachmentKind = "documents"
	AttachmentItineraries AttachmentKind = "itineraries"
)

func (k AttachmentKind) purpose() (string, error) {
	switch k {
	case AttachmentDocuments:
		return storage.PurposeDocuments, nil
	case AttachmentItineraries:
		return storage.PurposeItineraries, nil
	}
	return "", apperr.Validation(fmt.Sprintf("Unknown attachment type %q", k))
}

func (k AttachmentKind) list(b *models.Booking) *[]models.Attachment {
	if k == AttachmentItineraries {
		return &b.Itineraries
	}
	return &b.Documents
}

type BookingDeps struct {
	Bookings     models.BookingRepo
	Companions   models.CompanionRepo
	Accounts     models.AccountRepo
	Destinations models.DestinationRepo
	Blobs        storage.BlobStore
	Notifier     Notifier
	Logger       *zap.Logger
	FrontendURL  string
}

// BookingService creates bookings and keeps each primary booking, its
// companion records and their mirrored bookings in step.
type BookingService struct {
	bookings     models.BookingRepo
	companions   models.CompanionRepo
	accounts     models.AccountRepo
	destinations models.DestinationRepo
	blobs        storage.BlobStore
	mail         mailer
	logger       *zap.Logger
	locks        *keyedMutex
	now          func() time.Time
}

func NewBookingService(deps BookingDeps) *BookingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:     deps.Bookings,
		companions:   deps.Companions,
		accounts:     deps.Accounts,
		destinations: deps.Destinations,
		blobs:        deps.Blobs,
		mail:         mailer{notifier: deps.Notifier, frontendURL: deps.FrontendURL},
		logger:       logger.Named("bookings"),
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

func checkTrip(travel time.Time, ret *time.Time, total, deposit float64) error {
	fields := map[string]string{}
	if ret != nil && ret.Before(travel) {
		fields["returnDate"] = "must not be before travelDate"
	}
	if deposit > total {
		fields["bookingAmount"] = "must not exceed totalAmount"
	}
	if len(fields) > 0 {
		return apperr.Invalid("Validation failed", fields)
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := checkTrip(in.TravelDate, in.ReturnDate, in.TotalAmount, in.BookingAmount); err != nil {
		return nil, err
	}

	userID, _ := primitive.ObjectIDFromHex(in.UserID)
	owner, err := s.accounts.FindAccountByID(ctx, userID)
	if err != nil {
		return nil, repoErr(err, "User not found")
	}
	if owner.Role != models.RoleUser {
		return nil, apperr.Validation("Bookings can only be created for user accounts")
	}

	destID, _ := primitive.ObjectIDFromHex(in.DestinationID)
	dest, err := s.destinations.FindDestinationByID(ctx, destID)
	if err != nil {
		return nil, repoErr(err, "Destination not found")
	}
	if !dest.IsActive {
		return nil, apperr.NotFound("Destination not found")
	}

	companions, err := dedupeCompanions(owner.Email, in.Companions)
	if err != nil {
		return nil, err
	}
	if err := s.checkCompanionAccounts(ctx, companions); err != nil {
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = models.CurrencyNaira
	}
	booking := &models.Booking{
		UserID:        owner.ID,
		DestinationID: dest.ID,
		TravelDate:    in.TravelDate,
		ReturnDate:    in.ReturnDate,
		TotalAmount:   in.TotalAmount,
		BookingAmount: in.BookingAmount,
		Currency:      currency,
		Description:   strings.TrimSpace(in.Description),
		Status:        in.Status,
		IsPrimary:     true,
	}
	if err := s.insertPrimary(ctx, booking); err != nil {
		return nil, err
	}
	metrics.BookingsCreated.Inc()
	s.logger.Info("booking created",
		zap.String("booking_id", booking.BookingID),
		zap.String("user_id", owner.ID.Hex()),
		zap.String("destination_id", dest.ID.Hex()),
	)

	if len(companions) > 0 {
		res, err := s.attachAll(ctx, booking.ID, companions)
		if err != nil {
			return nil, err
		}
		return res.Booking, nil
	}

	if err := s.populate(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// insertPrimary allocates a fresh booking code, retrying on collision.
// The package name of a primary booking is its own code.
func (s *BookingService) insertPrimary(ctx context.Context, b *models.Booking) error {
	for attempt := 0; attempt < bookingIDAttempts; attempt++ {
		code, err := helpers.GenerateBookingID(s.now())
		if err != nil {
			return apperr.Internal("Failed to generate booking id", err)
		}
		b.BookingID = code
		b.PackageName = code
		err = s.bookings.CreateBooking(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrDuplicate) {
			return apperr.Internal("Failed to create booking", err)
		}
		s.logger.Warn("booking id collision, retrying", zap.String("booking_id", code))
	}
	return apperr.Internal("Failed to allocate a unique booking id", nil)
}

// findBooking accepts either the document id or the TB- booking code.
func (s *BookingService) findBooking(ctx context.Context, ref string) (*models.Booking, error) {
	ref = strings.TrimSpace(ref)
	var (
		b   *models.Booking
		err error
	)
	if oid, perr := primitive.ObjectIDFromHex(ref); perr == nil {
		b, err = s.bookings.FindBookingByID(ctx, oid)
	} else {
		b, err = s.bookings.FindBookingByCode(ctx, strings.ToUpper(ref))
	}
	if err != nil {
		return nil, repoErr(err, "Booking not found")
	}
	return b, nil
}

// withPrimary runs fn on a fresh copy of the primary booking while holding
// its lock, then returns the stored result.
func (s *BookingService) withPrimary(ctx context.Context, ref string, fn func(b *models.Booking) error) (*models.Booking, error) {
	found, err := s.findBooking(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !found.IsPrimary {
		return nil, apperr.Validation("Companion bookings follow their primary booking; change the primary booking instead")
	}

	unlock, err := s.locks.Lock(ctx, found.ID.Hex())
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.bookings.FindBookingByID(ctx, found.ID)
	if err != nil {
		return nil, repoErr(err, "Booking not found")
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	updated, err := s.bookings.FindBookingByID(ctx, b.ID)
	if err != nil {
		return nil, repoErr(err, "Booking not found")
	}
	return updated, nil
}

// propagate copies trip details, status and attachments from a primary
// booking onto every companion booking of the same package.
func (s *BookingService) propagate(ctx context.Context, primary *models.Booking) error {
	mirrors, _, err := s.bookings.ListBookings(ctx, models.BookingFilter{
		PackageName:     primary.PackageName,
		IsPrimary:       boolPtr(false),
		IncludeInactive: true,
	}, models.ListOptions{})
	if err != nil {
		return apperr.Internal("Failed to load companion bookings", err)
	}
	for _, m := range mirrors {
		if m.PackageName != primary.PackageName {
			continue
		}
		m.SyncTrip(primary)
		if err := s.bookings.SaveBooking(ctx, m); err != nil {
			return apperr.Internal("Failed to update companion booking", err)
		}
	}
	if err := s.companions.SetCompanionsStatus(ctx, primary.ID, primary.Status); err != nil {
		return apperr.Internal("Failed to update companion status", err)
	}
	return nil
}

func (s *BookingService) saveAndPropagate(ctx context.Context, b *models.Booking) error {
	if err := s.bookings.SaveBooking(ctx, b); err != nil {
		return repoErr(err, "Booking not found")
	}
	return s.propagate(ctx, b)
}

func (s *BookingService) UpdateBooking(ctx context.Context, ref string, in UpdateBookingInput) (*models.Booking, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	var batch []CompanionInput
	if len(in.Companions) > 0 {
		_, checked, err := s.prepareAttach(ctx, ref, in.Companions)
		if err != nil {
			return nil, err
		}
		batch = checked
	}

	var statusChanged bool
	updated, err := s.withPrimary(ctx, ref, func(b *models.Booking) error {
		if in.DestinationID != nil {
			destID, _ := primitive.ObjectIDFromHex(*in.DestinationID)
			dest, err := s.destinations.FindDestinationByID(ctx, destID)
			if err != nil {
				return repoErr(err, "Destination not found")
			}
			if !dest.IsActive {
				return apperr.NotFound("Destination not found")
			}
			b.DestinationID = dest.ID
		}
		if in.TravelDate != nil {
			b.TravelDate = *in.TravelDate
		}
		if in.ReturnDate != nil {
			b.ReturnDate = in.ReturnDate
		}
		if in.TotalAmount != nil {
			b.TotalAmount = *in.TotalAmount
		}
		if in.BookingAmount != nil {
			b.BookingAmount = *in.BookingAmount
		}
		if in.Currency != nil {
			b.Currency = *in.Currency
		}
		if in.Description != nil {
			b.Description = strings.TrimSpace(*in.Description)
		}
		if in.Status != nil && *in.Status != b.Status {
			b.Status = *in.Status
			statusChanged = true
		}
		if err := checkTrip(b.TravelDate, b.ReturnDate, b.TotalAmount, b.BookingAmount); err != nil {
			return err
		}
		return s.saveAndPropagate(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	if statusChanged {
		s.statusChanged(ctx, updated)
	}

	if len(batch) > 0 {
		res, err := s.attachAll(ctx, updated.ID, batch)
		if err != nil {
			return nil, err
		}
		return res.Booking, nil
	}
	if err := s.populate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, ref string, status string) (*models.Booking, error) {
	st := models.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, apperr.Invalid("Validation failed", map[string]string{
			"status": "must be one of [pending paid cancelled]",
		})
	}

	var changed bool
	updated, err := s.withPrimary(ctx, ref, func(b *models.Booking) error {
		if b.Status == st {
			return nil
		}
		b.Status = st
		changed = true
		return s.saveAndPropagate(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.statusChanged(ctx, updated)
	}
	if err := s.populate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// statusChanged records the transition and tells every traveler on the booking.
func (s *BookingService) statusChanged(ctx context.Context, b *models.Booking) {
	metrics.BookingStatusChanges.WithLabelValues(string(b.Status)).Inc()
	s.logger.Info("booking status changed",
		zap.String("booking_id", b.BookingID),
		zap.String("status", string(b.Status)),
	)

	destination := s.destinationLabel(ctx, b.DestinationID)
	data := func(name string) map[string]any {
		return map[string]any{
			"name":        name,
			"bookingId":   b.BookingID,
			"destination": destination,
			"status":      string(b.Status),
		}
	}

	if owner, err := s.accounts.FindAccountByID(ctx, b.UserID); err == nil {
		s.mail.send(owner.Email, "bookingStatusChanged", data(owner.FirstName))
	} else {
		s.logger.Warn("status notification skipped for owner", zap.String("booking_id", b.BookingID), zap.Error(err))
	}
	companions, err := s.companions.ListCompanionsByBooking(ctx, b.ID)
	if err != nil {
		s.logger.Warn("status notification skipped for companions", zap.String("booking_id", b.BookingID), zap.Error(err))
		return
	}
	for _, c := range companions {
		s.mail.send(c.Email, "bookingStatusChanged", data(c.FirstName))
	}
}

// DeleteBooking soft deletes a primary booking together with its
// companion bookings.
func (s *BookingService) DeleteBooking(ctx context.Context, ref string) error {
	_, err := s.withPrimary(ctx, ref, func(b *models.Booking) error {
		if !b.IsActive {
			return nil
		}
		b.IsActive = false
		return s.saveAndPropagate(ctx, b)
	})
	if err != nil {
		return err
	}
	s.logger.Info("booking deleted", zap.String("ref", ref))
	return nil
}

// RemoveCompanion detaches a companion: the companion record, its companion
// booking and its entry on the primary booking are removed.
func (s *BookingService) RemoveCompanion(ctx context.Context, ref, companionID string) (*models.Booking, error) {
	cid, err := parseID(companionID, "companion")
	if err != nil {
		return nil, err
	}
	updated, err := s.withPrimary(ctx, ref, func(b *models.Booking) error {
		c, err := s.companions.FindCompanionByID(ctx, cid)
		if err != nil {
			return repoErr(err, "Companion not found")
		}
		if c.BookingID != b.ID {
			return apperr.NotFound("Companion not found on this booking")
		}
		if c.CompanionBookingID != nil {
			if err := s.bookings.DeleteBooking(ctx, *c.CompanionBookingID); err != nil && !errors.Is(err, models.ErrNotFound) {
				return apperr.Internal("Failed to remove companion booking", err)
			}
		}
		if err := s.bookings.RemoveBookingCompanion(ctx, b.ID, c.ID); err != nil {
			return repoErr(err, "Booking not found")
		}
		if err := s.companions.DeleteCompanion(ctx, c.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return apperr.Internal("Failed to remove companion", err)
		}
		s.logger.Info("companion removed",
			zap.String("booking_id", b.BookingID),
			zap.String("companion_id", c.ID.Hex()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) AddAttachments(ctx context.Context, ref string, kind AttachmentKind, uploads []*storage.Upload) (*models.Booking, error) {
	purpose, err := kind.purpose()
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apperr.Validation("No files uploaded")
	}
	if err := storage.CheckCount(len(uploads)); err != nil {
		return nil, err
	}
	found, err := s.findBooking(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !found.IsPrimary {
		return nil, apperr.Validation("Companion bookings follow their primary booking; change the primary booking instead")
	}

	stored, err := storage.PutAll(ctx, s.blobs, purpose, uploads)
	if err != nil {
		return nil, err
	}

	updated, err := s.withPrimary(ctx, found.ID.Hex(), func(b *models.Booking) error {
		list := kind.list(b)
		*list = append(*list, stored...)
		return s.saveAndPropagate(ctx, b)
	})
	if err != nil {
		if derr := storage.DeleteAll(context.WithoutCancel(ctx), s.blobs, stored); derr != nil {
			s.logger.Error("failed to clean up uploaded files", zap.String("ref", ref), zap.Error(derr))
		}
		return nil, err
	}
	if err := s.populate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) RemoveAttachment(ctx context.Context, ref string, kind AttachmentKind, index int) (*models.Booking, error) {
	if _, err := kind.purpose(); err != nil {
		return nil, err
	}
	var removed models.Attachment
	updated, err := s.withPrimary(ctx, ref, func(b *models.Booking) error {
		list := kind.list(b)
		if index < 0 || index >= len(*list) {
			return apperr.NotFound(fmt.Sprintf("No %s at index %d", strings.TrimSuffix(string(kind), "s"), index))
		}
		removed = (*list)[index]
		*list = append((*list)[:index], (*list)[index+1:]...)
		return s.saveAndPropagate(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	if err := storage.DeleteAll(ctx, s.blobs, []models.Attachment{removed}); err != nil {
		s.logger.Warn("failed to delete blob", zap.String("key", removed.Key), zap.Error(err))
	}
	if err := s.populate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, ref string) (*models.Booking, error) {
	b, err := s.findBooking(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, q BookingQuery) (models.Page[*models.Booking], error) {
	filter, err := q.filter()
	if err != nil {
		return models.Page[*models.Booking]{}, err
	}
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = helpers.DefaultPage
	}
	if limit < 1 {
		limit = helpers.DefaultLimit
	}

	items, total, err := s.bookings.ListBookings(ctx, filter, models.PageOptions(page, limit))
	if err != nil {
		return models.Page[*models.Booking]{}, apperr.Internal("Failed to list bookings", err)
	}
	if err := s.populate(ctx, items...); err != nil {
		return models.Page[*models.Booking]{}, err
	}
	return models.NewPage(items, page, limit, total), nil
}

func (s *BookingService) GetUserInfoAndBookings(ctx context.Context, userID string) (*UserBookings, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.accounts.FindAccountByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "User not found")
	}
	bookings, _, err := s.bookings.ListBookings(ctx, models.BookingFilter{UserID: &id}, models.ListOptions{})
	if err != nil {
		return nil, apperr.Internal("Failed to list bookings", err)
	}
	if err := s.populate(ctx, bookings...); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return &UserBookings{User: user, Bookings: bookings}, nil
}

// ListUserBookings lists the caller's own bookings.
func (s *BookingService) ListUserBookings(ctx context.Context, userID primitive.ObjectID, q BookingQuery) (models.Page[*models.Booking], error) {
	q.UserID = userID.Hex()
	return s.ListBookings(ctx, q)
}

// GetUserBooking returns one of the caller's active bookings.
func (s *BookingService) GetUserBooking(ctx context.Context, userID primitive.ObjectID, ref string) (*models.Booking, error) {
	b, err := s.findBooking(ctx, ref)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID || !b.IsActive {
		return nil, apperr.NotFound("Booking not found")
	}
	if err := s.populate(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) UserBookingStats(ctx context.Context, userID primitive.ObjectID) (*UserBookingStats, error) {
	count := func(f models.BookingFilter) (int64, error) {
		f.UserID = &userID
		n, err := s.bookings.CountBookings(ctx, f)
		if err != nil {
			return 0, apperr.Internal("Failed to count bookings", err)
		}
		return n, nil
	}

	stats := &UserBookingStats{ByStatus: make(map[models.BookingStatus]int64, len(models.BookingStatuses))}
	var err error
	if stats.Total, err = count(models.BookingFilter{}); err != nil {
		return nil, err
	}
	if stats.Primary, err = count(models.BookingFilter{IsPrimary: boolPtr(true)}); err != nil {
		return nil, err
	}
	stats.Companion = stats.Total - stats.Primary
	for _, st := range models.BookingStatuses {
		n, err := count(models.BookingFilter{Status: st})
		if err != nil {
			return nil, err
		}
		stats.ByStatus[st] = n
	}
	return stats, nil
}

// ExportBookings writes every booking matching q as an xlsx workbook.
func (s *BookingService) ExportBookings(ctx context.Context, w io.Writer, q BookingQuery) error {
	filter, err := q.filter()
	if err != nil {
		return err
	}
	items, _, err := s.bookings.ListBookings(ctx, filter, models.ListOptions{})
	if err != nil {
		return apperr.Internal("Failed to list bookings", err)
	}
	if err := s.populate(ctx, items...); err != nil {
		return err
	}
	if err := export.WriteBookings(w, items); err != nil {
		return apperr.Internal("Failed to build export", err)
	}
	return nil
}

// populate attaches the owner summary and destination to each booking.
func (s *BookingService) populate(ctx context.Context, bookings ...*models.Booking) error {
	users := make(map[primitive.ObjectID]*models.AccountSummary)
	dests := make(map[primitive.ObjectID]*models.Destination)
	for _, b := range bookings {
		if _, ok := users[b.UserID]; !ok {
			a, err := s.accounts.FindAccountByID(ctx, b.UserID)
			switch {
			case err == nil:
				users[b.UserID] = a.Summary()
			case errors.Is(err, models.ErrNotFound):
				users[b.UserID] = nil
			default:
				return apperr.Internal("Failed to load booking owner", err)
			}
		}
		b.User = users[b.UserID]

		if _, ok := dests[b.DestinationID]; !ok {
			d, err := s.destinations.FindDestinationByID(ctx, b.DestinationID)
			switch {
			case err == nil:
				dests[b.DestinationID] = d
			case errors.Is(err, models.ErrNotFound):
				dests[b.DestinationID] = nil
			default:
				return apperr.Internal("Failed to load booking destination", err)
			}
		}
		b.Destination = dests[b.DestinationID]
	}
	return nil
}

func (s *BookingService) destinationLabel(ctx context.Context, id primitive.ObjectID) string {
	d, err := s.destinations.FindDestinationByID(ctx, id)
	if err != nil {
		return ""
	}
	return d.Label()
}
