package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusPaid      BookingStatus = "paid"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

var BookingStatuses = []BookingStatus{StatusPending, StatusPaid, StatusCancelled}

type Currency string

const (
	CurrencyNaira Currency = "naira"
	CurrencyUSD   Currency = "usd"
)

func (c Currency) Valid() bool {
	return c == CurrencyNaira || c == CurrencyUSD
}

// Booking is one participant's record of a trip. The primary traveler's
// record has IsPrimary set; each attached companion gets a mirrored record
// sharing PackageName.
type Booking struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	BookingID        string               `bson:"bookingId" json:"bookingId"`
	PackageName      string               `bson:"packageName" json:"packageName"`
	UserID           primitive.ObjectID   `bson:"userId" json:"userId"`
	DestinationID    primitive.ObjectID   `bson:"destinationId" json:"destinationId"`
	PrimaryBookingID *primitive.ObjectID  `bson:"primaryBookingId,omitempty" json:"primaryBookingId,omitempty"`
	TravelDate       time.Time            `bson:"travelDate" json:"travelDate"`
	ReturnDate       *time.Time           `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	BookingDate      time.Time            `bson:"bookingDate" json:"bookingDate"`
	TotalAmount      float64              `bson:"totalAmount" json:"totalAmount"`
	BookingAmount    float64              `bson:"bookingAmount" json:"bookingAmount"`
	Currency         Currency             `bson:"currency" json:"currency"`
	Description      string               `bson:"description,omitempty" json:"description,omitempty"`
	Status           BookingStatus        `bson:"status" json:"status"`
	Documents        []Attachment         `bson:"documents" json:"documents"`
	Itineraries      []Attachment         `bson:"itineraries" json:"itineraries"`
	Companions       []primitive.ObjectID `bson:"companions" json:"companions"`
	IsPrimary        bool                 `bson:"isPrimary" json:"isPrimary"`
	IsActive         bool                 `bson:"isActive" json:"isActive"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`

	// Populated on read.
	User        *AccountSummary `bson:"-" json:"user,omitempty"`
	Destination *Destination    `bson:"-" json:"destination,omitempty"`
}

func (b *Booking) BeforeCreate(now time.Time) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.Documents == nil {
		b.Documents = []Attachment{}
	}
	if b.Itineraries == nil {
		b.Itineraries = []Attachment{}
	}
	if b.Companions == nil {
		b.Companions = []primitive.ObjectID{}
	}
	if b.BookingDate.IsZero() {
		b.BookingDate = now
	}
	b.IsActive = true
	b.CreatedAt = now
	b.UpdatedAt = now
}

// MirrorFor builds the companion-side record for userID from a primary booking.
func (b *Booking) MirrorFor(userID primitive.ObjectID, bookingID string) *Booking {
	primaryID := b.ID
	return &Booking{
		BookingID:        bookingID,
		PackageName:      b.PackageName,
		UserID:           userID,
		DestinationID:    b.DestinationID,
		PrimaryBookingID: &primaryID,
		TravelDate:       b.TravelDate,
		ReturnDate:       b.ReturnDate,
		BookingDate:      b.BookingDate,
		TotalAmount:      b.TotalAmount,
		BookingAmount:    b.BookingAmount,
		Currency:         b.Currency,
		Description:      b.Description,
		Status:           b.Status,
		Documents:        append([]Attachment{}, b.Documents...),
		Itineraries:      append([]Attachment{}, b.Itineraries...),
		Companions:       []primitive.ObjectID{},
		IsPrimary:        false,
		IsActive:         b.IsActive,
	}
}

// SyncTrip copies trip details from the primary booking onto a companion record.
func (b *Booking) SyncTrip(primary *Booking) {
	b.DestinationID = primary.DestinationID
	b.TravelDate = primary.TravelDate
	b.ReturnDate = primary.ReturnDate
	b.TotalAmount = primary.TotalAmount
	b.BookingAmount = primary.BookingAmount
	b.Currency = primary.Currency
	b.Description = primary.Description
	b.Status = primary.Status
	b.Documents = append([]Attachment{}, primary.Documents...)
	b.Itineraries = append([]Attachment{}, primary.Itineraries...)
	b.IsActive = primary.IsActive
}

func (b *Booking) HasCompanion(id primitive.ObjectID) bool {
	for _, c := range b.Companions {
		if c == id {
			return true
		}
	}
	return false
}

// BookingFilter is a conjunctive filter; zero fields are ignored.
// Inactive bookings are excluded unless IncludeInactive is set.
type BookingFilter struct {
	UserID          *primitive.ObjectID
	DestinationID   *primitive.ObjectID
	Status          BookingStatus
	PackageName     string
	Search          string
	IsPrimary       *bool
	Currency        Currency
	TravelFrom      *time.Time
	TravelTo        *time.Time
	CreatedFrom     *time.Time
	IncludeInactive bool
}

// CurrencyTotals is one currency's share of a booking aggregation.
type CurrencyTotals struct {
	Currency      Currency `bson:"_id" json:"currency"`
	Count         int64    `bson:"count" json:"count"`
	TotalAmount   float64  `bson:"totalAmount" json:"totalAmount"`
	BookingAmount float64  `bson:"bookingAmount" json:"bookingAmount"`
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, b *Booking) error
	FindBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	FindBookingByCode(ctx context.Context, bookingID string) (*Booking, error)
	SaveBooking(ctx context.Context, b *Booking) error
	// UpsertCompanionBooking creates or refreshes the companion record keyed
	// by (UserID, PackageName, non-primary).
	UpsertCompanionBooking(ctx context.Context, b *Booking) (*Booking, error)
	AddBookingCompanion(ctx context.Context, bookingID, companionID primitive.ObjectID) error
	RemoveBookingCompanion(ctx context.Context, bookingID, companionID primitive.ObjectID) error
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error
	ListBookings(ctx context.Context, filter BookingFilter, opts ListOptions) ([]*Booking, int64, error)
	CountBookings(ctx context.Context, filter BookingFilter) (int64, error)
	SumBookings(ctx context.Context, filter BookingFilter) ([]CurrencyTotals, error)
}
