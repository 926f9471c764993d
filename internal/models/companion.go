package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Relationship string

const (
	RelationshipFriend    Relationship = "friend"
	RelationshipFamily    Relationship = "family"
	RelationshipSpouse    Relationship = "spouse"
	RelationshipColleague Relationship = "colleague"
	RelationshipOther     Relationship = "other"
)

func (r Relationship) Valid() bool {
	switch r {
	case RelationshipFriend, RelationshipFamily, RelationshipSpouse, RelationshipColleague, RelationshipOther:
		return true
	}
	return false
}

// AttachState records how far an attach run got for one (booking, email) pair.
type AttachState string

const (
	AttachPending  AttachState = "pending"
	AttachAttached AttachState = "attached"
)

// Companion links a travelling companion to a primary user and booking.
// Credentials are replicated across every record sharing the same email.
type Companion struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FirstName          string              `bson:"firstName" json:"firstName"`
	LastName           string              `bson:"lastName" json:"lastName"`
	Email              string              `bson:"email" json:"email"`
	PhoneNumber        string              `bson:"phoneNumber" json:"phoneNumber"`
	Relationship       Relationship        `bson:"relationship" json:"relationship"`
	Password           string              `bson:"password,omitempty" json:"-"`
	TempPassword       string              `bson:"tempPassword,omitempty" json:"-"`
	IsRegistered       bool                `bson:"isRegistered" json:"isRegistered"`
	UserID             primitive.ObjectID  `bson:"userId" json:"userId"`
	AccountID          primitive.ObjectID  `bson:"accountId,omitempty" json:"accountId,omitempty"`
	BookingID          primitive.ObjectID  `bson:"bookingId" json:"bookingId"`
	CompanionBookingID *primitive.ObjectID `bson:"companionBookingId,omitempty" json:"companionBookingId,omitempty"`
	BookingStatus      BookingStatus       `bson:"bookingStatus" json:"bookingStatus"`
	AttachState        AttachState         `bson:"attachState" json:"-"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (c *Companion) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CompanionCredentials is applied to every companion record of one person.
type CompanionCredentials struct {
	Password     string
	TempPassword string
	IsRegistered bool
}

type CompanionRepo interface {
	// UpsertCompanion creates or refreshes the record keyed by (Email, BookingID).
	UpsertCompanion(ctx context.Context, c *Companion) (*Companion, error)
	FindCompanionByID(ctx context.Context, id primitive.ObjectID) (*Companion, error)
	FindCompanion(ctx context.Context, bookingID primitive.ObjectID, email string) (*Companion, error)
	FindCompanionsByEmail(ctx context.Context, email string) ([]*Companion, error)
	ListCompanionsByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*Companion, error)
	SaveCompanion(ctx context.Context, c *Companion) error
	SetCompanionCredentials(ctx context.Context, email string, creds CompanionCredentials) error
	SetCompanionsStatus(ctx context.Context, bookingID primitive.ObjectID, status BookingStatus) error
	DeleteCompanion(ctx context.Context, id primitive.ObjectID) error
}
