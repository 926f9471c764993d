package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Waitlist struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                  string             `bson:"name" json:"name" validate:"required,max=100"`
	Email                 string             `bson:"email" json:"email" validate:"required,email,max=100"`
	PhoneNumber           string             `bson:"phoneNumber" json:"phoneNumber" validate:"required,max=20"`
	TripType              string             `bson:"tripType" json:"tripType" validate:"required,max=100"`
	AdditionalInformation string             `bson:"additionalInformation,omitempty" json:"additionalInformation,omitempty" validate:"max=1000"`
	IsActive              bool               `bson:"isActive" json:"isActive"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (w *Waitlist) Sanitize() {
	w.Name = strings.TrimSpace(w.Name)
	w.Email = NormalizeEmail(w.Email)
	w.PhoneNumber = strings.TrimSpace(w.PhoneNumber)
	w.TripType = strings.TrimSpace(w.TripType)
	w.AdditionalInformation = strings.TrimSpace(w.AdditionalInformation)
}

type Newsletter struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email" validate:"required,email,max=100"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	SubscribedAt   time.Time          `bson:"subscribedAt" json:"subscribedAt"`
	UnsubscribedAt *time.Time         `bson:"unsubscribedAt,omitempty" json:"unsubscribedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Contact struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName         string             `bson:"fullName" json:"fullName" validate:"required,max=100"`
	Email            string             `bson:"email" json:"email" validate:"required,email,max=100"`
	DreamDestination string             `bson:"dreamDestination" json:"dreamDestination" validate:"required,max=100"`
	TravelDate       time.Time          `bson:"travelDate" json:"travelDate" validate:"required"`
	Story            string             `bson:"story" json:"story" validate:"required,max=2000"`
	IsActive         bool               `bson:"isActive" json:"isActive"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Contact) Sanitize() {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = NormalizeEmail(c.Email)
	c.DreamDestination = strings.TrimSpace(c.DreamDestination)
	c.Story = strings.TrimSpace(c.Story)
}

// LeadFilter is shared by the waitlist, newsletter and contact listings.
// Inactive entries are excluded unless IsActive says otherwise.
type LeadFilter struct {
	IsActive         *bool
	Search           string
	TripType         string
	DreamDestination string
}

type GroupCount struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

type WaitlistRepo interface {
	CreateWaitlist(ctx context.Context, w *Waitlist) error
	FindWaitlistByID(ctx context.Context, id primitive.ObjectID) (*Waitlist, error)
	FindActiveWaitlistByEmail(ctx context.Context, email string) (*Waitlist, error)
	SaveWaitlist(ctx context.Context, w *Waitlist) error
	ListWaitlist(ctx context.Context, filter LeadFilter, opts ListOptions) ([]*Waitlist, int64, error)
	CountWaitlistByTripType(ctx context.Context) ([]GroupCount, error)
}

type NewsletterRepo interface {
	CreateNewsletter(ctx context.Context, n *Newsletter) error
	FindNewsletterByID(ctx context.Context, id primitive.ObjectID) (*Newsletter, error)
	FindNewsletterByEmail(ctx context.Context, email string) (*Newsletter, error)
	SaveNewsletter(ctx context.Context, n *Newsletter) error
	ListNewsletter(ctx context.Context, filter LeadFilter, opts ListOptions) ([]*Newsletter, int64, error)
}

type ContactRepo interface {
	CreateContact(ctx context.Context, c *Contact) error
	FindContactByID(ctx context.Context, id primitive.ObjectID) (*Contact, error)
	SaveContact(ctx context.Context, c *Contact) error
	ListContacts(ctx context.Context, filter LeadFilter, opts ListOptions) ([]*Contact, int64, error)
}
