package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Destination struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	City      string             `bson:"city" json:"city" validate:"required,max=100"`
	Country   string             `bson:"country" json:"country" validate:"required,max=100"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize lower-cases city and country so the compound unique index
// treats "Lagos, Nigeria" and "lagos, nigeria" as the same place.
func (d *Destination) Normalize() {
	d.City = strings.ToLower(strings.TrimSpace(d.City))
	d.Country = strings.ToLower(strings.TrimSpace(d.Country))
}

func (d *Destination) BeforeCreate(now time.Time) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.Normalize()
	d.IsActive = true
	d.CreatedAt = now
	d.UpdatedAt = now
}

func (d *Destination) Label() string {
	return d.City + ", " + d.Country
}

type DestinationFilter struct {
	IncludeInactive bool
	Search          string
}

type DestinationRepo interface {
	CreateDestination(ctx context.Context, d *Destination) error
	FindDestinationByID(ctx context.Context, id primitive.ObjectID) (*Destination, error)
	FindDestinationByPlace(ctx context.Context, city, country string) (*Destination, error)
	SaveDestination(ctx context.Context, d *Destination) error
	ListDestinations(ctx context.Context, filter DestinationFilter, opts ListOptions) ([]*Destination, int64, error)
	SetDestinationsActive(ctx context.Context, ids []primitive.ObjectID, active bool) (int64, error)
}
