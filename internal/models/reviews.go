package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"fullName" json:"fullName" validate:"required,max=100"`
	Review     string             `bson:"review" json:"review" validate:"required,max=1000"`
	Rating     int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Images     []Attachment       `bson:"images" json:"images" validate:"max=10,dive"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	IsApproved bool               `bson:"isApproved" json:"isApproved"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (r *Review) Sanitize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Review = strings.TrimSpace(r.Review)
	if r.Images == nil {
		r.Images = []Attachment{}
	}
}

func (r *Review) BeforeCreate(now time.Time) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.Sanitize()
	r.IsActive = true
	r.IsApproved = false
	r.CreatedAt = now
	r.UpdatedAt = now
}

type ReviewFilter struct {
	UserID     *primitive.ObjectID
	IsApproved *bool
	IsActive   *bool
	Rating     int
	Search     string
}

type ReviewRepo interface {
	CreateReview(ctx context.Context, r *Review) error
	FindReviewByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	SaveReview(ctx context.Context, r *Review) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	ListReviews(ctx context.Context, filter ReviewFilter, opts ListOptions) ([]*Review, int64, error)
	// RatingCounts returns the number of matching reviews per rating value.
	RatingCounts(ctx context.Context, filter ReviewFilter) (map[int]int64, error)
}
