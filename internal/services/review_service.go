package services

import (
	"context"
	"math"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewInput struct {
	FullName string `json:"fullName" form:"fullName" validate:"required,max=100"`
	Review   string `json:"review" form:"review" validate:"required,max=1000"`
	Rating   int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
}

type ReviewUpdate struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Review   *string `json:"review" validate:"omitempty,max=1000"`
	Rating   *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

type ReviewQuery struct {
	Page       int
	Limit      int
	IsApproved *bool
	IsActive   *bool
	Rating     int
	Search     string
}

type ReviewStats struct {
	Total         int64         `json:"total"`
	Approved      int64         `json:"approved"`
	Pending       int64         `json:"pending"`
	Active        int64         `json:"active"`
	AverageRating float64       `json:"averageRating"`
	Distribution  map[int]int64 `json:"distribution"`
}

type ReviewService struct {
	reviews models.ReviewRepo
	blobs   storage.BlobStore
	logger  *zap.Logger
}

func NewReviewService(reviews models.ReviewRepo, blobs storage.BlobStore, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{reviews: reviews, blobs: blobs, logger: logger.Named("reviews")}
}

// Create stores a review awaiting moderation, with optional images.
func (s *ReviewService) Create(ctx context.Context, userID primitive.ObjectID, in ReviewInput, images []*storage.Upload) (*models.Review, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	var stored []models.Attachment
	if len(images) > 0 {
		for _, img := range images {
			if img.ContentType != "image/jpeg" && img.ContentType != "image/png" && img.ContentType != "image/gif" {
				return nil, apperr.Validation("Review images must be JPEG, PNG or GIF")
			}
		}
		var err error
		if stored, err = storage.PutAll(ctx, s.blobs, storage.PurposeReviews, images); err != nil {
			return nil, err
		}
	}

	r := &models.Review{FullName: in.FullName, Review: in.Review, Rating: in.Rating, Images: stored, UserID: userID}
	if err := s.reviews.CreateReview(ctx, r); err != nil {
		if derr := storage.DeleteAll(context.WithoutCancel(ctx), s.blobs, stored); derr != nil {
			s.logger.Error("failed to clean up review images", zap.Error(derr))
		}
		return nil, apperr.Internal("Failed to create review", err)
	}
	return r, nil
}

func (s *ReviewService) list(ctx context.Context, f models.ReviewFilter, page, limit int) (models.Page[*models.Review], error) {
	items, total, err := s.reviews.ListReviews(ctx, f, models.PageOptions(page, limit))
	if err != nil {
		return models.Page[*models.Review]{}, apperr.Internal("Failed to list reviews", err)
	}
	return models.NewPage(items, page, limit, total), nil
}

// ListPublic lists approved, active reviews.
func (s *ReviewService) ListPublic(ctx context.Context, page, limit int) (models.Page[*models.Review], error) {
	return s.list(ctx, models.ReviewFilter{IsApproved: boolPtr(true), IsActive: boolPtr(true)}, page, limit)
}

func (s *ReviewService) GetPublic(ctx context.Context, id string) (*models.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsApproved || !r.IsActive {
		return nil, apperr.NotFound("Review not found")
	}
	return r, nil
}

func (s *ReviewService) ListMine(ctx context.Context, userID primitive.ObjectID, page, limit int) (models.Page[*models.Review], error) {
	return s.list(ctx, models.ReviewFilter{UserID: &userID, IsActive: boolPtr(true)}, page, limit)
}

func (s *ReviewService) List(ctx context.Context, q ReviewQuery) (models.Page[*models.Review], error) {
	if q.Rating < 0 || q.Rating > 5 {
		return models.Page[*models.Review]{}, apperr.Validation("rating must be between 1 and 5")
	}
	return s.list(ctx, models.ReviewFilter{
		IsApproved: q.IsApproved,
		IsActive:   q.IsActive,
		Rating:     q.Rating,
		Search:     q.Search,
	}, q.Page, q.Limit)
}

func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	oid, err := parseID(id, "review")
	if err != nil {
		return nil, err
	}
	r, err := s.reviews.FindReviewByID(ctx, oid)
	if err != nil {
		return nil, repoErr(err, "Review not found")
	}
	return r, nil
}

func (s *ReviewService) own(ctx context.Context, userID primitive.ObjectID, id string) (*models.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID || !r.IsActive {
		return nil, apperr.NotFound("Review not found")
	}
	return r, nil
}

// UpdateMine edits the caller's review. Edited reviews go back to moderation.
func (s *ReviewService) UpdateMine(ctx context.Context, userID primitive.ObjectID, id string, in ReviewUpdate) (*models.Review, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	r, err := s.own(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		r.FullName = *in.FullName
	}
	if in.Review != nil {
		r.Review = *in.Review
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	r.Sanitize()
	if r.FullName == "" || r.Review == "" {
		return nil, apperr.Validation("Name and review text are required")
	}
	r.IsApproved = false
	return r, s.save(ctx, r)
}

// DeleteMine soft deletes the caller's review.
func (s *ReviewService) DeleteMine(ctx context.Context, userID primitive.ObjectID, id string) error {
	r, err := s.own(ctx, userID, id)
	if err != nil {
		return err
	}
	r.IsActive = false
	return s.save(ctx, r)
}

func (s *ReviewService) save(ctx context.Context, r *models.Review) error {
	if err := s.reviews.SaveReview(ctx, r); err != nil {
		return repoErr(err, "Review not found")
	}
	return nil
}

func (s *ReviewService) SetApproved(ctx context.Context, id string, approved bool) (*models.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.IsApproved = approved
	return r, s.save(ctx, r)
}

func (s *ReviewService) ToggleActive(ctx context.Context, id string) (*models.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.IsActive = !r.IsActive
	return r, s.save(ctx, r)
}

// Delete removes a review and its images for good.
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.DeleteReview(ctx, r.ID); err != nil {
		return repoErr(err, "Review not found")
	}
	if err := storage.DeleteAll(ctx, s.blobs, r.Images); err != nil {
		s.logger.Warn("failed to delete review images", zap.String("review_id", r.ID.Hex()), zap.Error(err))
	}
	return nil
}

func (s *ReviewService) Stats(ctx context.Context) (*ReviewStats, error) {
	count := func(f models.ReviewFilter) (int64, error) {
		_, n, err := s.reviews.ListReviews(ctx, f, models.ListOptions{Limit: 1})
		if err != nil {
			return 0, apperr.Internal("Failed to count reviews", err)
		}
		return n, nil
	}

	stats := &ReviewStats{}
	var err error
	if stats.Total, err = count(models.ReviewFilter{}); err != nil {
		return nil, err
	}
	if stats.Approved, err = count(models.ReviewFilter{IsApproved: boolPtr(true)}); err != nil {
		return nil, err
	}
	stats.Pending = stats.Total - stats.Approved
	if stats.Active, err = count(models.ReviewFilter{IsActive: boolPtr(true)}); err != nil {
		return nil, err
	}

	counts, err := s.reviews.RatingCounts(ctx, models.ReviewFilter{})
	if err != nil {
		return nil, apperr.Internal("Failed to aggregate ratings", err)
	}
	stats.Distribution = make(map[int]int64, 5)
	var sum, n int64
	for rating := 1; rating <= 5; rating++ {
		c := counts[rating]
		stats.Distribution[rating] = c
		sum += int64(rating) * c
		n += c
	}
	if n > 0 {
		stats.AverageRating = math.Round(float64(sum)/float64(n)*100) / 100
	}
	return stats, nil
}
