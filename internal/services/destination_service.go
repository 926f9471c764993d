package services

import (
	"context"
	"errors"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DestinationInput struct {
	City    string `json:"city" validate:"required,max=100"`
	Country string `json:"country" validate:"required,max=100"`
}

type DestinationUpdate struct {
	City     *string `json:"city" validate:"omitempty,max=100"`
	Country  *string `json:"country" validate:"omitempty,max=100"`
	IsActive *bool   `json:"isActive"`
}

type BulkFailure struct {
	Index   int    `json:"index"`
	City    string `json:"city"`
	Country string `json:"country"`
	Error   string `json:"error"`
}

type BulkCreateResult struct {
	Created []*models.Destination `json:"created"`
	Failed  []BulkFailure         `json:"failed"`
}

type DestinationService struct {
	destinations models.DestinationRepo
}

func NewDestinationService(destinations models.DestinationRepo) *DestinationService {
	return &DestinationService{destinations: destinations}
}

func destinationExists() error {
	return apperr.Validation("Destination already exists")
}

func (s *DestinationService) Create(ctx context.Context, in DestinationInput) (*models.Destination, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	d := &models.Destination{City: in.City, Country: in.Country}
	d.Normalize()
	if d.City == "" || d.Country == "" {
		return nil, apperr.Validation("City and country are required")
	}

	if _, err := s.destinations.FindDestinationByPlace(ctx, d.City, d.Country); err == nil {
		return nil, destinationExists()
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Internal("Failed to check destination", err)
	}
	if err := s.destinations.CreateDestination(ctx, d); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, destinationExists()
		}
		return nil, apperr.Internal("Failed to create destination", err)
	}
	return d, nil
}

// BulkCreate creates each destination independently and reports the ones
// that failed.
func (s *DestinationService) BulkCreate(ctx context.Context, inputs []DestinationInput) (*BulkCreateResult, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation("At least one destination is required")
	}
	res := &BulkCreateResult{Created: []*models.Destination{}, Failed: []BulkFailure{}}
	for i, in := range inputs {
		d, err := s.Create(ctx, in)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				return nil, err
			}
			res.Failed = append(res.Failed, BulkFailure{Index: i, City: in.City, Country: in.Country, Error: apperr.Message(err)})
			continue
		}
		res.Created = append(res.Created, d)
	}
	return res, nil
}

// Get returns a destination by id, including inactive ones.
func (s *DestinationService) Get(ctx context.Context, id string) (*models.Destination, error) {
	oid, err := parseID(id, "destination")
	if err != nil {
		return nil, err
	}
	d, err := s.destinations.FindDestinationByID(ctx, oid)
	if err != nil {
		return nil, repoErr(err, "Destination not found")
	}
	return d, nil
}

func (s *DestinationService) Update(ctx context.Context, id string, in DestinationUpdate) (*models.Destination, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *d
	if in.City != nil {
		next.City = *in.City
	}
	if in.Country != nil {
		next.Country = *in.Country
	}
	next.Normalize()
	if next.City == "" || next.Country == "" {
		return nil, apperr.Validation("City and country are required")
	}
	if next.City != d.City || next.Country != d.Country {
		other, err := s.destinations.FindDestinationByPlace(ctx, next.City, next.Country)
		if err == nil && other.ID != d.ID {
			return nil, destinationExists()
		}
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, apperr.Internal("Failed to check destination", err)
		}
	}
	if in.IsActive != nil {
		next.IsActive = *in.IsActive
	}

	if err := s.destinations.SaveDestination(ctx, &next); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, destinationExists()
		}
		return nil, repoErr(err, "Destination not found")
	}
	return &next, nil
}

// Delete soft deletes a destination.
func (s *DestinationService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "destination")
	if err != nil {
		return err
	}
	n, err := s.destinations.SetDestinationsActive(ctx, []primitive.ObjectID{oid}, false)
	if err != nil {
		return apperr.Internal("Failed to delete destination", err)
	}
	if n == 0 {
		return apperr.NotFound("Destination not found")
	}
	return nil
}

func (s *DestinationService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("At least one destination id is required")
	}
	oids, err := parseIDs(ids, "destination")
	if err != nil {
		return 0, err
	}
	n, err := s.destinations.SetDestinationsActive(ctx, oids, false)
	if err != nil {
		return 0, apperr.Internal("Failed to delete destinations", err)
	}
	return n, nil
}

func (s *DestinationService) List(ctx context.Context, page, limit int, search string) (models.Page[*models.Destination], error) {
	items, total, err := s.destinations.ListDestinations(ctx, models.DestinationFilter{Search: search}, models.PageOptions(page, limit))
	if err != nil {
		return models.Page[*models.Destination]{}, apperr.Internal("Failed to list destinations", err)
	}
	return models.NewPage(items, page, limit, total), nil
}

// ListActive returns every active destination, alphabetically by city.
func (s *DestinationService) ListActive(ctx context.Context) ([]*models.Destination, error) {
	items, _, err := s.destinations.ListDestinations(ctx, models.DestinationFilter{}, models.ListOptions{SortField: "city", Ascending: true})
	if err != nil {
		return nil, apperr.Internal("Failed to list destinations", err)
	}
	if items == nil {
		items = []*models.Destination{}
	}
	return items, nil
}
