package services

import (
	"context"
	"strings"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProfileInput updates the fields that are set. Admin accounts only use
// names, phone number, gender and address.
type ProfileInput struct {
	FirstName         *string               `json:"firstName" validate:"omitempty,max=50"`
	LastName          *string               `json:"lastName" validate:"omitempty,max=50"`
	PhoneNumber       *string               `json:"phoneNumber" validate:"omitempty,max=20"`
	Gender            *models.Gender        `json:"gender" validate:"omitempty,oneof=male female others"`
	DateOfBirth       *time.Time            `json:"dateOfBirth"`
	MaritalStatus     *models.MaritalStatus `json:"maritalStatus" validate:"omitempty,oneof=single married divorced widowed other"`
	AnniversaryDate   *time.Time            `json:"anniversaryDate"`
	Address           *string               `json:"address" validate:"omitempty,max=200"`
	InstagramUsername *string               `json:"instagramUsername" validate:"omitempty,max=50"`
}

type ProfileService struct {
	accounts models.AccountRepo
	blobs    storage.BlobStore
	logger   *zap.Logger
}

func NewProfileService(accounts models.AccountRepo, blobs storage.BlobStore, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		accounts: accounts,
		blobs:    blobs,
		logger:   logger.Named("profile"),
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	account, err := s.accounts.FindAccountByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "User not found")
	}
	return account, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.Account, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	account, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	trim := func(p *string) string { return strings.TrimSpace(*p) }
	if in.FirstName != nil && trim(in.FirstName) != "" {
		account.FirstName = trim(in.FirstName)
	}
	if in.LastName != nil && trim(in.LastName) != "" {
		account.LastName = trim(in.LastName)
	}

	switch account.Role {
	case models.RoleUser:
		u := account.User
		if in.PhoneNumber != nil {
			u.PhoneNumber = trim(in.PhoneNumber)
		}
		if in.Gender != nil {
			u.Gender = *in.Gender
		}
		if in.DateOfBirth != nil {
			u.DateOfBirth = in.DateOfBirth
		}
		if in.MaritalStatus != nil {
			u.MaritalStatus = *in.MaritalStatus
		}
		if in.AnniversaryDate != nil {
			u.AnniversaryDate = in.AnniversaryDate
		}
		if in.Address != nil {
			u.Address = trim(in.Address)
		}
		if in.InstagramUsername != nil {
			u.InstagramUsername = strings.TrimPrefix(trim(in.InstagramUsername), "@")
		}
	case models.RoleAdmin:
		a := account.Admin
		if in.PhoneNumber != nil {
			a.PhoneNumber = trim(in.PhoneNumber)
		}
		if in.Gender != nil {
			a.Gender = *in.Gender
		}
		if in.Address != nil {
			a.Address = trim(in.Address)
		}
	}

	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return nil, repoErr(err, "User not found")
	}
	return account, nil
}

// UploadProfilePicture replaces the account's picture with a single image.
func (s *ProfileService) UploadProfilePicture(ctx context.Context, id primitive.ObjectID, upload *storage.Upload) (*models.Account, error) {
	if upload == nil {
		return nil, apperr.Validation("No file uploaded")
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, apperr.Validation("Profile picture must be an image")
	}
	account, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	stored, err := storage.PutAll(ctx, s.blobs, storage.PurposeProfilePicture, []*storage.Upload{upload})
	if err != nil {
		return nil, err
	}
	previous := account.ProfilePicture
	account.ProfilePicture = stored
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		if derr := storage.DeleteAll(context.WithoutCancel(ctx), s.blobs, stored); derr != nil {
			s.logger.Error("failed to clean up profile picture", zap.Error(derr))
		}
		return nil, repoErr(err, "User not found")
	}
	if err := storage.DeleteAll(ctx, s.blobs, previous); err != nil {
		s.logger.Warn("failed to delete previous profile picture", zap.String("account_id", id.Hex()), zap.Error(err))
	}
	return account, nil
}

// UploadMedia stores files for admin use, outside any booking.
func (s *ProfileService) UploadMedia(ctx context.Context, purpose string, uploads []*storage.Upload) ([]models.Attachment, error) {
	switch purpose {
	case "":
		purpose = storage.PurposeMedia
	case storage.PurposeMedia, storage.PurposeDocuments, storage.PurposeItineraries, storage.PurposeReviews:
	default:
		return nil, apperr.Validation("Unknown upload purpose " + purpose)
	}
	if len(uploads) == 0 {
		return nil, apperr.Validation("No files uploaded")
	}
	return storage.PutAll(ctx, s.blobs, purpose, uploads)
}
