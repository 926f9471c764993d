package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/metrics"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Attaching a companion is a sequence of upserts keyed by (booking, email):
//
//  1. companion record, left in the pending state
//  2. backing user account
//  3. companion booking mirroring the primary
//  4. companion id added to the primary's set
//  5. companion record marked attached
//
// Each step is safe to repeat, so a failed run is finished by calling
// AddCompanions again with the same input. Notifications go out only when
// a run completes step 5 for the first time.

type companionBatch struct {
	Companions []CompanionInput `json:"companions" validate:"required,min=1,max=20,dive"`
}

// dedupeCompanions normalizes emails, drops repeats within one request and
// rejects the primary traveler's own address.
func dedupeCompanions(primaryEmail string, inputs []CompanionInput) ([]CompanionInput, error) {
	primaryEmail = models.NormalizeEmail(primaryEmail)
	seen := make(map[string]bool, len(inputs))
	out := make([]CompanionInput, 0, len(inputs))
	for _, in := range inputs {
		in.Email = models.NormalizeEmail(in.Email)
		in.FirstName = strings.TrimSpace(in.FirstName)
		in.LastName = strings.TrimSpace(in.LastName)
		in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
		if in.Email == primaryEmail {
			return nil, apperr.Conflict(fmt.Sprintf("Companion email %s is the primary traveler's email", in.Email))
		}
		if seen[in.Email] {
			continue
		}
		seen[in.Email] = true
		out = append(out, in)
	}
	return out, nil
}

// AddCompanions attaches companions to a primary booking, creating user
// accounts and companion bookings as needed.
func (s *BookingService) AddCompanions(ctx context.Context, ref string, inputs []CompanionInput) (*AttachResult, error) {
	primary, batch, err := s.prepareAttach(ctx, ref, inputs)
	if err != nil {
		return nil, err
	}
	return s.attachAll(ctx, primary.ID, batch)
}

// prepareAttach runs every check that can reject a batch, so a rejected
// batch leaves the booking untouched.
func (s *BookingService) prepareAttach(ctx context.Context, ref string, inputs []CompanionInput) (*models.Booking, []CompanionInput, error) {
	if err := helpers.ValidateStruct(companionBatch{Companions: inputs}); err != nil {
		return nil, nil, err
	}
	primary, err := s.findBooking(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if !primary.IsPrimary {
		return nil, nil, apperr.Validation("Companions can only be added to a primary booking")
	}
	if !primary.IsActive {
		return nil, nil, apperr.Validation("Cannot add companions to a deleted booking")
	}
	owner, err := s.accounts.FindAccountByID(ctx, primary.UserID)
	if err != nil {
		return nil, nil, repoErr(err, "User not found")
	}
	batch, err := dedupeCompanions(owner.Email, inputs)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkCompanionAccounts(ctx, batch); err != nil {
		return nil, nil, err
	}
	return primary, batch, nil
}

// checkCompanionAccounts rejects emails that belong to non-user accounts.
func (s *BookingService) checkCompanionAccounts(ctx context.Context, batch []CompanionInput) error {
	for _, in := range batch {
		account, err := s.accounts.FindAccountByEmail(ctx, in.Email)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return apperr.Internal("Failed to load account", err)
		}
		if account.Role != models.RoleUser {
			return notTravellerErr(in.Email)
		}
	}
	return nil
}

func notTravellerErr(email string) error {
	return apperr.Validation(fmt.Sprintf("%s belongs to an admin account and cannot travel as a companion", email))
}

func (s *BookingService) attachAll(ctx context.Context, primaryID primitive.ObjectID, batch []CompanionInput) (*AttachResult, error) {
	unlock, err := s.locks.Lock(ctx, primaryID.Hex())
	if err != nil {
		return nil, err
	}
	defer unlock()

	primary, err := s.bookings.FindBookingByID(ctx, primaryID)
	if err != nil {
		return nil, repoErr(err, "Booking not found")
	}
	destination := s.destinationLabel(ctx, primary.DestinationID)

	attached := make([]*models.Companion, 0, len(batch))
	for _, in := range batch {
		c, err := s.attachCompanion(ctx, primary, destination, in)
		if err != nil {
			s.logger.Error("companion attach failed",
				zap.String("booking_id", primary.BookingID),
				zap.String("email", in.Email),
				zap.Error(err),
			)
			return nil, err
		}
		attached = append(attached, c)
	}

	updated, err := s.bookings.FindBookingByID(ctx, primaryID)
	if err != nil {
		return nil, repoErr(err, "Booking not found")
	}
	if err := s.populate(ctx, updated); err != nil {
		return nil, err
	}
	return &AttachResult{Booking: updated, Companions: attached}, nil
}

func (s *BookingService) attachCompanion(ctx context.Context, primary *models.Booking, destination string, in CompanionInput) (*models.Companion, error) {
	email := in.Email

	existing, err := s.companions.FindCompanion(ctx, primary.ID, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Internal("Failed to load companion", err)
	}
	wasAttached := existing != nil && existing.AttachState == models.AttachAttached

	account, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Internal("Failed to load account", err)
	}
	if account != nil && account.Role != models.RoleUser {
		return nil, notTravellerErr(email)
	}
	registered := account != nil && account.IsRegistered()

	// Unregistered people get a fresh temporary credential each time they
	// join a booking they were not already on.
	var tempPassword string
	if !registered && !wasAttached {
		if tempPassword, err = helpers.GenerateTempPassword(); err != nil {
			return nil, apperr.Internal("Failed to generate temporary password", err)
		}
	}

	// 1. companion record
	rec := &models.Companion{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         email,
		PhoneNumber:   in.PhoneNumber,
		Relationship:  in.Relationship,
		UserID:        primary.UserID,
		BookingID:     primary.ID,
		BookingStatus: primary.Status,
		IsRegistered:  registered,
	}
	if account != nil {
		rec.AccountID = account.ID
		if registered {
			rec.Password = account.Password
		}
	}
	companion, err := s.companions.UpsertCompanion(ctx, rec)
	if err != nil {
		return nil, apperr.Internal("Failed to save companion", err)
	}
	if tempPassword != "" {
		hash, err := helpers.HashPassword(tempPassword)
		if err != nil {
			return nil, apperr.Internal("Failed to hash temporary password", err)
		}
		if err := s.companions.SetCompanionCredentials(ctx, email, models.CompanionCredentials{TempPassword: hash}); err != nil {
			return nil, apperr.Internal("Failed to store temporary password", err)
		}
	}

	// 2. account
	newAccount := account == nil
	account, err = s.ensureAccount(ctx, account, in)
	if err != nil {
		return nil, err
	}

	// 3. companion booking
	mirror, err := s.upsertMirror(ctx, primary, account.ID)
	if err != nil {
		return nil, err
	}

	// 4. membership on the primary
	if err := s.bookings.AddBookingCompanion(ctx, primary.ID, companion.ID); err != nil {
		return nil, repoErr(err, "Booking not found")
	}

	// 5. attached
	companion, err = s.companions.FindCompanionByID(ctx, companion.ID)
	if err != nil {
		return nil, repoErr(err, "Companion not found")
	}
	companion.AccountID = account.ID
	companion.CompanionBookingID = &mirror.ID
	companion.BookingStatus = primary.Status
	companion.AttachState = models.AttachAttached
	if err := s.companions.SaveCompanion(ctx, companion); err != nil {
		return nil, apperr.Internal("Failed to save companion", err)
	}

	outcome := "existing_account"
	switch {
	case wasAttached:
		outcome = "refreshed"
	case newAccount:
		outcome = "new_account"
	case tempPassword != "":
		outcome = "credential_reissued"
	}
	metrics.CompanionsAttached.WithLabelValues(outcome).Inc()
	s.logger.Info("companion attached",
		zap.String("booking_id", primary.BookingID),
		zap.String("companion_id", companion.ID.Hex()),
		zap.String("outcome", outcome),
	)

	if !wasAttached {
		data := map[string]any{
			"companionName": companion.FullName(),
			"packageName":   primary.PackageName,
			"bookingId":     primary.BookingID,
			"destination":   destination,
			"travelDate":    dayString(primary.TravelDate),
			"description":   primary.Description,
			"email":         email,
		}
		if tempPassword != "" {
			data["tempPassword"] = tempPassword
			s.mail.send(email, "companionWelcome", data)
		} else {
			s.mail.send(email, "companionAdded", data)
		}
	}
	return companion, nil
}

// ensureAccount creates an unregistered user account for a new companion,
// or refreshes the profile of an existing one.
func (s *BookingService) ensureAccount(ctx context.Context, account *models.Account, in CompanionInput) (*models.Account, error) {
	if account == nil {
		fresh := models.NewUserAccount(in.FirstName, in.LastName, in.Email, models.UserProfile{
			PhoneNumber: in.PhoneNumber,
		})
		err := s.accounts.CreateAccount(ctx, fresh)
		if err == nil {
			return fresh, nil
		}
		if !errors.Is(err, models.ErrDuplicate) {
			return nil, apperr.Internal("Failed to create companion account", err)
		}
		// Created by a concurrent request for another booking.
		existing, err := s.accounts.FindAccountByEmail(ctx, in.Email)
		if err != nil {
			return nil, repoErr(err, "User not found")
		}
		return existing, nil
	}

	changed := false
	if !account.IsRegistered() {
		account.FirstName, account.LastName = in.FirstName, in.LastName
		account.User.PhoneNumber = in.PhoneNumber
		changed = true
	} else if account.User.PhoneNumber == "" && in.PhoneNumber != "" {
		account.User.PhoneNumber = in.PhoneNumber
		changed = true
	}
	if changed {
		if err := s.accounts.SaveAccount(ctx, account); err != nil {
			return nil, repoErr(err, "User not found")
		}
	}
	return account, nil
}

// upsertMirror creates or refreshes the companion booking for userID.
func (s *BookingService) upsertMirror(ctx context.Context, primary *models.Booking, userID primitive.ObjectID) (*models.Booking, error) {
	for attempt := 0; attempt < bookingIDAttempts; attempt++ {
		code, err := helpers.GenerateBookingID(s.now())
		if err != nil {
			return nil, apperr.Internal("Failed to generate booking id", err)
		}
		mirror, err := s.bookings.UpsertCompanionBooking(ctx, primary.MirrorFor(userID, code))
		if err == nil {
			return mirror, nil
		}
		if !errors.Is(err, models.ErrDuplicate) {
			return nil, apperr.Internal("Failed to save companion booking", err)
		}
	}
	return nil, apperr.Internal("Failed to allocate a unique booking id", nil)
}
