package services

import (
	"context"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/memrepo"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/notify"
	"github.com/TimiOdusanya/tourbirth-backend/internal/session"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"go.uber.org/zap"
)

type harness struct {
	repo      *memrepo.Repo
	rec       *notify.Recorder
	blobs     *storage.MemoryStore
	tokens    *helpers.TokenIssuer
	revoker   *session.MemoryRevoker
	bookings  *BookingService
	dests     *DestinationService
	dashboard *DashboardService
	auth      *AuthService
	reviews   *ReviewService
	waitlist  *WaitlistService
	news      *NewsletterService
	contacts  *ContactService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:    memrepo.New(),
		rec:     &notify.Recorder{},
		blobs:   storage.NewMemoryStore(),
		tokens:  helpers.NewTokenIssuer("test-secret", "k1", "tourbirth", nil),
		revoker: session.NewMemoryRevoker(),
	}
	logger := zap.NewNop()
	h.bookings = NewBookingService(BookingDeps{
		Bookings:     h.repo,
		Companions:   h.repo,
		Accounts:     h.repo,
		Destinations: h.repo,
		Blobs:        h.blobs,
		Notifier:     h.rec,
		Logger:       logger,
		FrontendURL:  "http://localhost:3000",
	})
	h.dests = NewDestinationService(h.repo)
	h.dashboard = NewDashboardService(h.repo, h.repo, h.bookings)
	h.auth = NewAuthService(h.repo, h.repo, h.tokens, h.revoker, h.rec, logger, AuthConfig{
		OTPExpiry:   10 * time.Minute,
		FrontendURL: "http://localhost:3000",
	})
	h.reviews = NewReviewService(h.repo, h.blobs, logger)
	h.waitlist = NewWaitlistService(h.repo, h.rec, "http://localhost:3000", logger)
	h.news = NewNewsletterService(h.repo, h.rec, "http://localhost:3000")
	h.contacts = NewContactService(h.repo, h.rec, "http://localhost:3000")
	return h
}

func (h *harness) user(t *testing.T, first, email string) *models.Account {
	t.Helper()
	a := models.NewUserAccount(first, "Traveler", email, models.UserProfile{IsRegistered: true, PhoneNumber: "+2348000000000"})
	if err := h.repo.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return a
}

func (h *harness) destination(t *testing.T, city, country string) *models.Destination {
	t.Helper()
	d, err := h.dests.Create(context.Background(), DestinationInput{City: city, Country: country})
	if err != nil {
		t.Fatalf("Create destination error = %v", err)
	}
	return d
}

func trip(u *models.Account, d *models.Destination) CreateBookingInput {
	return CreateBookingInput{
		UserID:        u.ID.Hex(),
		DestinationID: d.ID.Hex(),
		TravelDate:    time.Now().AddDate(0, 0, 10).Truncate(time.Millisecond),
		TotalAmount:   1000,
		BookingAmount: 400,
		Description:   "Beach week",
	}
}

func companion(first, email string) CompanionInput {
	return CompanionInput{
		FirstName:    first,
		LastName:     "Friend",
		Email:        email,
		PhoneNumber:  "+2348011111111",
		Relationship: models.RelationshipFriend,
	}
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, kind, err)
	}
}

func lastTemplateData(t *testing.T, rec *notify.Recorder, template, to string) map[string]any {
	t.Helper()
	msgs := rec.ByTemplate(template)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].To == to {
			return msgs[i].Data
		}
	}
	t.Fatalf("no %s message to %s", template, to)
	return nil
}

func strPtr(s string) *string { return &s }
