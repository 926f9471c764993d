package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"go.uber.org/zap"
)

// LeadQuery filters the waitlist, newsletter and contact listings.
type LeadQuery struct {
	Page             int
	Limit            int
	IsActive         *bool
	Search           string
	TripType         string
	DreamDestination string
}

func (q LeadQuery) filter() models.LeadFilter {
	return models.LeadFilter{
		IsActive:         q.IsActive,
		Search:           strings.TrimSpace(q.Search),
		TripType:         strings.TrimSpace(q.TripType),
		DreamDestination: strings.TrimSpace(q.DreamDestination),
	}
}

// ---- waitlist

type WaitlistInput struct {
	Name                  string `json:"name" validate:"required,max=100"`
	Email                 string `json:"email" validate:"required,email,max=100"`
	PhoneNumber           string `json:"phoneNumber" validate:"required,max=20"`
	TripType              string `json:"tripType" validate:"required,max=100"`
	AdditionalInformation string `json:"additionalInformation" validate:"max=1000"`
}

type WaitlistUpdate struct {
	Name                  *string `json:"name" validate:"omitempty,max=100"`
	PhoneNumber           *string `json:"phoneNumber" validate:"omitempty,max=20"`
	TripType              *string `json:"tripType" validate:"omitempty,max=100"`
	AdditionalInformation *string `json:"additionalInformation" validate:"omitempty,max=1000"`
	IsActive              *bool   `json:"isActive"`
}

type WaitlistStats struct {
	Total      int64               `json:"total"`
	Active     int64               `json:"active"`
	ByTripType []models.GroupCount `json:"byTripType"`
	Recent     []*models.Waitlist  `json:"recent"`
}

type WaitlistService struct {
	waitlist models.WaitlistRepo
	mail     mailer
	logger   *zap.Logger
}

func NewWaitlistService(waitlist models.WaitlistRepo, notifier Notifier, frontendURL string, logger *zap.Logger) *WaitlistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{
		waitlist: waitlist,
		mail:     mailer{notifier: notifier, frontendURL: frontendURL},
		logger:   logger.Named("waitlist"),
	}
}

func (s *WaitlistService) Add(ctx context.Context, in WaitlistInput) (*models.Waitlist, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	w := &models.Waitlist{
		Name:                  in.Name,
		Email:                 in.Email,
		PhoneNumber:           in.PhoneNumber,
		TripType:              in.TripType,
		AdditionalInformation: in.AdditionalInformation,
	}
	w.Sanitize()

	if _, err := s.waitlist.FindActiveWaitlistByEmail(ctx, w.Email); err == nil {
		return nil, apperr.Validation("This email is already on the waitlist")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Internal("Failed to check waitlist", err)
	}
	if err := s.waitlist.CreateWaitlist(ctx, w); err != nil {
		return nil, apperr.Internal("Failed to join waitlist", err)
	}
	s.logger.Info("waitlist entry added", zap.String("id", w.ID.Hex()), zap.String("trip_type", w.TripType))

	s.mail.send(w.Email, "waitlistConfirmation", map[string]any{"name": w.Name, "tripType": w.TripType})
	s.mail.admin("waitlistNotification", map[string]any{
		"name":                  w.Name,
		"email":                 w.Email,
		"phoneNumber":           w.PhoneNumber,
		"tripType":              w.TripType,
		"additionalInformation": w.AdditionalInformation,
	})
	return w, nil
}

func (s *WaitlistService) List(ctx context.Context, q LeadQuery) (models.Page[*models.Waitlist], error) {
	items, total, err := s.waitlist.ListWaitlist(ctx, q.filter(), models.PageOptions(q.Page, q.Limit))
	if err != nil {
		return models.Page[*models.Waitlist]{}, apperr.Internal("Failed to list waitlist", err)
	}
	return models.NewPage(items, q.Page, q.Limit, total), nil
}

func (s *WaitlistService) Get(ctx context.Context, id string) (*models.Waitlist, error) {
	oid, err := parseID(id, "waitlist")
	if err != nil {
		return nil, err
	}
	w, err := s.waitlist.FindWaitlistByID(ctx, oid)
	if err != nil {
		return nil, repoErr(err, "Waitlist entry not found")
	}
	return w, nil
}

func (s *WaitlistService) Update(ctx context.Context, id string, in WaitlistUpdate) (*models.Waitlist, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.PhoneNumber != nil {
		w.PhoneNumber = *in.PhoneNumber
	}
	if in.TripType != nil {
		w.TripType = *in.TripType
	}
	if in.AdditionalInformation != nil {
		w.AdditionalInformation = *in.AdditionalInformation
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if err := s.waitlist.SaveWaitlist(ctx, w); err != nil {
		return nil, repoErr(err, "Waitlist entry not found")
	}
	return w, nil
}

// Remove soft deletes a waitlist entry.
func (s *WaitlistService) Remove(ctx context.Context, id string) error {
	inactive := false
	_, err := s.Update(ctx, id, WaitlistUpdate{IsActive: &inactive})
	return err
}

func (s *WaitlistService) Stats(ctx context.Context) (*WaitlistStats, error) {
	recent, active, err := s.waitlist.ListWaitlist(ctx, models.LeadFilter{}, models.ListOptions{Limit: 5})
	if err != nil {
		return nil, apperr.Internal("Failed to load waitlist stats", err)
	}
	_, inactive, err := s.waitlist.ListWaitlist(ctx, models.LeadFilter{IsActive: boolPtr(false)}, models.ListOptions{Limit: 1})
	if err != nil {
		return nil, apperr.Internal("Failed to load waitlist stats", err)
	}
	groups, err := s.waitlist.CountWaitlistByTripType(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load waitlist stats", err)
	}
	if recent == nil {
		recent = []*models.Waitlist{}
	}
	if groups == nil {
		groups = []models.GroupCount{}
	}
	return &WaitlistStats{Total: active + inactive, Active: active, ByTripType: groups, Recent: recent}, nil
}

// ---- newsletter

type NewsletterStats struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	Unsubscribed int64 `json:"unsubscribed"`
}

type NewsletterService struct {
	newsletter models.NewsletterRepo
	mail       mailer
	clock      func() time.Time
}

func NewNewsletterService(newsletter models.NewsletterRepo, notifier Notifier, frontendURL string) *NewsletterService {
	return &NewsletterService{
		newsletter: newsletter,
		mail:       mailer{notifier: notifier, frontendURL: frontendURL},
		clock:      time.Now,
	}
}

type subscribeInput struct {
	Email string `json:"email" validate:"required,email,max=100"`
}

// Subscribe adds an address, or reactivates one that unsubscribed earlier.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.Newsletter, error) {
	if err := helpers.ValidateStruct(subscribeInput{Email: strings.TrimSpace(email)}); err != nil {
		return nil, err
	}
	email = models.NormalizeEmail(email)

	n, err := s.newsletter.FindNewsletterByEmail(ctx, email)
	switch {
	case err == nil && n.IsActive:
		return nil, apperr.Validation("This email is already subscribed")
	case err == nil:
		n.IsActive = true
		n.SubscribedAt = s.clock()
		n.UnsubscribedAt = nil
		if err := s.newsletter.SaveNewsletter(ctx, n); err != nil {
			return nil, repoErr(err, "Subscription not found")
		}
	case errors.Is(err, models.ErrNotFound):
		n = &models.Newsletter{Email: email}
		if err := s.newsletter.CreateNewsletter(ctx, n); err != nil {
			if errors.Is(err, models.ErrDuplicate) {
				return nil, apperr.Validation("This email is already subscribed")
			}
			return nil, apperr.Internal("Failed to subscribe", err)
		}
	default:
		return nil, apperr.Internal("Failed to check subscription", err)
	}

	s.mail.send(n.Email, "newsletterConfirmation", map[string]any{"email": n.Email})
	s.mail.admin("newsletterNotification", map[string]any{"email": n.Email})
	return n, nil
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	n, err := s.newsletter.FindNewsletterByEmail(ctx, email)
	if err != nil {
		return repoErr(err, "Subscription not found")
	}
	if !n.IsActive {
		return nil
	}
	at := s.clock()
	n.IsActive = false
	n.UnsubscribedAt = &at
	if err := s.newsletter.SaveNewsletter(ctx, n); err != nil {
		return repoErr(err, "Subscription not found")
	}
	return nil
}

func (s *NewsletterService) List(ctx context.Context, q LeadQuery) (models.Page[*models.Newsletter], error) {
	items, total, err := s.newsletter.ListNewsletter(ctx, q.filter(), models.PageOptions(q.Page, q.Limit))
	if err != nil {
		return models.Page[*models.Newsletter]{}, apperr.Internal("Failed to list subscribers", err)
	}
	return models.NewPage(items, q.Page, q.Limit, total), nil
}

func (s *NewsletterService) Get(ctx context.Context, id string) (*models.Newsletter, error) {
	oid, err := parseID(id, "subscription")
	if err != nil {
		return nil, err
	}
	n, err := s.newsletter.FindNewsletterByID(ctx, oid)
	if err != nil {
		return nil, repoErr(err, "Subscription not found")
	}
	return n, nil
}

func (s *NewsletterService) Stats(ctx context.Context) (*NewsletterStats, error) {
	_, active, err := s.newsletter.ListNewsletter(ctx, models.LeadFilter{}, models.ListOptions{Limit: 1})
	if err != nil {
		return nil, apperr.Internal("Failed to load newsletter stats", err)
	}
	_, inactive, err := s.newsletter.ListNewsletter(ctx, models.LeadFilter{IsActive: boolPtr(false)}, models.ListOptions{Limit: 1})
	if err != nil {
		return nil, apperr.Internal("Failed to load newsletter stats", err)
	}
	return &NewsletterStats{Total: active + inactive, Active: active, Unsubscribed: inactive}, nil
}

// ---- contact

type ContactInput struct {
	FullName         string    `json:"fullName" validate:"required,max=100"`
	Email            string    `json:"email" validate:"required,email,max=100"`
	DreamDestination string    `json:"dreamDestination" validate:"required,max=100"`
	TravelDate       time.Time `json:"travelDate" validate:"required"`
	Story            string    `json:"story" validate:"required,max=2000"`
}

type ContactUpdate struct {
	FullName         *string    `json:"fullName" validate:"omitempty,max=100"`
	DreamDestination *string    `json:"dreamDestination" validate:"omitempty,max=100"`
	TravelDate       *time.Time `json:"travelDate"`
	Story            *string    `json:"story" validate:"omitempty,max=2000"`
	IsActive         *bool      `json:"isActive"`
}

type ContactService struct {
	contacts models.ContactRepo
	mail     mailer
}

func NewContactService(contacts models.ContactRepo, notifier Notifier, frontendURL string) *ContactService {
	return &ContactService{
		contacts: contacts,
		mail:     mailer{notifier: notifier, frontendURL: frontendURL},
	}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.Contact, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	c := &models.Contact{
		FullName:         in.FullName,
		Email:            in.Email,
		DreamDestination: in.DreamDestination,
		TravelDate:       in.TravelDate,
		Story:            in.Story,
	}
	if err := s.contacts.CreateContact(ctx, c); err != nil {
		return nil, apperr.Internal("Failed to submit contact form", err)
	}

	s.mail.send(c.Email, "contactConfirmation", map[string]any{
		"fullName":         c.FullName,
		"dreamDestination": c.DreamDestination,
	})
	s.mail.admin("contactNotification", map[string]any{
		"fullName":         c.FullName,
		"email":            c.Email,
		"dreamDestination": c.DreamDestination,
		"travelDate":       dayString(c.TravelDate),
		"story":            c.Story,
	})
	return c, nil
}

func (s *ContactService) List(ctx context.Context, q LeadQuery) (models.Page[*models.Contact], error) {
	items, total, err := s.contacts.ListContacts(ctx, q.filter(), models.PageOptions(q.Page, q.Limit))
	if err != nil {
		return models.Page[*models.Contact]{}, apperr.Internal("Failed to list contacts", err)
	}
	return models.NewPage(items, q.Page, q.Limit, total), nil
}

func (s *ContactService) Get(ctx context.Context, id string) (*models.Contact, error) {
	oid, err := parseID(id, "contact")
	if err != nil {
		return nil, err
	}
	c, err := s.contacts.FindContactByID(ctx, oid)
	if err != nil {
		return nil, repoErr(err, "Contact not found")
	}
	return c, nil
}

func (s *ContactService) Update(ctx context.Context, id string, in ContactUpdate) (*models.Contact, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		c.FullName = *in.FullName
	}
	if in.DreamDestination != nil {
		c.DreamDestination = *in.DreamDestination
	}
	if in.TravelDate != nil {
		c.TravelDate = *in.TravelDate
	}
	if in.Story != nil {
		c.Story = *in.Story
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.contacts.SaveContact(ctx, c); err != nil {
		return nil, repoErr(err, "Contact not found")
	}
	return c, nil
}

func (s *ContactService) Remove(ctx context.Context, id string) error {
	inactive := false
	_, err := s.Update(ctx, id, ContactUpdate{IsActive: &inactive})
	return err
}
