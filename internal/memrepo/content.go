package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---- reviews

func matchReview(rv *models.Review, f models.ReviewFilter) bool {
	switch {
	case f.UserID != nil && rv.UserID != *f.UserID:
		return false
	case f.IsApproved != nil && rv.IsApproved != *f.IsApproved:
		return false
	case f.IsActive != nil && rv.IsActive != *f.IsActive:
		return false
	case f.Rating > 0 && rv.Rating != f.Rating:
		return false
	case f.Search != "" && !anyContains(f.Search, rv.FullName, rv.Review):
		return false
	}
	return true
}

func (r *Repo) CreateReview(_ context.Context, rv *models.Review) error {
	rv.BeforeCreate(ms(time.Now()))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, clone(rv))
	return nil
}

func (r *Repo) FindReviewByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rv := range r.reviews {
		if rv.ID == id {
			return clone(rv), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) SaveReview(_ context.Context, rv *models.Review) error {
	rv.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.reviews {
		if e.ID == rv.ID {
			r.reviews[i] = clone(rv)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) DeleteReview(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rv := range r.reviews {
		if rv.ID == id {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) matchingReviews(f models.ReviewFilter) []*models.Review {
	var out []*models.Review
	for _, rv := range r.reviews {
		if matchReview(rv, f) {
			out = append(out, rv)
		}
	}
	return out
}

func (r *Repo) ListReviews(_ context.Context, f models.ReviewFilter, opts models.ListOptions) ([]*models.Review, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items, total := page(r.matchingReviews(f),
		func(rv *models.Review) time.Time { return rv.CreatedAt },
		func(rv *models.Review) primitive.ObjectID { return rv.ID }, opts)
	return items, total, nil
}

func (r *Repo) RatingCounts(_ context.Context, f models.ReviewFilter) (map[int]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[int]int64{}
	for _, rv := range r.matchingReviews(f) {
		counts[rv.Rating]++
	}
	return counts, nil
}

// ---- leads

func matchActive(isActive bool, f models.LeadFilter) bool {
	if f.IsActive != nil {
		return isActive == *f.IsActive
	}
	return isActive
}

func (r *Repo) CreateWaitlist(_ context.Context, w *models.Waitlist) error {
	now := ms(time.Now())
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	w.Sanitize()
	w.IsActive = true
	w.CreatedAt, w.UpdatedAt = now, now
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waitlist = append(r.waitlist, clone(w))
	return nil
}

func (r *Repo) FindWaitlistByID(_ context.Context, id primitive.ObjectID) (*models.Waitlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.waitlist {
		if w.ID == id {
			return clone(w), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) FindActiveWaitlistByEmail(_ context.Context, email string) (*models.Waitlist, error) {
	email = models.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.waitlist {
		if w.Email == email && w.IsActive {
			return clone(w), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) SaveWaitlist(_ context.Context, w *models.Waitlist) error {
	w.Sanitize()
	w.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.waitlist {
		if e.ID == w.ID {
			r.waitlist[i] = clone(w)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) ListWaitlist(_ context.Context, f models.LeadFilter, opts models.ListOptions) ([]*models.Waitlist, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Waitlist
	for _, w := range r.waitlist {
		switch {
		case !matchActive(w.IsActive, f):
		case f.TripType != "" && !contains(w.TripType, f.TripType):
		case f.Search != "" && !anyContains(f.Search, w.Name, w.Email, w.TripType):
		default:
			out = append(out, w)
		}
	}
	items, total := page(out,
		func(w *models.Waitlist) time.Time { return w.CreatedAt },
		func(w *models.Waitlist) primitive.ObjectID { return w.ID }, opts)
	return items, total, nil
}

func (r *Repo) CountWaitlistByTripType(_ context.Context) ([]models.GroupCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[string]int64{}
	for _, w := range r.waitlist {
		if w.IsActive {
			counts[w.TripType]++
		}
	}
	out := make([]models.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (r *Repo) CreateNewsletter(_ context.Context, n *models.Newsletter) error {
	now := ms(time.Now())
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.Email = models.NormalizeEmail(n.Email)
	n.IsActive = true
	n.SubscribedAt = now
	n.CreatedAt, n.UpdatedAt = now, now
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.newsletter {
		if e.Email == n.Email {
			return dup("email")
		}
	}
	r.newsletter = append(r.newsletter, clone(n))
	return nil
}

func (r *Repo) FindNewsletterByID(_ context.Context, id primitive.ObjectID) (*models.Newsletter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.newsletter {
		if n.ID == id {
			return clone(n), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) FindNewsletterByEmail(_ context.Context, email string) (*models.Newsletter, error) {
	email = models.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.newsletter {
		if n.Email == email {
			return clone(n), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) SaveNewsletter(_ context.Context, n *models.Newsletter) error {
	n.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.newsletter {
		if e.ID == n.ID {
			r.newsletter[i] = clone(n)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) ListNewsletter(_ context.Context, f models.LeadFilter, opts models.ListOptions) ([]*models.Newsletter, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Newsletter
	for _, n := range r.newsletter {
		if matchActive(n.IsActive, f) && (f.Search == "" || contains(n.Email, f.Search)) {
			out = append(out, n)
		}
	}
	items, total := page(out,
		func(n *models.Newsletter) time.Time { return n.SubscribedAt },
		func(n *models.Newsletter) primitive.ObjectID { return n.ID }, opts)
	return items, total, nil
}

func (r *Repo) CreateContact(_ context.Context, c *models.Contact) error {
	now := ms(time.Now())
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.Sanitize()
	c.IsActive = true
	c.CreatedAt, c.UpdatedAt = now, now
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts = append(r.contacts, clone(c))
	return nil
}

func (r *Repo) FindContactByID(_ context.Context, id primitive.ObjectID) (*models.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.contacts {
		if c.ID == id {
			return clone(c), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *Repo) SaveContact(_ context.Context, c *models.Contact) error {
	c.Sanitize()
	c.UpdatedAt = ms(time.Now())
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.contacts {
		if e.ID == c.ID {
			r.contacts[i] = clone(c)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *Repo) ListContacts(_ context.Context, f models.LeadFilter, opts models.ListOptions) ([]*models.Contact, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Contact
	for _, c := range r.contacts {
		switch {
		case !matchActive(c.IsActive, f):
		case f.DreamDestination != "" && !contains(c.DreamDestination, f.DreamDestination):
		case f.Search != "" && !anyContains(f.Search, c.FullName, c.Email, c.DreamDestination, c.Story):
		default:
			out = append(out, c)
		}
	}
	items, total := page(out,
		func(c *models.Contact) time.Time { return c.CreatedAt },
		func(c *models.Contact) primitive.ObjectID { return c.ID }, opts)
	return items, total, nil
}
