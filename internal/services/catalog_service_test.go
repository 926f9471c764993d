package services

import (
	"context"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDestinationDuplicatesIgnoreCase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	d, err := h.dests.Create(ctx, DestinationInput{City: "Lagos", Country: "Nigeria"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if d.City != "lagos" || d.Country != "nigeria" || !d.IsActive {
		t.Errorf("destination = %+v, want normalized and active", d)
	}

	_, err = h.dests.Create(ctx, DestinationInput{City: " lagos ", Country: "NIGERIA"})
	wantKind(t, err, apperr.KindValidation)
	if apperr.HTTPStatus(err) != 400 {
		t.Errorf("HTTPStatus = %d, want 400", apperr.HTTPStatus(err))
	}
}

func TestDestinationBulkCreate(t *testing.T) {
	h := newHarness(t)
	res, err := h.dests.BulkCreate(context.Background(), []DestinationInput{
		{City: "Lagos", Country: "Nigeria"},
		{City: "Accra", Country: "Ghana"},
		{City: "LAGOS", Country: "nigeria"},
		{City: "", Country: "Kenya"},
	})
	if err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	if len(res.Created) != 2 || len(res.Failed) != 2 {
		t.Fatalf("created = %d failed = %d, want 2 and 2", len(res.Created), len(res.Failed))
	}
	if res.Failed[0].Index != 2 || res.Failed[1].Index != 3 {
		t.Errorf("failed indexes = %d, %d, want 2, 3", res.Failed[0].Index, res.Failed[1].Index)
	}
}

func TestDestinationUpdateAndSoftDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lagos := h.destination(t, "Lagos", "Nigeria")
	accra := h.destination(t, "Accra", "Ghana")

	_, err := h.dests.Update(ctx, accra.ID.Hex(), DestinationUpdate{City: strPtr("LAGOS"), Country: strPtr("Nigeria")})
	wantKind(t, err, apperr.KindValidation)

	updated, err := h.dests.Update(ctx, accra.ID.Hex(), DestinationUpdate{City: strPtr("Kumasi")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Label() != "kumasi, ghana" {
		t.Errorf("Label() = %q", updated.Label())
	}

	if err := h.dests.Delete(ctx, lagos.ID.Hex()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	active, err := h.dests.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != accra.ID {
		t.Errorf("ListActive() = %d items", len(active))
	}
	got, err := h.dests.Get(ctx, lagos.ID.Hex())
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if got.IsActive {
		t.Errorf("deleted destination still active")
	}

	err = h.dests.Delete(ctx, primitive.NewObjectID().Hex())
	wantKind(t, err, apperr.KindNotFound)
	_, err = h.dests.Get(ctx, "not-an-id")
	wantKind(t, err, apperr.KindValidation)

	n, err := h.dests.BulkDelete(ctx, []string{accra.ID.Hex(), lagos.ID.Hex()})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("BulkDelete() = %d, want 2", n)
	}
}

func TestReviewModeration(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "Ada", "ada@example.com")

	_, err := h.reviews.Create(ctx, u.ID, ReviewInput{FullName: "Ada", Review: "Lovely", Rating: 5}, []*storage.Upload{
		{Name: "notes.pdf", Data: []byte("%PDF-1.4"), ContentType: "application/pdf"},
	})
	wantKind(t, err, apperr.KindValidation)

	r, err := h.reviews.Create(ctx, u.ID, ReviewInput{FullName: "Ada", Review: "Lovely", Rating: 5}, []*storage.Upload{
		{Name: "beach.png", Data: []byte("\x89PNG"), ContentType: "image/png"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if r.IsApproved || len(r.Images) != 1 {
		t.Errorf("review = %+v, want pending with one image", r)
	}
	if _, err := h.reviews.Create(ctx, u.ID, ReviewInput{FullName: "Ada", Review: "Good", Rating: 4}, nil); err != nil {
		t.Fatal(err)
	}

	public, err := h.reviews.ListPublic(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(public.Items) != 0 {
		t.Errorf("unapproved reviews listed publicly")
	}
	_, err = h.reviews.GetPublic(ctx, r.ID.Hex())
	wantKind(t, err, apperr.KindNotFound)

	if _, err := h.reviews.SetApproved(ctx, r.ID.Hex(), true); err != nil {
		t.Fatal(err)
	}
	public, err = h.reviews.ListPublic(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(public.Items) != 1 {
		t.Errorf("public reviews = %d, want 1", len(public.Items))
	}

	edited, err := h.reviews.UpdateMine(ctx, u.ID, r.ID.Hex(), ReviewUpdate{Review: strPtr("Lovely trip")})
	if err != nil {
		t.Fatal(err)
	}
	if edited.IsApproved {
		t.Errorf("edited review kept its approval")
	}
	_, err = h.reviews.UpdateMine(ctx, primitive.NewObjectID(), r.ID.Hex(), ReviewUpdate{Review: strPtr("hijack")})
	wantKind(t, err, apperr.KindNotFound)

	stats, err := h.reviews.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.Approved != 0 || stats.Pending != 2 || stats.AverageRating != 4.5 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.Distribution[5] != 1 || stats.Distribution[4] != 1 || stats.Distribution[1] != 0 {
		t.Errorf("Distribution = %v", stats.Distribution)
	}

	if err := h.reviews.Delete(ctx, r.ID.Hex()); err != nil {
		t.Fatal(err)
	}
	if h.blobs.Len() != 0 {
		t.Errorf("review images left behind: %d", h.blobs.Len())
	}
	_, err = h.reviews.List(ctx, ReviewQuery{Rating: 9})
	wantKind(t, err, apperr.KindValidation)
}

func TestWaitlistDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := WaitlistInput{Name: "Ada", Email: "Ada@example.com", PhoneNumber: "+2348000000000", TripType: "honeymoon"}

	w, err := h.waitlist.Add(ctx, in)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	_, err = h.waitlist.Add(ctx, in)
	wantKind(t, err, apperr.KindValidation)

	admin := h.rec.ByTemplate("waitlistNotification")
	if len(admin) != 1 || !admin[0].Admin {
		t.Errorf("admin notifications = %+v", admin)
	}
	if len(h.rec.ByTemplate("waitlistConfirmation")) != 1 {
		t.Errorf("want one waitlistConfirmation")
	}

	if err := h.waitlist.Remove(ctx, w.ID.Hex()); err != nil {
		t.Fatal(err)
	}
	if _, err := h.waitlist.Add(ctx, in); err != nil {
		t.Errorf("Add() after removal error = %v", err)
	}

	stats, err := h.waitlist.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.Active != 1 || len(stats.ByTripType) != 1 || stats.ByTripType[0].Count != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestNewsletterSubscribeCycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.news.Subscribe(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	_, err := h.news.Subscribe(ctx, "ADA@example.com")
	wantKind(t, err, apperr.KindValidation)

	if err := h.news.Unsubscribe(ctx, "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := h.news.Unsubscribe(ctx, "ada@example.com"); err != nil {
		t.Errorf("second Unsubscribe() error = %v", err)
	}
	stats, err := h.news.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Active != 0 || stats.Unsubscribed != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	n, err := h.news.Subscribe(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("resubscribe error = %v", err)
	}
	if !n.IsActive || n.UnsubscribedAt != nil {
		t.Errorf("resubscribed entry = %+v", n)
	}

	err = h.news.Unsubscribe(ctx, "nobody@example.com")
	wantKind(t, err, apperr.KindNotFound)
	_, err = h.news.Subscribe(ctx, "not-an-email")
	wantKind(t, err, apperr.KindValidation)
}

func TestContactSubmit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	c, err := h.contacts.Submit(ctx, ContactInput{
		FullName:         "Ada Lovelace",
		Email:            "ada@example.com",
		DreamDestination: "Zanzibar",
		TravelDate:       time.Now().AddDate(0, 2, 0),
		Story:            "Anniversary trip",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !c.IsActive {
		t.Errorf("new contact inactive")
	}
	if len(h.rec.ByTemplate("contactConfirmation")) != 1 || len(h.rec.ByTemplate("contactNotification")) != 1 {
		t.Errorf("messages = %+v", h.rec.Messages())
	}

	list, err := h.contacts.List(ctx, LeadQuery{Page: 1, Limit: 10, DreamDestination: "zanz"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Pagination.TotalItems != 1 {
		t.Errorf("filtered contacts = %d, want 1", list.Pagination.TotalItems)
	}

	if err := h.contacts.Remove(ctx, c.ID.Hex()); err != nil {
		t.Fatal(err)
	}
	list, err = h.contacts.List(ctx, LeadQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if list.Pagination.TotalItems != 0 {
		t.Errorf("removed contact still listed")
	}
}

func TestProfileUpdateAndPicture(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	profiles := NewProfileService(h.repo, h.blobs, nil)
	u := h.user(t, "Ada", "ada@example.com")

	status := models.MaritalMarried
	account, err := profiles.UpdateProfile(ctx, u.ID, ProfileInput{
		FirstName:         strPtr("  "),
		LastName:          strPtr("Byron"),
		MaritalStatus:     &status,
		InstagramUsername: strPtr("@ada"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if account.FirstName != "Ada" || account.LastName != "Byron" || account.User.InstagramUsername != "ada" || account.User.MaritalStatus != status {
		t.Errorf("profile = %+v %+v", account.Identity, account.User)
	}

	_, err = profiles.UploadProfilePicture(ctx, u.ID, &storage.Upload{Name: "cv.pdf", Data: []byte("%PDF"), ContentType: "application/pdf"})
	wantKind(t, err, apperr.KindValidation)

	first, err := profiles.UploadProfilePicture(ctx, u.ID, &storage.Upload{Name: "one.png", Data: []byte("\x89PNG"), ContentType: "image/png"})
	if err != nil {
		t.Fatal(err)
	}
	oldKey := first.ProfilePicture[0].Key
	second, err := profiles.UploadProfilePicture(ctx, u.ID, &storage.Upload{Name: "two.png", Data: []byte("\x89PNG"), ContentType: "image/png"})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.ProfilePicture) != 1 || h.blobs.Has(oldKey) || h.blobs.Len() != 1 {
		t.Errorf("previous picture not replaced: pictures=%d blobs=%d", len(second.ProfilePicture), h.blobs.Len())
	}

	_, err = profiles.UploadMedia(ctx, "secrets", []*storage.Upload{{Name: "a.png", Data: []byte("x"), ContentType: "image/png"}})
	wantKind(t, err, apperr.KindValidation)
	media, err := profiles.UploadMedia(ctx, "", []*storage.Upload{{Name: "a.png", Data: []byte("x"), ContentType: "image/png"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(media) != 1 || media[0].Link == "" {
		t.Errorf("UploadMedia() = %+v", media)
	}
}
