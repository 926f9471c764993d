package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookingQueryDefaultsToActive(t *testing.T) {
	q := bookingQuery(BookingFilter{})
	if q["isActive"] != true {
		t.Errorf("expected isActive filter, got %v", q)
	}

	q = bookingQuery(BookingFilter{IncludeInactive: true})
	if _, ok := q["isActive"]; ok {
		t.Errorf("IncludeInactive should drop isActive filter, got %v", q)
	}
}

func TestBookingQueryConjunction(t *testing.T) {
	user := primitive.NewObjectID()
	primary := true
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	q := bookingQuery(BookingFilter{
		UserID:     &user,
		Status:     StatusPaid,
		IsPrimary:  &primary,
		Currency:   CurrencyUSD,
		Search:     "TB-1.2",
		TravelFrom: &from,
	})

	if q["userId"] != user {
		t.Errorf("userId = %v", q["userId"])
	}
	if q["status"] != StatusPaid {
		t.Errorf("status = %v", q["status"])
	}
	if q["isPrimary"] != true {
		t.Errorf("isPrimary = %v", q["isPrimary"])
	}
	window, ok := q["travelDate"].(bson.M)
	if !ok || window["$gte"] != from {
		t.Errorf("travelDate = %v", q["travelDate"])
	}
	if _, hasUpper := window["$lte"]; hasUpper {
		t.Error("unexpected upper bound")
	}

	or, ok := q["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("$or = %v", q["$or"])
	}
	re := or[0].(bson.M)["bookingId"].(primitive.Regex)
	if re.Pattern != `TB-1\.2` || re.Options != "i" {
		t.Errorf("search regex = %+v, want escaped case-insensitive", re)
	}
}

func TestMirrorForCopiesTrip(t *testing.T) {
	ret := time.Now().Add(72 * time.Hour)
	primary := &Booking{
		ID:            primitive.NewObjectID(),
		PackageName:   "TB-ABC",
		TravelDate:    time.Now().Add(24 * time.Hour),
		ReturnDate:    &ret,
		TotalAmount:   1500,
		BookingAmount: 500,
		Currency:      CurrencyNaira,
		Status:        StatusPaid,
		Documents:     []Attachment{{Name: "visa.pdf"}},
		IsPrimary:     true,
		IsActive:      true,
	}
	companion := primitive.NewObjectID()

	mirror := primary.MirrorFor(companion, "TB-XYZ")
	if mirror.IsPrimary {
		t.Error("mirror must not be primary")
	}
	if mirror.PackageName != primary.PackageName || mirror.UserID != companion {
		t.Errorf("mirror = %+v", mirror)
	}
	if mirror.PrimaryBookingID == nil || *mirror.PrimaryBookingID != primary.ID {
		t.Error("mirror should reference the primary booking")
	}
	mirror.Documents[0].Name = "changed"
	if primary.Documents[0].Name != "visa.pdf" {
		t.Error("mirror documents must not alias the primary slice")
	}
}

func TestBookingStatusValid(t *testing.T) {
	for _, s := range BookingStatuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if BookingStatus("confirmed").Valid() {
		t.Error("confirmed is not a booking status")
	}
}
