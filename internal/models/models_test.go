package models

import (
	"testing"
	"time"
)

func TestAccountCheckVariant(t *testing.T) {
	tests := []struct {
		name    string
		account *Account
		wantErr bool
	}{
		{"user", NewUserAccount("Ada", "Obi", "ada@example.com", UserProfile{}), false},
		{"admin", NewAdminAccount("Tolu", "Ade", "tolu@example.com", AdminProfile{}), false},
		{"user without profile", &Account{Identity: Identity{Role: RoleUser}}, true},
		{"admin with user payload", &Account{Identity: Identity{Role: RoleAdmin}, Admin: &AdminProfile{}, User: &UserProfile{}}, true},
		{"companion is not an account role", &Account{Identity: Identity{Role: RoleCompanion}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.CheckVariant()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckVariant() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewUserAccountNormalizesEmail(t *testing.T) {
	a := NewUserAccount("Ada", "Obi", "  Ada@Example.COM ", UserProfile{IsRegistered: true})
	if a.Email != "ada@example.com" {
		t.Errorf("Email = %q", a.Email)
	}
	if !a.IsRegistered() {
		t.Error("expected registered user")
	}
	if a.FullName() != "Ada Obi" {
		t.Errorf("FullName() = %q", a.FullName())
	}
}

func TestOTPMatches(t *testing.T) {
	now := time.Now()
	otp := &OTP{Code: "123456", ExpiresAt: now.Add(time.Minute)}

	if !otp.Matches(" 123456 ", now) {
		t.Error("expected match")
	}
	if otp.Matches("654321", now) {
		t.Error("wrong code matched")
	}
	if otp.Matches("123456", now.Add(2*time.Minute)) {
		t.Error("expired code matched")
	}
	var none *OTP
	if none.Matches("123456", now) {
		t.Error("nil OTP matched")
	}
}

func TestDestinationNormalize(t *testing.T) {
	d := &Destination{City: " Lagos ", Country: "NIGERIA"}
	d.BeforeCreate(time.Now())
	if d.City != "lagos" || d.Country != "nigeria" {
		t.Errorf("got %q, %q", d.City, d.Country)
	}
	if !d.IsActive || d.ID.IsZero() {
		t.Error("new destination should be active with an id")
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		wantPages   int
		wantNext    bool
		wantPrev    bool
	}{
		{1, 10, 25, 3, true, false},
		{3, 10, 25, 3, false, true},
		{2, 5, 10, 2, false, true},
		{1, 10, 0, 0, false, false},
	}
	for _, tt := range tests {
		p := NewPagination(tt.page, tt.limit, tt.total)
		if p.TotalPages != tt.wantPages || p.HasNextPage != tt.wantNext || p.HasPrevPage != tt.wantPrev {
			t.Errorf("NewPagination(%d,%d,%d) = %+v", tt.page, tt.limit, tt.total, p)
		}
	}
}

func TestPageOptions(t *testing.T) {
	opts := PageOptions(3, 10)
	if opts.Skip != 20 || opts.Limit != 10 {
		t.Errorf("PageOptions(3, 10) = %+v", opts)
	}
	if PageOptions(0, 10).Skip != 0 {
		t.Error("page 0 should clamp to first page")
	}
}

func TestLeadQuery(t *testing.T) {
	q := leadQuery(LeadFilter{Search: "bali"}, "name", "email")
	if q["isActive"] != true {
		t.Errorf("expected active-only default, got %v", q)
	}
	inactive := false
	q = leadQuery(LeadFilter{IsActive: &inactive})
	if q["isActive"] != false {
		t.Errorf("expected explicit isActive=false, got %v", q)
	}
}
