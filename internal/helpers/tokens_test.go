package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("current-secret", "k2", "tourbirth", nil)

	token, exp, err := issuer.Sign(CustomClaims{
		UserID:         "65f1c2d3e4a5b6c7d8e9f012",
		CompanionID:    "65f1c2d3e4a5b6c7d8e9f013",
		Role:           models.RoleCompanion,
		IsTempPassword: true,
	}, CompanionTempTTL)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if time.Until(exp) > CompanionTempTTL || time.Until(exp) < CompanionTempTTL-time.Minute {
		t.Errorf("unexpected expiry %v", exp)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Role != models.RoleCompanion || !claims.IsTempPassword {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Subject != claims.UserID || claims.ID == "" {
		t.Errorf("registered claims not populated: %+v", claims.RegisteredClaims)
	}
	if claims.Remaining() <= 0 {
		t.Error("expected positive remaining lifetime")
	}
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	issuer := NewTokenIssuer("current-secret", "k2", "tourbirth", nil)
	other := NewTokenIssuer("another-secret", "k2", "tourbirth", nil)

	token, _, err := other.Sign(CustomClaims{UserID: "u1", Role: models.RoleUser}, SessionTTL)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("token signed with another secret should not verify")
	}

	good, _, _ := issuer.Sign(CustomClaims{UserID: "u1", Role: models.RoleUser}, SessionTTL)
	parts := strings.Split(good, ".")
	parts[1] = parts[1] + "x"
	if _, err := issuer.Verify(strings.Join(parts, ".")); err == nil {
		t.Error("tampered token should not verify")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "k1", "tourbirth", nil)
	token, _, err := issuer.Sign(CustomClaims{UserID: "u1", Role: models.RoleUser}, -time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestVerifyAcceptsPreviousKey(t *testing.T) {
	old := NewTokenIssuer("old-secret", "k1", "tourbirth", nil)
	token, _, err := old.Sign(CustomClaims{UserID: "u1", Role: models.RoleAdmin}, SessionTTL)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	rotated := NewTokenIssuer("new-secret", "k2", "tourbirth", map[string]string{"k1": "old-secret"})
	claims, err := rotated.Verify(token)
	if err != nil {
		t.Fatalf("Verify() after rotation error = %v", err)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("Role = %q", claims.Role)
	}

	withoutPrevious := NewTokenIssuer("new-secret", "k2", "tourbirth", nil)
	if _, err := withoutPrevious.Verify(token); err == nil {
		t.Error("unknown key id should not verify")
	}
}
