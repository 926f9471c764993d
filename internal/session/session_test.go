package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }

	if err := r.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-1"); !revoked {
		t.Error("expected jti-1 to be revoked")
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-2"); revoked {
		t.Error("jti-2 was never revoked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := r.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("revocation should lapse once the token would have expired")
	}

	if err := r.Revoke(ctx, "expired", 0); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, _ := r.IsRevoked(ctx, "expired"); revoked {
		t.Error("tokens with no remaining lifetime need no revocation")
	}
}
