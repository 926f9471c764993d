package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type captureSender struct {
	mu   sync.Mutex
	sent map[string][]*Rendered
	err  error
}

func (s *captureSender) Send(_ context.Context, to string, msg *Rendered) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.sent == nil {
		s.sent = make(map[string][]*Rendered)
	}
	s.sent[to] = append(s.sent[to], msg)
	return nil
}

func (s *captureSender) count(to string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent[to])
}

func TestCatalogRendersEveryTemplate(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	want := []string{
		"accountVerification", "bookingStatusChanged", "companionAdded", "companionWelcome",
		"contactConfirmation", "contactNotification", "newsletterConfirmation", "newsletterNotification",
		"passwordReset", "waitlistConfirmation", "waitlistNotification", "welcomeEmail",
	}
	if got := c.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Names() = %v", got)
	}
	for _, name := range want {
		if _, err := c.Render(name, map[string]any{}); err != nil {
			t.Errorf("Render(%s) error = %v", name, err)
		}
	}
}

func TestCatalogEscapesHTML(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	r, err := c.Render("companionWelcome", map[string]any{
		"companionName": "<script>x</script>",
		"tempPassword":  "Ab3dEf7h",
		"bookingId":     "TB-1-ABCDE",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(r.HTML, "<script>") {
		t.Error("HTML body must escape data")
	}
	if !strings.Contains(r.HTML, "Ab3dEf7h") || !strings.Contains(r.Text, "TB-1-ABCDE") {
		t.Error("rendered message is missing data")
	}
	if r.Subject != "Welcome to TourBirth - Trip Companion" {
		t.Errorf("Subject = %q", r.Subject)
	}
	if _, err := c.Render("missing", nil); err == nil {
		t.Error("unknown template should fail")
	}
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	c, _ := LoadCatalog()
	mailer := &captureSender{}
	alerts := &captureSender{}
	d := NewDispatcher(c, mailer, zap.NewNop(), Options{
		Workers:      2,
		QueueSize:    16,
		AdminAddress: "ops@tourbirth.test",
		Alerts:       alerts,
	})

	d.Notify(Message{To: "ada@example.com", Template: "welcomeEmail", Data: map[string]any{"name": "Ada"}})
	d.Notify(Message{Template: "newsletterNotification", Admin: true, Data: map[string]any{"email": "ada@example.com"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if mailer.count("ada@example.com") != 1 || mailer.count("ops@tourbirth.test") != 1 {
		t.Errorf("mailer sent = %v", mailer.sent)
	}
	if alerts.count("ops@tourbirth.test") != 1 {
		t.Errorf("alerts sent = %v", alerts.sent)
	}

	before := testutil.ToFloat64(metrics.Notifications.WithLabelValues("welcomeEmail", "dropped"))
	d.Notify(Message{To: "late@example.com", Template: "welcomeEmail"})
	after := testutil.ToFloat64(metrics.Notifications.WithLabelValues("welcomeEmail", "dropped"))
	if after != before+1 {
		t.Errorf("dropped counter = %v, want %v", after, before+1)
	}
}

func TestDispatcherFailureIsCounted(t *testing.T) {
	c, _ := LoadCatalog()
	mailer := &captureSender{err: errors.New("smtp down")}
	d := NewDispatcher(c, mailer, zap.NewNop(), Options{Workers: 1})

	before := testutil.ToFloat64(metrics.Notifications.WithLabelValues("passwordReset", "failed"))
	d.Notify(Message{To: "ada@example.com", Template: "passwordReset", Data: map[string]any{"otp": "123456"}})
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := testutil.ToFloat64(metrics.Notifications.WithLabelValues("passwordReset", "failed")); got != before+1 {
		t.Errorf("failed counter = %v, want %v", got, before+1)
	}
}

func TestBuildMIME(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "hello@tourbirth.test", "TourBirth")
	raw, err := buildMIME(s.from, "ada@example.com", &Rendered{Subject: "Hi", Text: "plain", HTML: "<p>html</p>"})
	if err != nil {
		t.Fatalf("buildMIME() error = %v", err)
	}
	msg := string(raw)
	for _, want := range []string{"To: ada@example.com", "multipart/alternative", "text/plain", "<p>html</p>", `"TourBirth" <hello@tourbirth.test>`} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if s.addr != "smtp.example.com:587" {
		t.Errorf("addr = %q", s.addr)
	}
}
