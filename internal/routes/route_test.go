package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/container"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/memrepo"
	"github.com/TimiOdusanya/tourbirth-backend/internal/notify"
	"github.com/TimiOdusanya/tourbirth-backend/internal/session"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const strongPassword = "Str0ng!Pass"

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t      *testing.T
	router *gin.Engine
	rec    *notify.Recorder
	blobs  *storage.MemoryStore
}

type response struct {
	code    int
	body    map[string]any
	raw     *httptest.ResponseRecorder
	cookies []*http.Cookie
}

func newAPI(t *testing.T) *api {
	t.Helper()
	rec := &notify.Recorder{}
	blobs := storage.NewMemoryStore()
	c := container.NewContainer(
		zap.NewNop(),
		memrepo.New(),
		blobs,
		rec,
		helpers.NewTokenIssuer("route-secret", "k1", "tourbirth", nil),
		session.NewMemoryRevoker(),
		container.Options{FrontendURL: "http://localhost:3000", OTPExpiry: 10 * time.Minute},
	)
	return &api{t: t, router: SetupRoutes(c), rec: rec, blobs: blobs}
}

func (a *api) serve(req *http.Request, token string) response {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	res := response{code: w.Code, raw: w, cookies: w.Result().Cookies()}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &res.body); err != nil {
			a.t.Fatalf("invalid JSON from %s %s: %v", req.Method, req.URL, err)
		}
	}
	return res
}

func (a *api) call(method, path string, body any, token string) response {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.serve(req, token)
}

func (a *api) upload(path, field string, files map[string][]byte, token string) response {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			a.t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(data)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.serve(req, token)
}

func (r response) want(t *testing.T, code int) response {
	t.Helper()
	if r.code != code {
		t.Fatalf("status = %d, want %d (body %s)", r.code, code, r.raw.Body.String())
	}
	return r
}

func (r response) data() map[string]any {
	d, _ := r.body["data"].(map[string]any)
	return d
}

func (r response) pagination() map[string]any {
	p, _ := r.data()["pagination"].(map[string]any)
	return p
}

func (a *api) signup(path, email string) map[string]any {
	a.t.Helper()
	return a.call(http.MethodPost, path, map[string]any{
		"firstName": "Test",
		"lastName":  "Person",
		"email":     email,
		"password":  strongPassword,
	}, "").want(a.t, http.StatusCreated).data()
}

func (a *api) login(path, email string) string {
	a.t.Helper()
	res := a.call(http.MethodPost, path, map[string]any{"email": email, "password": strongPassword}, "")
	res.want(a.t, http.StatusOK)
	return res.data()["token"].(string)
}

var pdf = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)
	a.call(http.MethodGet, "/health", nil, "").want(t, http.StatusOK)
	a.call(http.MethodGet, "/api/v1/health", nil, "").want(t, http.StatusOK)

	res := a.call(http.MethodGet, "/metrics", nil, "").want(t, http.StatusOK)
	if !strings.Contains(res.raw.Body.String(), "tourbirth_http_requests_total") {
		t.Fatal("metrics output is missing the request counter")
	}
}

func TestUserSessionLifecycle(t *testing.T) {
	a := newAPI(t)
	a.signup("/api/v1/auth/signup", "ada@example.com")

	login := a.call(http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "ada@example.com", "password": strongPassword}, "")
	login.want(t, http.StatusOK)
	var sessionCookie *http.Cookie
	for _, c := range login.cookies {
		if c.Name == helpers.CookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || !sessionCookie.HttpOnly || sessionCookie.Value == "" {
		t.Fatalf("login did not set an httpOnly session cookie: %+v", login.cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/user-profile", nil)
	req.AddCookie(sessionCookie)
	profile := a.serve(req, "").want(t, http.StatusOK)
	if profile.data()["email"] != "ada@example.com" {
		t.Fatalf("profile email = %v", profile.data()["email"])
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(sessionCookie)
	logout := a.serve(req, "").want(t, http.StatusOK)
	cleared := false
	for _, c := range logout.cookies {
		if c.Name == helpers.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not clear the session cookie")
	}

	a.call(http.MethodGet, "/api/v1/auth/user-profile", nil, sessionCookie.Value).want(t, http.StatusUnauthorized)

	bad := a.call(http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "ada@example.com", "password": "Wr0ng!Pass"}, "")
	bad.want(t, http.StatusBadRequest)
	if bad.body["error"] != "Invalid email or password" {
		t.Fatalf("error = %v", bad.body["error"])
	}
}

func TestAdminBookingFlow(t *testing.T) {
	a := newAPI(t)
	a.signup("/api/v1/auth/admin/signup", "boss@example.com")
	admin := a.login("/api/v1/auth/admin/login", "boss@example.com")
	user := a.signup("/api/v1/auth/signup", "ada@example.com")
	userToken := a.login("/api/v1/auth/login", "ada@example.com")

	dest := a.call(http.MethodPost, "/api/v1/admin/destinations", map[string]any{"city": "Zanzibar", "country": "Tanzania"}, admin).
		want(t, http.StatusCreated).data()

	travel := time.Now().AddDate(0, 0, 10).UTC().Format(time.RFC3339)
	booking := a.call(http.MethodPost, "/api/v1/admin/bookings", map[string]any{
		"userId":        user["id"],
		"destinationId": dest["id"],
		"travelDate":    travel,
		"totalAmount":   1000,
		"bookingAmount": 400,
		"companions": []map[string]any{{
			"firstName":    "Ben",
			"lastName":     "Friend",
			"email":        "ben@example.com",
			"phoneNumber":  "+2348011111111",
			"relationship": "friend",
		}},
	}, admin).want(t, http.StatusCreated).data()
	code, _ := booking["bookingId"].(string)
	if !strings.HasPrefix(code, "TB-") {
		t.Fatalf("bookingId = %q", code)
	}
	if len(a.rec.ByTemplate("companionWelcome")) != 1 {
		t.Fatal("new companion did not receive a welcome email")
	}

	primaries := a.call(http.MethodGet, "/api/v1/admin/bookings?bookingType=primary", nil, admin).want(t, http.StatusOK)
	if primaries.pagination()["totalItems"] != float64(1) {
		t.Fatalf("primary bookings pagination = %v", primaries.pagination())
	}
	all := a.call(http.MethodGet, "/api/v1/admin/bookings?limit=1", nil, admin).want(t, http.StatusOK)
	if p := all.pagination(); p["totalItems"] != float64(2) || p["hasNextPage"] != true {
		t.Fatalf("all bookings pagination = %v", p)
	}

	a.call(http.MethodPost, "/api/v1/admin/bookings/"+code+"/companions", map[string]any{
		"companions": []map[string]any{{
			"firstName":    "Ada",
			"lastName":     "Again",
			"email":        "ada@example.com",
			"phoneNumber":  "+2348022222222",
			"relationship": "other",
		}},
	}, admin).want(t, http.StatusConflict)

	paid := a.call(http.MethodPut, "/api/v1/admin/bookings/"+code+"/status", map[string]any{"status": "paid"}, admin).
		want(t, http.StatusOK).data()
	if paid["status"] != "paid" {
		t.Fatalf("status = %v", paid["status"])
	}

	stats := a.call(http.MethodGet, "/api/v1/admin/dashboard/stats?currency=naira", nil, admin).want(t, http.StatusOK)
	if stats.data() == nil {
		t.Fatal("dashboard stats missing data")
	}
	a.call(http.MethodGet, "/api/v1/admin/dashboard/stats?currency=eur", nil, admin).want(t, http.StatusBadRequest)

	export := a.call(http.MethodGet, "/api/v1/admin/bookings/export", nil, admin).want(t, http.StatusOK)
	if ct := export.raw.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("export content type = %q", ct)
	}
	if !bytes.HasPrefix(export.raw.Body.Bytes(), []byte("PK")) {
		t.Fatal("export is not a zip container")
	}

	mine := a.call(http.MethodGet, "/api/v1/user/bookings", nil, userToken).want(t, http.StatusOK)
	if mine.pagination()["totalItems"] != float64(1) {
		t.Fatalf("user bookings pagination = %v", mine.pagination())
	}
	a.call(http.MethodGet, "/api/v1/user/bookings/"+code, nil, userToken).want(t, http.StatusOK)
	a.call(http.MethodGet, "/api/v1/admin/bookings", nil, userToken).want(t, http.StatusForbidden)
	a.call(http.MethodGet, "/api/v1/admin/bookings", nil, "").want(t, http.StatusUnauthorized)
}

func TestBookingDocuments(t *testing.T) {
	a := newAPI(t)
	a.signup("/api/v1/auth/admin/signup", "boss@example.com")
	admin := a.login("/api/v1/auth/admin/login", "boss@example.com")
	user := a.signup("/api/v1/auth/signup", "ada@example.com")
	dest := a.call(http.MethodPost, "/api/v1/admin/destinations", map[string]any{"city": "Accra", "country": "Ghana"}, admin).
		want(t, http.StatusCreated).data()
	booking := a.call(http.MethodPost, "/api/v1/admin/bookings", map[string]any{
		"userId":        user["id"],
		"destinationId": dest["id"],
		"travelDate":    time.Now().AddDate(0, 1, 0).UTC().Format(time.RFC3339),
		"totalAmount":   500,
		"bookingAmount": 100,
	}, admin).want(t, http.StatusCreated).data()
	base := fmt.Sprintf("/api/v1/admin/bookings/%s", booking["id"])

	up := a.upload(base+"/documents", "documents", map[string][]byte{"visa.pdf": pdf, "ticket.pdf": pdf}, admin).
		want(t, http.StatusOK).data()
	if docs, _ := up["documents"].([]any); len(docs) != 2 {
		t.Fatalf("documents = %v", up["documents"])
	}
	if a.blobs.Len() != 2 {
		t.Fatalf("blob count = %d, want 2", a.blobs.Len())
	}

	left := a.call(http.MethodDelete, base+"/documents/0", nil, admin).want(t, http.StatusOK).data()
	if docs, _ := left["documents"].([]any); len(docs) != 1 {
		t.Fatalf("documents after removal = %v", left["documents"])
	}
	a.call(http.MethodDelete, base+"/documents/x", nil, admin).want(t, http.StatusBadRequest)

	a.upload(base+"/itineraries", "itineraries", map[string][]byte{"run.exe": {0x4d, 0x5a, 0x90, 0x00, 0x03}}, admin).
		want(t, http.StatusBadRequest)

	many := make(map[string][]byte, storage.MaxFiles+1)
	for i := 0; i <= storage.MaxFiles; i++ {
		many[fmt.Sprintf("f%d.pdf", i)] = pdf
	}
	a.upload(base+"/itineraries", "itineraries", many, admin).want(t, http.StatusBadRequest)
}

func TestLeadValidationEnvelope(t *testing.T) {
	a := newAPI(t)
	res := a.call(http.MethodPost, "/api/v1/waitlist", map[string]any{"email": "not-an-email"}, "").want(t, http.StatusBadRequest)
	if res.body["success"] != false {
		t.Fatalf("success = %v", res.body["success"])
	}
	fields, _ := res.body["errors"].(map[string]any)
	if _, found := fields["email"]; !found {
		t.Fatalf("errors = %v, want an email entry", res.body["errors"])
	}

	entry := map[string]any{
		"name":        "Ada",
		"email":       "ada@example.com",
		"phoneNumber": "+2348000000000",
		"tripType":    "group",
	}
	a.call(http.MethodPost, "/api/v1/waitlist", entry, "").want(t, http.StatusCreated)
	a.call(http.MethodPost, "/api/v1/waitlist", entry, "").want(t, http.StatusBadRequest)

	a.call(http.MethodPost, "/api/v1/newsletter/subscribe", map[string]any{"email": "ada@example.com"}, "").want(t, http.StatusCreated)
	a.call(http.MethodPost, "/api/v1/newsletter/unsubscribe", map[string]any{"email": "ada@example.com"}, "").want(t, http.StatusOK)
	a.call(http.MethodPost, "/api/v1/newsletter/subscribe", map[string]any{"email": "ada@example.com"}, "").want(t, http.StatusCreated)
}

func TestPublicReviewsAndDestinations(t *testing.T) {
	a := newAPI(t)
	a.signup("/api/v1/auth/admin/signup", "boss@example.com")
	admin := a.login("/api/v1/auth/admin/login", "boss@example.com")
	a.signup("/api/v1/auth/signup", "ada@example.com")
	userToken := a.login("/api/v1/auth/login", "ada@example.com")

	review := a.call(http.MethodPost, "/api/v1/reviews", map[string]any{"fullName": "Ada", "review": "Lovely trip", "rating": 5}, userToken).
		want(t, http.StatusCreated).data()
	public := a.call(http.MethodGet, "/api/v1/reviews", nil, "").want(t, http.StatusOK)
	if public.pagination()["totalItems"] != float64(0) {
		t.Fatal("unapproved review is publicly listed")
	}
	a.call(http.MethodPatch, fmt.Sprintf("/api/v1/admin/reviews/%s/approve", review["id"]), nil, admin).want(t, http.StatusOK)
	public = a.call(http.MethodGet, "/api/v1/reviews", nil, "").want(t, http.StatusOK)
	if public.pagination()["totalItems"] != float64(1) {
		t.Fatalf("public reviews = %v", public.pagination())
	}
	a.call(http.MethodGet, "/api/v1/reviews/my-reviews", nil, userToken).want(t, http.StatusOK)

	bulk := a.call(http.MethodPost, "/api/v1/admin/destinations/bulk", map[string]any{"destinations": []map[string]any{
		{"city": "Paris", "country": "France"},
		{"city": "paris", "country": "france"},
	}}, admin).want(t, http.StatusCreated).data()
	if failed, _ := bulk["failed"].([]any); len(failed) != 1 {
		t.Fatalf("bulk failures = %v", bulk["failed"])
	}
	all := a.call(http.MethodGet, "/api/v1/destinations/all", nil, "").want(t, http.StatusOK)
	if list, _ := all.body["data"].([]any); len(list) != 1 {
		t.Fatalf("active destinations = %v", all.body["data"])
	}
}
