package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/pkg/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type recordingNotifier struct {
	sent []*notify.Message
}

func (n *recordingNotifier) Send(ctx context.Context, msg *notify.Message) (*notify.Receipt, error) {
	n.sent = append(n.sent, msg)
	return &notify.Receipt{ID: "r-" + strconv.Itoa(len(n.sent)), Provider: "test"}, nil
}

type testServer struct {
	*httptest.Server
	notifier *recordingNotifier
}

func newTestServer(t *testing.T, ratePerMinute int) *testServer {
	t.Helper()
	repo := repository.NewMemorySubmissionRepository()
	n := &recordingNotifier{}
	composer, err := notify.NewComposer("site@example.com", []string{"owner@example.com"})
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	contacts := service.NewContactService(repo, n, composer, service.ContactConfig{FallbackEmail: "owner@example.com"})

	pw, err := auth.NewPasswordChecker("letmein", "")
	if err != nil {
		t.Fatalf("NewPasswordChecker: %v", err)
	}
	sessions := service.NewSessionService(pw, auth.SessionSecretBytes("router-test-secret"), 0, auth.NewMemoryRevocationList())

	site := t.TempDir()
	mustWrite(t, filepath.Join(site, "index.html"), "home")
	mustWrite(t, filepath.Join(site, "admin", "login.html"), "login page")
	mustWrite(t, filepath.Join(site, "admin", "index.html"), "dashboard")

	limiter := NewRateLimiter("contact", ratePerMinute)
	t.Cleanup(limiter.Close)

	reg := prometheus.NewRegistry()
	router := NewRouter(RouterConfig{
		Health:         New(repo, "http://localhost:3000"),
		Contact:        NewContactHandler(contacts),
		Admin:          NewAdminHandler(contacts, sessions, false),
		Sessions:       sessions.Validate,
		ContactLimiter: limiter,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		StaticDir:      site,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, notifier: n}
}

func mustWrite(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName() {
			return c
		}
	}
	return nil
}

const annForm = `{"firstName":"Ann","lastName":"Lee","email":"ann@example.com","subject":"Hi","message":"Hello there, checking in!"}`

func TestRouter_SubmitReviewDeleteFlow(t *testing.T) {
	s := newTestServer(t, 100)

	if resp := s.do(t, "GET", "/api/admin/submissions", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.StatusCode)
	}

	resp := s.do(t, "POST", "/api/contact", annForm, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var submitted service.SubmitResult
	_ = json.NewDecoder(resp.Body).Decode(&submitted)
	if !submitted.Success || submitted.SubmissionID == 0 {
		t.Fatalf("unexpected submit result: %+v", submitted)
	}
	if len(s.notifier.sent) != 1 || s.notifier.sent[0].ReplyTo != "ann@example.com" {
		t.Fatalf("expected one notification, got %+v", s.notifier.sent)
	}

	if resp := s.do(t, "POST", "/api/admin/login", `{"password":"wrong"}`, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
	resp = s.do(t, "POST", "/api/admin/login", `{"password":"letmein"}`, nil)
	cookie := sessionCookie(resp)
	if resp.StatusCode != http.StatusOK || cookie == nil {
		t.Fatalf("expected login to set a cookie, got %d", resp.StatusCode)
	}

	resp = s.do(t, "GET", "/api/admin/submissions", "", cookie)
	var page struct {
		Submissions []struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"submissions"`
		Total int `json:"total"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&page)
	if page.Total != 1 || page.Submissions[0].Email != "ann@example.com" {
		t.Fatalf("expected Ann's submission, got %+v", page)
	}

	id := strconv.FormatInt(submitted.SubmissionID, 10)
	if resp := s.do(t, "GET", "/api/admin/submissions/"+id, "", cookie); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for get, got %d", resp.StatusCode)
	}
	if resp := s.do(t, "GET", "/api/admin/submissions/export", "", cookie); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for export, got %d", resp.StatusCode)
	}
	if resp := s.do(t, "DELETE", "/api/admin/submissions/"+id, "", cookie); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for delete, got %d", resp.StatusCode)
	}
	if resp := s.do(t, "DELETE", "/api/admin/submissions/"+id, "", cookie); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for second delete, got %d", resp.StatusCode)
	}

	if resp := s.do(t, "POST", "/api/admin/logout", "", cookie); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", resp.StatusCode)
	}
	if resp := s.do(t, "GET", "/api/admin/stats", "", cookie); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("revoked session must be rejected, got %d", resp.StatusCode)
	}
}

func TestRouter_ValidationErrorDoesNotStore(t *testing.T) {
	s := newTestServer(t, 100)
	resp := s.do(t, "POST", "/api/contact", `{"firstName":"Ann","email":"bad"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var res service.SubmitResult
	_ = json.NewDecoder(resp.Body).Decode(&res)
	if res.Errors["email"] == "" || res.Errors["lastName"] == "" {
		t.Errorf("expected field errors, got %v", res.Errors)
	}
	if len(s.notifier.sent) != 0 {
		t.Error("no notification expected")
	}
}

func TestRouter_AdminPagesAreGated(t *testing.T) {
	s := newTestServer(t, 100)

	resp := s.do(t, "GET", "/admin/", "", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != AdminLoginPath {
		t.Errorf("expected redirect to login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if resp := s.do(t, "GET", "/admin/login", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("login page should be public, got %d", resp.StatusCode)
	}
	if resp := s.do(t, "GET", "/", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("site root should be public, got %d", resp.StatusCode)
	}

	login := s.do(t, "POST", "/api/admin/login", `{"password":"letmein"}`, nil)
	if resp := s.do(t, "GET", "/admin/", "", sessionCookie(login)); resp.StatusCode != http.StatusOK {
		t.Errorf("expected dashboard with session, got %d", resp.StatusCode)
	}
}

func TestRouter_AdminGateUsesCleanedPath(t *testing.T) {
	s := newTestServer(t, 100)

	for _, p := range []string{"//admin/", "/x/../admin/", "/admin/login/../", "/admin/./", "//admin//index.html"} {
		resp := s.do(t, "GET", p, "", nil)
		body, _ := io.ReadAll(resp.Body)
		if strings.Contains(string(body), "dashboard") {
			t.Errorf("%s: dashboard served without a session", p)
		}
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != AdminLoginPath {
			t.Errorf("%s: expected redirect to login, got %d %q", p, resp.StatusCode, resp.Header.Get("Location"))
		}
	}

	if resp := s.do(t, "GET", "/admin//login", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("login page should stay public after cleaning, got %d", resp.StatusCode)
	}
	if resp := s.do(t, "GET", "//api/admin/stats", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for the admin API, got %d", resp.StatusCode)
	}
}

func TestRouter_ContactIsRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		if resp := s.do(t, "POST", "/api/contact", annForm, nil); resp.StatusCode != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, resp.StatusCode)
		}
	}
	resp := s.do(t, "POST", "/api/contact", annForm, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After")
	}
	if resp := s.do(t, "GET", "/api/health", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("other routes are not limited, got %d", resp.StatusCode)
	}
}

func TestRouter_MetricsAndSecurityHeaders(t *testing.T) {
	s := newTestServer(t, 100)
	resp := s.do(t, "GET", "/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /metrics, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on every response")
	}
}
