package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/eventhive/internal/middleware"
	"github.com/hitoshi/eventhive/internal/security"
	"github.com/hitoshi/eventhive/internal/session"
)

// fakeRecoverer はSessionRecovererのフェイク実装。
// セッションIDとセッションの対応表を持つ。
type fakeRecoverer struct {
	sessions map[string]*session.Session
}

func (f *fakeRecoverer) Recover(ctx context.Context, sessionID string) (*session.Session, error) {
	if sess, ok := f.sessions[sessionID]; ok {
		return sess, nil
	}
	return nil, nil
}

func newTestRouter(t *testing.T) (http.Handler, *fakeRecoverer) {
	t.Helper()

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rateLimiter.Stop)

	recoverer := &fakeRecoverer{sessions: map[string]*session.Session{}}
	deps := &RouterDeps{
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		SessionRecoverer: recoverer,
		RateLimiter:      rateLimiter,
		CookieConfig:     testCookieConfig(),

		Renderer:  testRenderer(t),
		Sanitizer: security.NewContentSanitizer(),
		SSRFGuard: &mockSSRFGuard{},
		Metrics:   newMockMetrics(),

		SessionService: &mockSessionService{},
		AccountAPI:     &mockAccountAPI{},
		EventAPI:       &mockEventAPI{},
		BookingAPI:     &mockBookingAPI{},
		DashboardAPI:   &mockDashboardAPI{},
		PosterAPI:      &mockEventAPI{},
		PosterConfig:   testPosterConfig(),
	}

	return NewRouter(deps), recoverer
}

// withSessionCookie はテスト用にセッションCookieを付与するヘルパー。
func withSessionCookie(r *http.Request, sessionID string) *http.Request {
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sessionID})
	return r
}

// withCSRF はテスト用にCSRF Cookieとフォームフィールドを揃えるヘルパー。
func withCSRF(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok-1"})
	return r
}

func csrfForm(extra url.Values) io.Reader {
	form := url.Values{middleware.CSRFFieldName: {"tok-1"}}
	for key, values := range extra {
		form[key] = values
	}
	return strings.NewReader(form.Encode())
}

// ============================================================
// ルートガード
// ============================================================

func TestRouter_Dashboard_RedirectsAnonymousToLogin(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?from=%2Fdashboard" {
		t.Errorf("Location = %q, want login redirect carrying /dashboard", loc)
	}
}

func TestRouter_VendorPages_RedirectCustomerToDashboard(t *testing.T) {
	router, recoverer := newTestRouter(t)
	recoverer.sessions["sess-c1"] = customerSession()

	req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/create-event", nil), "sess-c1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}

func TestRouter_VendorPages_AllowVendor(t *testing.T) {
	router, recoverer := newTestRouter(t)
	recoverer.sessions["sess-v1"] = vendorSession()

	req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/create-event", nil), "sess-v1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Create an event") {
		t.Error("vendor should reach the create event form")
	}
}

func TestRouter_BookingRoute_RedirectsVendorToDashboard(t *testing.T) {
	router, recoverer := newTestRouter(t)
	recoverer.sessions["sess-v1"] = vendorSession()

	req := httptest.NewRequest(http.MethodPost, "/events/e1/book", csrfForm(nil))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withCSRF(withSessionCookie(req, "sess-v1"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}

func TestRouter_PublicPagesServeAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/", "/login", "/signup"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, w.Code)
		}
	}
}

// ============================================================
// CSRF
// ============================================================

func TestRouter_PostWithoutCSRFTokenIsForbidden(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRouter_PostWithMatchingCSRFTokenPasses(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", csrfForm(nil))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withCSRF(req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303, body = %s", w.Code, w.Body.String())
	}
}

// ============================================================
// 運用エンドポイント
// ============================================================

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, want status ok", w.Body.String())
	}
}

func TestRouter_SecurityHeadersOnPages(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
