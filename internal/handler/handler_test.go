package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/middleware"
	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/session"
	"github.com/hitoshi/eventhive/internal/view"
)

// --- モック定義 ---

// mockSessionService はSessionServiceのモック実装。
type mockSessionService struct {
	loginFn  func(ctx context.Context, creds api.Credentials) (*session.Session, error)
	logoutFn func(ctx context.Context, sess *session.Session) error
}

func (m *mockSessionService) Login(ctx context.Context, creds api.Credentials) (*session.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, creds)
	}
	return nil, nil
}

func (m *mockSessionService) Logout(ctx context.Context, sess *session.Session) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sess)
	}
	return nil
}

// mockAccountAPI はAccountAPIのモック実装。
type mockAccountAPI struct {
	registerFn func(ctx context.Context, reg api.Registration) error
}

func (m *mockAccountAPI) Register(ctx context.Context, reg api.Registration) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, reg)
	}
	return nil
}

// mockEventAPI はEventAPIのモック実装。
type mockEventAPI struct {
	filterEventsFn  func(ctx context.Context, filter api.EventFilter) ([]model.Event, error)
	getEventFn      func(ctx context.Context, eventID string) (*model.Event, error)
	createEventFn   func(ctx context.Context, token api.Token, form api.EventForm) (*model.Event, error)
	updateEventFn   func(ctx context.Context, token api.Token, eventID string, form api.EventForm) (*model.Event, error)
	deleteEventFn   func(ctx context.Context, token api.Token, eventID string) error
	myBookingsFn    func(ctx context.Context, token api.Token) (model.BookingList, error)
	eventBookingsFn func(ctx context.Context, token api.Token, eventID string) (*model.Event, []model.Booking, error)
}

func (m *mockEventAPI) FilterEvents(ctx context.Context, filter api.EventFilter) ([]model.Event, error) {
	if m.filterEventsFn != nil {
		return m.filterEventsFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockEventAPI) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	if m.getEventFn != nil {
		return m.getEventFn(ctx, eventID)
	}
	return nil, model.NewEventNotFoundError(eventID)
}

func (m *mockEventAPI) CreateEvent(ctx context.Context, token api.Token, form api.EventForm) (*model.Event, error) {
	if m.createEventFn != nil {
		return m.createEventFn(ctx, token, form)
	}
	return &model.Event{ID: "e1"}, nil
}

func (m *mockEventAPI) UpdateEvent(ctx context.Context, token api.Token, eventID string, form api.EventForm) (*model.Event, error) {
	if m.updateEventFn != nil {
		return m.updateEventFn(ctx, token, eventID, form)
	}
	return &model.Event{ID: eventID}, nil
}

func (m *mockEventAPI) DeleteEvent(ctx context.Context, token api.Token, eventID string) error {
	if m.deleteEventFn != nil {
		return m.deleteEventFn(ctx, token, eventID)
	}
	return nil
}

func (m *mockEventAPI) MyBookings(ctx context.Context, token api.Token) (model.BookingList, error) {
	if m.myBookingsFn != nil {
		return m.myBookingsFn(ctx, token)
	}
	return nil, nil
}

func (m *mockEventAPI) EventBookings(ctx context.Context, token api.Token, eventID string) (*model.Event, []model.Booking, error) {
	if m.eventBookingsFn != nil {
		return m.eventBookingsFn(ctx, token, eventID)
	}
	return &model.Event{ID: eventID}, nil, nil
}

// mockBookingAPI はBookingAPIのモック実装。
type mockBookingAPI struct {
	getEventFn      func(ctx context.Context, eventID string) (*model.Event, error)
	bookEventFn     func(ctx context.Context, token api.Token, eventID string) (*model.Booking, error)
	cancelBookingFn func(ctx context.Context, token api.Token, bookingID string) error
}

func (m *mockBookingAPI) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	if m.getEventFn != nil {
		return m.getEventFn(ctx, eventID)
	}
	return &model.Event{ID: eventID, SeatsAvailable: 10}, nil
}

func (m *mockBookingAPI) BookEvent(ctx context.Context, token api.Token, eventID string) (*model.Booking, error) {
	if m.bookEventFn != nil {
		return m.bookEventFn(ctx, token, eventID)
	}
	return &model.Booking{ID: "b1", Event: model.Event{ID: eventID}}, nil
}

func (m *mockBookingAPI) CancelBooking(ctx context.Context, token api.Token, bookingID string) error {
	if m.cancelBookingFn != nil {
		return m.cancelBookingFn(ctx, token, bookingID)
	}
	return nil
}

// mockDashboardAPI はDashboardAPIのモック実装。
type mockDashboardAPI struct {
	myEventsFn   func(ctx context.Context, token api.Token) ([]model.Event, error)
	myBookingsFn func(ctx context.Context, token api.Token) (model.BookingList, error)
}

func (m *mockDashboardAPI) MyEvents(ctx context.Context, token api.Token) ([]model.Event, error) {
	if m.myEventsFn != nil {
		return m.myEventsFn(ctx, token)
	}
	return nil, nil
}

func (m *mockDashboardAPI) MyBookings(ctx context.Context, token api.Token) (model.BookingList, error) {
	if m.myBookingsFn != nil {
		return m.myBookingsFn(ctx, token)
	}
	return nil, nil
}

// mockMetrics はMetricsRecorderのモック実装。呼び出し回数を数える。
type mockMetrics struct {
	pageRenders    map[string]int
	loginSuccess   int
	loginFailure   int
	bookingSuccess int
	bookingFailure int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{pageRenders: map[string]int{}}
}

func (m *mockMetrics) RecordPageRender(page string) { m.pageRenders[page]++ }
func (m *mockMetrics) RecordLoginSuccess()          { m.loginSuccess++ }
func (m *mockMetrics) RecordLoginFailure()          { m.loginFailure++ }
func (m *mockMetrics) RecordBookingSuccess()        { m.bookingSuccess++ }
func (m *mockMetrics) RecordBookingFailure()        { m.bookingFailure++ }

// --- テストヘルパー ---

func testRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	r, err := view.NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}
	return r
}

func testCookieConfig() CookieConfig {
	return CookieConfig{SessionMaxAge: 3600}
}

func testPosterConfig() PosterConfig {
	return PosterConfig{FetchTimeout: 5 * time.Second, MaxSize: 1 << 20}
}

func customerSession() *session.Session {
	return &session.Session{
		ID:    "sess-c1",
		Token: api.Token("session=abc"),
		User: model.User{
			ID: "u1", Name: "Alice", Email: "alice@example.com", Role: model.RoleCustomer,
		},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func vendorSession() *session.Session {
	return &session.Session{
		ID:    "sess-v1",
		Token: api.Token("session=def"),
		User: model.User{
			ID: "v1", Name: "Benny", Email: "benny@example.com", Role: model.RoleVendor,
		},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// withSession はテスト用にリクエストコンテキストにセッションを注入するヘルパー。
func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), sess))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// sessionCookie はレスポンスからセッションCookieを探すヘルパー。
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}
