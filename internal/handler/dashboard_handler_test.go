package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/model"
)

func newDashboardHandler(t *testing.T, dashboardAPI DashboardAPI) *DashboardHandler {
	t.Helper()
	return NewDashboardHandler(dashboardAPI, testRenderer(t), newMockMetrics(), testCookieConfig())
}

func TestDashboardHandler_VendorSeesOwnEvents(t *testing.T) {
	bookingsCalled := false
	dashboardAPI := &mockDashboardAPI{
		myEventsFn: func(ctx context.Context, token api.Token) ([]model.Event, error) {
			return []model.Event{
				{ID: "e1", Title: "GopherCon", Country: "Japan", City: "Tokyo", SeatsAvailable: 300},
			}, nil
		},
		myBookingsFn: func(ctx context.Context, token api.Token) (model.BookingList, error) {
			bookingsCalled = true
			return nil, nil
		},
	}
	h := newDashboardHandler(t, dashboardAPI)

	req := withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), vendorSession())
	w := httptest.NewRecorder()

	h.Show(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "GopherCon") {
		t.Error("vendor dashboard should list the vendor's events")
	}
	if !strings.Contains(body, `href="/edit-event/e1"`) {
		t.Error("vendor dashboard should offer an edit link")
	}
	if bookingsCalled {
		t.Error("vendor dashboard must not request bookings")
	}
}

func TestDashboardHandler_VendorEmptyState(t *testing.T) {
	h := newDashboardHandler(t, &mockDashboardAPI{})

	req := withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), vendorSession())
	w := httptest.NewRecorder()

	h.Show(w, req)

	if !strings.Contains(w.Body.String(), "You haven't created any events yet.") {
		t.Error("vendor empty state text is required")
	}
}

func TestDashboardHandler_CustomerSeesBookings(t *testing.T) {
	eventsCalled := false
	dashboardAPI := &mockDashboardAPI{
		myEventsFn: func(ctx context.Context, token api.Token) ([]model.Event, error) {
			eventsCalled = true
			return nil, nil
		},
		myBookingsFn: func(ctx context.Context, token api.Token) (model.BookingList, error) {
			return model.BookingList{
				{ID: "b1", Event: model.Event{ID: "e1", Title: "GopherCon", Country: "Japan", City: "Tokyo"}},
			}, nil
		},
	}
	h := newDashboardHandler(t, dashboardAPI)

	req := withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), customerSession())
	w := httptest.NewRecorder()

	h.Show(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "GopherCon") {
		t.Error("customer dashboard should list bookings")
	}
	if !strings.Contains(body, `action="/bookings/b1/cancel"`) {
		t.Error("each booking should offer a cancel form")
	}
	if eventsCalled {
		t.Error("customer dashboard must not request vendor events")
	}
}

func TestDashboardHandler_ExpiredRemoteSessionRedirectsToLogin(t *testing.T) {
	dashboardAPI := &mockDashboardAPI{
		myBookingsFn: func(ctx context.Context, token api.Token) (model.BookingList, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := newDashboardHandler(t, dashboardAPI)

	req := withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), customerSession())
	w := httptest.NewRecorder()

	h.Show(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?from=/dashboard" {
		t.Errorf("Location = %q, want /login?from=/dashboard", loc)
	}
}

func TestDashboardHandler_UpstreamFailureRendersErrorPage(t *testing.T) {
	dashboardAPI := &mockDashboardAPI{
		myEventsFn: func(ctx context.Context, token api.Token) ([]model.Event, error) {
			return nil, model.NewTransportError("connection refused")
		},
	}
	h := newDashboardHandler(t, dashboardAPI)

	req := withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), vendorSession())
	w := httptest.NewRecorder()

	h.Show(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}
