package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/middleware"
	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/view"
)

// DashboardAPI はダッシュボードが必要とするリモートAPI操作のインターフェース。
type DashboardAPI interface {
	MyEvents(ctx context.Context, token api.Token) ([]model.Event, error)
	MyBookings(ctx context.Context, token api.Token) (model.BookingList, error)
}

// DashboardHandler はロール別ダッシュボードのHTTPハンドラー。
type DashboardHandler struct {
	api      DashboardAPI
	renderer *view.Renderer
	metrics  MetricsRecorder
	config   CookieConfig
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(dashboardAPI DashboardAPI, renderer *view.Renderer, metrics MetricsRecorder, config CookieConfig) *DashboardHandler {
	return &DashboardHandler{
		api:      dashboardAPI,
		renderer: renderer,
		metrics:  metrics,
		config:   config,
	}
}

// Show はダッシュボードを表示する。
// GET /dashboard
// ベンダーには自分のイベント一覧、カスタマーには自分の予約一覧を表示する。
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	data := view.DashboardData{}

	if sess.User.IsVendor() {
		events, err := h.api.MyEvents(r.Context(), sess.Token)
		if err != nil {
			if api.IsUnauthorized(err) {
				expireSessionCookie(w, h.config)
				http.Redirect(w, r, "/login?from=/dashboard", http.StatusSeeOther)
				return
			}
			h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
			return
		}
		rows := make([]view.VendorEventRow, 0, len(events))
		for i := range events {
			event := &events[i]
			rows = append(rows, view.VendorEventRow{
				ID:             event.ID,
				Title:          event.Title,
				DateLabel:      dateLabel(event.Date),
				Place:          event.Place(),
				SeatsAvailable: event.SeatsAvailable,
			})
		}
		data.Events = rows
	} else {
		bookings, err := h.api.MyBookings(r.Context(), sess.Token)
		if err != nil {
			if api.IsUnauthorized(err) {
				expireSessionCookie(w, h.config)
				http.Redirect(w, r, "/login?from=/dashboard", http.StatusSeeOther)
				return
			}
			h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
			return
		}
		rows := make([]view.BookingRow, 0, len(bookings))
		for _, b := range bookings {
			rows = append(rows, view.BookingRow{
				BookingID:     b.ID,
				EventID:       b.Event.ID,
				EventTitle:    b.Event.Title,
				DateLabel:     dateLabel(b.Event.Date),
				Place:         b.Event.Place(),
				BookedAtLabel: dateLabel(b.BookedAt),
			})
		}
		data.Bookings = rows
	}

	h.metrics.RecordPageRender("dashboard")
	h.renderer.Render(w, http.StatusOK, "dashboard", view.Page{
		Title:     "Dashboard",
		User:      currentUser(r),
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data:      data,
	})
}
