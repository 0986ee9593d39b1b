package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/view"
)

// BookingAPI は予約ハンドラーが必要とするリモートAPI操作のインターフェース。
type BookingAPI interface {
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)
	BookEvent(ctx context.Context, token api.Token, eventID string) (*model.Booking, error)
	CancelBooking(ctx context.Context, token api.Token, bookingID string) error
}

// BookingHandler は予約作成・キャンセルのHTTPハンドラー。
type BookingHandler struct {
	bookings BookingAPI
	renderer *view.Renderer
	metrics  MetricsRecorder
	config   CookieConfig
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(bookings BookingAPI, renderer *view.Renderer, metrics MetricsRecorder, config CookieConfig) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		renderer: renderer,
		metrics:  metrics,
		config:   config,
	}
}

// Book はイベントを予約する。
// POST /events/{eventID}/book
// 残席を先に確認し、売り切れの場合は予約リクエストを発行せずに
// 失敗レスポンスを返す。残席の正式な判定はリモート側が行うため、
// ここでの確認は不要なリクエストを減らすための事前チェックに過ぎない。
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	sess := currentSession(r)

	event, err := h.bookings.GetEvent(r.Context(), eventID)
	if err != nil {
		h.metrics.RecordBookingFailure()
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	if event.SoldOut() {
		h.metrics.RecordBookingFailure()
		soldOut := model.NewSoldOutError()
		h.renderer.RenderError(w, statusForError(soldOut), currentUser(r), soldOut)
		return
	}

	booking, err := h.bookings.BookEvent(r.Context(), sess.Token, eventID)
	if err != nil {
		h.metrics.RecordBookingFailure()
		if api.IsUnauthorized(err) {
			expireSessionCookie(w, h.config)
			http.Redirect(w, r, "/login?from="+r.URL.EscapedPath(), http.StatusSeeOther)
			return
		}
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	h.metrics.RecordBookingSuccess()
	slog.Info("event booked",
		slog.String("booking_id", booking.ID),
		slog.String("event_id", eventID),
		slog.String("customer_id", sess.User.ID))
	http.Redirect(w, r, "/events/"+eventID, http.StatusSeeOther)
}

// Cancel は予約をキャンセルする。
// POST /bookings/{bookingID}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	sess := currentSession(r)

	if err := h.bookings.CancelBooking(r.Context(), sess.Token, bookingID); err != nil {
		if api.IsUnauthorized(err) {
			expireSessionCookie(w, h.config)
			http.Redirect(w, r, "/login?from=/dashboard", http.StatusSeeOther)
			return
		}
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	slog.Info("booking cancelled",
		slog.String("booking_id", bookingID),
		slog.String("customer_id", sess.User.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
