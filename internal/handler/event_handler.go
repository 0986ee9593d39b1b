package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/middleware"
	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/security"
	"github.com/hitoshi/eventhive/internal/view"
)

// excerptMaxRunes は一覧カードの説明文の最大文字数。
const excerptMaxRunes = 160

// filterDateFormat はフィルターフォームのdate入力のフォーマット。
const filterDateFormat = "2006-01-02"

// posterMaxMemory はイベントフォームのmultipartパース時のメモリ上限。
const posterMaxMemory = 32 << 20

// EventAPI はイベントハンドラーが必要とするリモートAPI操作のインターフェース。
type EventAPI interface {
	FilterEvents(ctx context.Context, filter api.EventFilter) ([]model.Event, error)
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)
	CreateEvent(ctx context.Context, token api.Token, form api.EventForm) (*model.Event, error)
	UpdateEvent(ctx context.Context, token api.Token, eventID string, form api.EventForm) (*model.Event, error)
	DeleteEvent(ctx context.Context, token api.Token, eventID string) error
	MyBookings(ctx context.Context, token api.Token) (model.BookingList, error)
	EventBookings(ctx context.Context, token api.Token, eventID string) (*model.Event, []model.Booking, error)
}

// EventHandler はイベント一覧・詳細・作成・編集・削除のHTTPハンドラー。
type EventHandler struct {
	events    EventAPI
	renderer  *view.Renderer
	sanitizer security.ContentSanitizerService
	metrics   MetricsRecorder
	config    CookieConfig
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(events EventAPI, renderer *view.Renderer, sanitizer security.ContentSanitizerService, metrics MetricsRecorder, config CookieConfig) *EventHandler {
	return &EventHandler{
		events:    events,
		renderer:  renderer,
		sanitizer: sanitizer,
		metrics:   metrics,
		config:    config,
	}
}

// Home はイベント一覧ページを表示する。
// GET /?country=Japan&city=Tokyo&from=2026-09-01&to=2026-09-30
// 日付範囲はfrom/to両方が指定された場合のみ絞り込みに使われる。
func (h *EventHandler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filterValues := view.FilterValues{
		Country: q.Get("country"),
		City:    q.Get("city"),
		From:    q.Get("from"),
		To:      q.Get("to"),
	}

	filter := api.EventFilter{
		Country: filterValues.Country,
		City:    filterValues.City,
	}
	if from, err := time.Parse(filterDateFormat, filterValues.From); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(filterDateFormat, filterValues.To); err == nil {
		filter.To = &to
	}

	events, err := h.events.FilterEvents(r.Context(), filter)
	if err != nil {
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	cards := make([]view.EventCard, 0, len(events))
	for i := range events {
		event := &events[i]
		cards = append(cards, view.EventCard{
			ID:         event.ID,
			Title:      event.Title,
			Excerpt:    security.Excerpt(event.Description, excerptMaxRunes),
			Place:      event.Place(),
			DateLabel:  dateLabel(event.Date),
			PosterPath: posterPath(event),
			SoldOut:    event.SoldOut(),
		})
	}

	h.metrics.RecordPageRender("home")
	h.renderer.Render(w, http.StatusOK, "home", view.Page{
		Title:     "Events",
		User:      currentUser(r),
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data: view.HomeData{
			Events: cards,
			Count:  len(cards),
			Filter: filterValues,
		},
	})
}

// Detail はイベント詳細ページを表示する。
// GET /events/{eventID}
// 予約済み判定は自分の予約一覧を走査して行う。一覧の取得に失敗しても
// ページ自体は未予約として表示する。
func (h *EventHandler) Detail(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil {
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	user := currentUser(r)
	booked := false
	if sess := currentSession(r); sess != nil && sess.User.IsCustomer() {
		bookings, err := h.events.MyBookings(r.Context(), sess.Token)
		if err != nil {
			slog.Warn("failed to load bookings for booked check",
				slog.String("event_id", eventID), slog.String("error", err.Error()))
		} else {
			booked = bookings.ContainsEvent(eventID)
		}
	}

	canBook := user != nil && user.IsCustomer() && !event.SoldOut() && !booked

	h.metrics.RecordPageRender("event_detail")
	h.renderer.Render(w, http.StatusOK, "event_detail", view.Page{
		Title:     event.Title,
		User:      user,
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data: view.EventDetailData{
			ID:              event.ID,
			Title:           event.Title,
			DescriptionHTML: template.HTML(h.sanitizer.Sanitize(event.Description)),
			DateLabel:       dateLabel(event.Date),
			Place:           event.Place(),
			PosterPath:      posterPath(event),
			OrganizerName:   event.OrganizerName,
			SeatsAvailable:  event.SeatsAvailable,
			SoldOut:         event.SoldOut(),
			Booked:          booked,
			CanBook:         canBook,
		},
	})
}

// ShowCreate はイベント作成フォームを表示する。
// GET /create-event
func (h *EventHandler) ShowCreate(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageRender("create_event")
	h.renderer.Render(w, http.StatusOK, "event_form", view.Page{
		Title:     "Create an event",
		User:      currentUser(r),
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data: view.EventFormData{
			Action:  "/create-event",
			Heading: "Create an event",
			Submit:  "Create",
		},
	})
}

// Create は新規イベントを登録する。
// POST /create-event
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, values, err := parseEventForm(r)
	if err != nil {
		values.Action = "/create-event"
		values.Heading = "Create an event"
		values.Submit = "Create"
		h.renderFormError(w, r, "Create an event", values, apiErrorMessage(err, "Could not read the form."))
		return
	}

	sess := currentSession(r)
	if _, err := h.events.CreateEvent(r.Context(), sess.Token, form); err != nil {
		if api.IsUnauthorized(err) {
			h.redirectExpiredSession(w, r)
			return
		}
		values.Action = "/create-event"
		values.Heading = "Create an event"
		values.Submit = "Create"
		h.renderFormError(w, r, "Create an event", values, apiErrorMessage(err, "Could not create the event."))
		return
	}

	slog.Info("event created", slog.String("title", form.Title), slog.String("vendor_id", sess.User.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ShowEdit は既存イベントの編集フォームを表示する。
// GET /edit-event/{eventID}
func (h *EventHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil {
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	h.metrics.RecordPageRender("edit_event")
	h.renderer.Render(w, http.StatusOK, "event_form", view.Page{
		Title:     "Edit event",
		User:      currentUser(r),
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data: view.EventFormData{
			Action:         "/edit-event/" + event.ID,
			Heading:        "Edit event",
			Submit:         "Save changes",
			Title:          event.Title,
			Description:    event.Description,
			Date:           event.Date.Format(datetimeLocalFormat),
			Country:        event.Country,
			City:           event.City,
			Location:       event.Location,
			SeatsAvailable: strconv.Itoa(event.SeatsAvailable),
		},
	})
}

// Update は既存イベントを更新する。
// POST /edit-event/{eventID}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	form, values, err := parseEventForm(r)
	values.Action = "/edit-event/" + eventID
	values.Heading = "Edit event"
	values.Submit = "Save changes"
	if err != nil {
		h.renderFormError(w, r, "Edit event", values, apiErrorMessage(err, "Could not read the form."))
		return
	}

	sess := currentSession(r)
	if _, err := h.events.UpdateEvent(r.Context(), sess.Token, eventID, form); err != nil {
		if api.IsUnauthorized(err) {
			h.redirectExpiredSession(w, r)
			return
		}
		h.renderFormError(w, r, "Edit event", values, apiErrorMessage(err, "Could not update the event."))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete はイベントを削除する。
// POST /events/{eventID}/delete
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	sess := currentSession(r)

	if err := h.events.DeleteEvent(r.Context(), sess.Token, eventID); err != nil {
		if api.IsUnauthorized(err) {
			h.redirectExpiredSession(w, r)
			return
		}
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	slog.Info("event deleted", slog.String("event_id", eventID), slog.String("vendor_id", sess.User.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Attendees はイベントの参加者一覧を表示する。
// GET /event-attendees/{eventID}
func (h *EventHandler) Attendees(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	sess := currentSession(r)

	event, bookings, err := h.events.EventBookings(r.Context(), sess.Token, eventID)
	if err != nil {
		if api.IsUnauthorized(err) {
			h.redirectExpiredSession(w, r)
			return
		}
		h.renderer.RenderError(w, statusForError(err), currentUser(r), err)
		return
	}

	rows := make([]view.AttendeeRow, 0, len(bookings))
	for _, b := range bookings {
		row := view.AttendeeRow{BookedAtLabel: dateLabel(b.BookedAt)}
		if b.Customer != nil {
			row.Name = b.Customer.Name
			row.Email = b.Customer.Email
		}
		rows = append(rows, row)
	}

	h.metrics.RecordPageRender("event_attendees")
	h.renderer.Render(w, http.StatusOK, "attendees", view.Page{
		Title:     "Attendees",
		User:      currentUser(r),
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data: view.AttendeesData{
			EventID:    event.ID,
			EventTitle: event.Title,
			Count:      len(rows),
			Attendees:  rows,
		},
	})
}

// renderFormError はイベントフォームをエラーメッセージ付きで再表示する。
func (h *EventHandler) renderFormError(w http.ResponseWriter, r *http.Request, title string, values view.EventFormData, message string) {
	h.renderer.Render(w, http.StatusBadRequest, "event_form", view.Page{
		Title:        title,
		User:         currentUser(r),
		CSRFToken:    middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		ErrorMessage: message,
		Data:         values,
	})
}

// redirectExpiredSession はリモートセッション失効時の処理。
// ローカルCookieを破棄してログインページへ誘導する。
func (h *EventHandler) redirectExpiredSession(w http.ResponseWriter, r *http.Request) {
	expireSessionCookie(w, h.config)
	http.Redirect(w, r, "/login?from="+r.URL.EscapedPath(), http.StatusSeeOther)
}

// parseEventForm はイベント作成・編集フォームをパースする。
// 入力値はエラー時の再表示用にview.EventFormDataとしても返す。
func parseEventForm(r *http.Request) (api.EventForm, view.EventFormData, error) {
	values := view.EventFormData{}

	if err := r.ParseMultipartForm(posterMaxMemory); err != nil {
		return api.EventForm{}, values, model.NewRemoteRejectedError("The submitted form could not be read.")
	}

	values.Title = r.PostFormValue("title")
	values.Description = r.PostFormValue("description")
	values.Date = r.PostFormValue("date")
	values.Country = r.PostFormValue("country")
	values.City = r.PostFormValue("city")
	values.Location = r.PostFormValue("location")
	values.SeatsAvailable = r.PostFormValue("seats_available")

	date, err := time.Parse(datetimeLocalFormat, values.Date)
	if err != nil {
		return api.EventForm{}, values, model.NewRemoteRejectedError("Please provide a valid date and time.")
	}

	seats, err := strconv.Atoi(values.SeatsAvailable)
	if err != nil || seats < 0 {
		return api.EventForm{}, values, model.NewRemoteRejectedError("Seats available must be a non-negative number.")
	}

	form := api.EventForm{
		Title:          values.Title,
		Description:    values.Description,
		Date:           date,
		Country:        values.Country,
		City:           values.City,
		Location:       values.Location,
		SeatsAvailable: seats,
	}

	file, header, err := r.FormFile("poster")
	if err == nil {
		form.Poster = &api.PosterUpload{Filename: header.Filename, Content: file}
	} else if err != http.ErrMissingFile {
		return api.EventForm{}, values, model.NewRemoteRejectedError("The poster image could not be read.")
	}

	return form, values, nil
}

// apiErrorMessage はAPIErrorの利用者向けメッセージを取り出す。
func apiErrorMessage(err error, fallback string) string {
	if apiErr, ok := err.(*model.APIError); ok {
		return apiErr.Message
	}
	return fallback
}
