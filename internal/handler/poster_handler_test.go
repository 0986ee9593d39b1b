package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/eventhive/internal/model"
)

// mockSSRFGuard はSSRFGuardServiceのモック実装。
// httptestサーバーはループバックで動くため、実物のガードは使えない。
type mockSSRFGuard struct {
	validateURLFn func(rawURL string) error
}

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (m *mockSSRFGuard) ValidateURL(rawURL string) error {
	if m.validateURLFn != nil {
		return m.validateURLFn(rawURL)
	}
	return nil
}

func TestPosterHandler_ProxiesImage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer upstream.Close()

	events := &mockEventAPI{
		getEventFn: func(ctx context.Context, eventID string) (*model.Event, error) {
			return &model.Event{ID: eventID, PosterURL: upstream.URL + "/poster.png"}, nil
		},
	}
	h := NewPosterHandler(events, &mockSSRFGuard{}, testPosterConfig())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/posters/e1", nil), "eventID", "e1")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("body = %q, want proxied image bytes", w.Body.String())
	}
}

func TestPosterHandler_NoPosterURL_Returns404(t *testing.T) {
	events := &mockEventAPI{
		getEventFn: func(ctx context.Context, eventID string) (*model.Event, error) {
			return &model.Event{ID: eventID}, nil
		},
	}
	h := NewPosterHandler(events, &mockSSRFGuard{}, testPosterConfig())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/posters/e1", nil), "eventID", "e1")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPosterHandler_RejectedURL_Returns404(t *testing.T) {
	fetched := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = true
	}))
	defer upstream.Close()

	events := &mockEventAPI{
		getEventFn: func(ctx context.Context, eventID string) (*model.Event, error) {
			return &model.Event{ID: eventID, PosterURL: upstream.URL}, nil
		},
	}
	guard := &mockSSRFGuard{
		validateURLFn: func(rawURL string) error {
			return errors.New("address is in a blocked range")
		},
	}
	h := NewPosterHandler(events, guard, testPosterConfig())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/posters/e1", nil), "eventID", "e1")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if fetched {
		t.Error("rejected URLs must not be fetched")
	}
}

func TestPosterHandler_EventLookupFailure_Returns404(t *testing.T) {
	events := &mockEventAPI{
		getEventFn: func(ctx context.Context, eventID string) (*model.Event, error) {
			return nil, model.NewEventNotFoundError(eventID)
		},
	}
	h := NewPosterHandler(events, &mockSSRFGuard{}, testPosterConfig())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/posters/nope", nil), "eventID", "nope")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPosterHandler_UpstreamErrorStatus_Returns404(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer upstream.Close()

	events := &mockEventAPI{
		getEventFn: func(ctx context.Context, eventID string) (*model.Event, error) {
			return &model.Event{ID: eventID, PosterURL: upstream.URL}, nil
		},
	}
	h := NewPosterHandler(events, &mockSSRFGuard{}, testPosterConfig())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/posters/e1", nil), "eventID", "e1")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
