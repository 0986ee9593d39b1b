package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/security"
)

// PosterAPI はポスタープロキシが必要とするリモートAPI操作のインターフェース。
type PosterAPI interface {
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)
}

// PosterConfig はポスター画像取得の設定。
type PosterConfig struct {
	FetchTimeout time.Duration
	MaxSize      int64
}

// PosterHandler はポスター画像のプロキシハンドラー。
// リモートAPIが返すposter_urlをブラウザに直接渡さず、SSRF検証済みの
// クライアントで取得して中継する。
type PosterHandler struct {
	events  PosterAPI
	guard   security.SSRFGuardService
	client  *http.Client
	maxSize int64
}

// NewPosterHandler はPosterHandlerを生成する。
func NewPosterHandler(events PosterAPI, guard security.SSRFGuardService, config PosterConfig) *PosterHandler {
	return &PosterHandler{
		events:  events,
		guard:   guard,
		client:  guard.NewSafeClient(config.FetchTimeout, config.MaxSize),
		maxSize: config.MaxSize,
	}
}

// Get はイベントのポスター画像を中継する。
// GET /posters/{eventID}
// ポスターが無い、またはURLが検証に通らない場合は404を返す。
// 画像の欠落でページ全体を壊さないよう、エラーページは返さない。
func (h *PosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil || event.PosterURL == "" {
		http.NotFound(w, r)
		return
	}

	if err := h.guard.ValidateURL(event.PosterURL); err != nil {
		slog.Warn("poster URL rejected",
			slog.String("event_id", eventID), slog.String("error", err.Error()))
		http.NotFound(w, r)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, event.PosterURL, nil)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		slog.Warn("poster fetch failed",
			slog.String("event_id", eventID), slog.String("error", err.Error()))
		http.NotFound(w, r)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		http.NotFound(w, r)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, io.LimitReader(resp.Body, h.maxSize)); err != nil {
		slog.Warn("poster stream interrupted",
			slog.String("event_id", eventID), slog.String("error", err.Error()))
	}
}
