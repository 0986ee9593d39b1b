package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/eventhive/internal/middleware"
	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/security"
	"github.com/hitoshi/eventhive/internal/view"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger           *slog.Logger
	SessionRecoverer middleware.SessionRecoverer
	RateLimiter      *middleware.RateLimiter
	CookieConfig     CookieConfig

	// 描画・セキュリティ
	Renderer  *view.Renderer
	Sanitizer security.ContentSanitizerService
	SSRFGuard security.SSRFGuardService
	Metrics   MetricsRecorder

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// リモートAPI・セッション
	SessionService SessionService
	AccountAPI     AccountAPI
	EventAPI       EventAPI
	BookingAPI     BookingAPI
	DashboardAPI   DashboardAPI
	PosterAPI      PosterAPI
	PosterConfig   PosterConfig
}

// NewRouter は全ページのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Session → CSRF → RateLimit(General)
//
// 運用エンドポイント（/health, /metrics）はセッションやレート制限の
// 影響を受けないようチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	authHandler := NewAuthHandler(deps.SessionService, deps.AccountAPI, deps.Renderer, deps.Metrics, deps.CookieConfig)
	eventHandler := NewEventHandler(deps.EventAPI, deps.Renderer, deps.Sanitizer, deps.Metrics, deps.CookieConfig)
	bookingHandler := NewBookingHandler(deps.BookingAPI, deps.Renderer, deps.Metrics, deps.CookieConfig)
	dashboardHandler := NewDashboardHandler(deps.DashboardAPI, deps.Renderer, deps.Metrics, deps.CookieConfig)
	posterHandler := NewPosterHandler(deps.PosterAPI, deps.SSRFGuard, deps.PosterConfig)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler.Check)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- ページルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		r.Use(middleware.NewSessionMiddleware(deps.SessionRecoverer))
		r.Use(middleware.NewCSRFMiddleware(deps.CookieConfig.csrfConfig()))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 公開ページ
		r.Get("/", eventHandler.Home)
		r.Get("/events/{eventID}", eventHandler.Detail)
		r.Get("/posters/{eventID}", posterHandler.Get)

		// 認証フロー（ログインPOSTは専用レート制限を追加）
		r.Get("/login", authHandler.ShowLogin)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Get("/signup", authHandler.ShowSignup)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/signup", authHandler.Signup)
		r.Post("/logout", authHandler.Logout)

		// 認証が必要なページ
		r.With(middleware.RequireAuth()).Get("/dashboard", dashboardHandler.Show)

		// カスタマー専用: 予約操作（予約専用レート制限を追加）
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(model.RoleCustomer))
			r.Use(deps.RateLimiter.BookingMiddleware())

			r.Post("/events/{eventID}/book", bookingHandler.Book)
			r.Post("/bookings/{bookingID}/cancel", bookingHandler.Cancel)
		})

		// ベンダー専用: イベント管理
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(model.RoleVendor))

			r.Get("/create-event", eventHandler.ShowCreate)
			r.Post("/create-event", eventHandler.Create)
			r.Get("/edit-event/{eventID}", eventHandler.ShowEdit)
			r.Post("/edit-event/{eventID}", eventHandler.Update)
			r.Post("/events/{eventID}/delete", eventHandler.Delete)
			r.Get("/event-attendees/{eventID}", eventHandler.Attendees)
		})
	})

	return r
}
