package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/middleware"
	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/session"
	"github.com/hitoshi/eventhive/internal/view"
)

// SessionService は認証ハンドラーが必要とするセッション操作のインターフェース。
// session.Providerの部分集合として定義する。
type SessionService interface {
	Login(ctx context.Context, creds api.Credentials) (*session.Session, error)
	Logout(ctx context.Context, sess *session.Session) error
}

// AccountAPI はアカウント登録に必要なリモートAPI操作のインターフェース。
type AccountAPI interface {
	Register(ctx context.Context, reg api.Registration) error
}

// AuthHandler はログイン・サインアップ・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	sessions SessionService
	accounts AccountAPI
	renderer *view.Renderer
	metrics  MetricsRecorder
	config   CookieConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(sessions SessionService, accounts AccountAPI, renderer *view.Renderer, metrics MetricsRecorder, config CookieConfig) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		accounts: accounts,
		renderer: renderer,
		metrics:  metrics,
		config:   config,
	}
}

// ShowLogin はログインフォームを表示する。
// GET /login?from=/path
// ログイン済みの場合はダッシュボードへリダイレクトする。
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if currentSession(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.metrics.RecordPageRender("login")
	h.renderer.Render(w, http.StatusOK, "login", view.Page{
		Title:     "Log in",
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data: view.AuthFormData{
			From: r.URL.Query().Get("from"),
		},
	})
}

// Login は資格情報を検証してローカルセッションを発行する。
// POST /login
// 失敗時はリモートのエラーメッセージをそのままフォーム上に表示する。
// 成功時はfromパラメータの復帰先（検証済みローカルパスのみ）へ
// リダイレクトし、なければダッシュボードへ向かう。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	creds := api.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	from := r.PostFormValue("from")

	sess, err := h.sessions.Login(r.Context(), creds)
	if err != nil {
		h.metrics.RecordLoginFailure()
		message := "Login failed. Please try again."
		if apiErr, ok := err.(*model.APIError); ok {
			message = apiErr.Message
		}
		h.renderer.Render(w, http.StatusUnauthorized, "login", view.Page{
			Title:        "Log in",
			CSRFToken:    middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
			ErrorMessage: message,
			Data: view.AuthFormData{
				Email: creds.Email,
				From:  from,
			},
		})
		return
	}

	setSessionCookie(w, sess.ID, h.config)
	h.metrics.RecordLoginSuccess()
	http.Redirect(w, r, safeReturnPath(from), http.StatusSeeOther)
}

// ShowSignup はサインアップフォームを表示する。
// GET /signup
func (h *AuthHandler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	if currentSession(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.metrics.RecordPageRender("signup")
	h.renderer.Render(w, http.StatusOK, "signup", view.Page{
		Title:     "Sign up",
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
		Data:      view.AuthFormData{},
	})
}

// Signup は新規アカウントを登録する。
// POST /signup
// 選択可能なロールはcustomerとvendorのみ。成功時はログインページへ誘導する。
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	role := model.Role(r.PostFormValue("role"))
	reg := api.Registration{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     role,
	}

	renderWithError := func(message string) {
		h.renderer.Render(w, http.StatusBadRequest, "signup", view.Page{
			Title:        "Sign up",
			CSRFToken:    middleware.EnsureCSRFToken(w, r, h.config.csrfConfig()),
			ErrorMessage: message,
			Data: view.AuthFormData{
				Name:  reg.Name,
				Email: reg.Email,
			},
		})
	}

	if role != model.RoleCustomer && role != model.RoleVendor {
		renderWithError("Please choose a valid account type.")
		return
	}

	if err := h.accounts.Register(r.Context(), reg); err != nil {
		message := "Sign up failed. Please try again."
		if apiErr, ok := err.(*model.APIError); ok {
			message = apiErr.Message
		}
		renderWithError(message)
		return
	}

	slog.Info("account registered", slog.String("email", reg.Email), slog.String("role", string(role)))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout はセッションを終了する。
// POST /logout
// リモートのログアウトに失敗してもローカルセッションとCookieは
// 無条件で破棄し、必ずログアウト状態に遷移させる。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if sess != nil {
		if err := h.sessions.Logout(r.Context(), sess); err != nil {
			slog.Error("failed to clear local session", slog.String("error", err.Error()))
		}
	}

	expireSessionCookie(w, h.config)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
