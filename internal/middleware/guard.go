package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/eventhive/internal/model"
)

// RequireAuth は認証済みセッションを要求するガードミドルウェアを返す。
// 未認証の場合はログインページへ303リダイレクトし、復帰先のパスを
// fromクエリパラメータに載せる。判定はコンテキストの保存済み状態のみで行い、
// リモートAPIへの問い合わせは発生しない。
func RequireAuth() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFromContext(r.Context()) == nil {
				target := "/login?from=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles は指定ロールのいずれかを持つセッションを要求する
// ガードミドルウェアを返す。RequireAuthの後に配置すること。
// ロールが合わない場合はダッシュボードへ303リダイレクトする。
func RequireRoles(roles ...model.Role) func(next http.Handler) http.Handler {
	allowed := make(map[model.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				target := "/login?from=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			if !allowed[sess.User.Role] {
				slog.Warn("role not allowed for page",
					slog.String("user_id", sess.User.ID),
					slog.String("role", string(sess.User.Role)),
					slog.String("path", r.URL.Path),
				)
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
