// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/eventhive/internal/session"
)

// SessionCookieName はローカルセッションIDを保持するCookieの名前。
const SessionCookieName = "eventhive_session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// SessionRecoverer はセッションの復元に必要なインターフェース。
// session.Providerの部分集合として定義する。
type SessionRecoverer interface {
	Recover(ctx context.Context, sessionID string) (*session.Session, error)
}

// NewSessionMiddleware はHTTP Only Cookieから保存済みセッションを復元し、
// リクエストコンテキストに注入するミドルウェアを返す。
// セッションが無い・期限切れの場合も拒否せず、未認証のまま次に進める。
// 認証の強制はガードミドルウェア（RequireAuth）が行う。
func NewSessionMiddleware(recoverer SessionRecoverer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := recoverer.Recover(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to recover session",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// 未認証の場合はnilを返す。
func SessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// ContextWithSession はコンテキストにセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
