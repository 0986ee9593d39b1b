// Package handler はページハンドラーとルーティングを提供する。
// 各ハンドラーはリモートAPIから取得したデータをビューモデルに変換して
// テンプレートに渡す。認証・ロール判定はミドルウェアのガードが行い、
// ハンドラーは到達した時点で前提が満たされているとみなす。
package handler

import (
	"net/http"

	"github.com/hitoshi/eventhive/internal/middleware"
	"github.com/hitoshi/eventhive/internal/model"
	"github.com/hitoshi/eventhive/internal/session"
)

// dateLabelFormat はページ表示用の日時フォーマット。
const dateLabelFormat = "Jan 2, 2006 3:04 PM"

// datetimeLocalFormat はHTMLのdatetime-local入力のフォーマット。
const datetimeLocalFormat = "2006-01-02T15:04"

// MetricsRecorder はハンドラーが記録するメトリクスのインターフェース。
// metricsパッケージのCollectorが実装する。
type MetricsRecorder interface {
	RecordPageRender(page string)
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordBookingSuccess()
	RecordBookingFailure()
}

// CookieConfig はセッション・CSRF Cookieの設定。
type CookieConfig struct {
	Domain        string
	Secure        bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// csrfConfig はmiddleware.CSRFConfigへの変換。
func (c CookieConfig) csrfConfig() middleware.CSRFConfig {
	return middleware.CSRFConfig{
		CookieSecure: c.Secure,
		CookieDomain: c.Domain,
	}
}

// setSessionCookie はローカルセッションIDのHTTP Only Cookieを設定する。
func setSessionCookie(w http.ResponseWriter, sessionID string, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   config.SessionMaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// expireSessionCookie はセッションCookieを即時失効させる。
func expireSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentSession はリクエストコンテキストからセッションを取得する。
func currentSession(r *http.Request) *session.Session {
	return middleware.SessionFromContext(r.Context())
}

// currentUser はリクエストコンテキストからユーザーを取得する。未認証はnil。
func currentUser(r *http.Request) *model.User {
	sess := currentSession(r)
	if sess == nil {
		return nil
	}
	return &sess.User
}

// statusForError はAPIErrorをHTTPステータスコードに対応付ける。
func statusForError(err error) int {
	apiErr, ok := err.(*model.APIError)
	if !ok {
		return http.StatusInternalServerError
	}
	switch apiErr.Code {
	case model.ErrCodeTransportFailed:
		return http.StatusBadGateway
	case model.ErrCodeEventNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeSoldOut:
		return http.StatusConflict
	case model.ErrCodeRemoteRejected:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// safeReturnPath はログイン後の復帰先パスを検証する。
// 外部サイトへのオープンリダイレクトを防ぐため、
// スラッシュ1つで始まるローカルパス以外はダッシュボードに落とす。
func safeReturnPath(from string) string {
	if len(from) >= 1 && from[0] == '/' && !(len(from) >= 2 && from[1] == '/') {
		return from
	}
	return "/dashboard"
}

// dateLabel は日時を表示用ラベルに変換する。ゼロ値は空文字列。
func dateLabel(t model.APITime) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLabelFormat)
}

// posterPath はイベントのポスタープロキシパスを返す。ポスターなしは空文字列。
func posterPath(event *model.Event) string {
	if event.PosterURL == "" {
		return ""
	}
	return "/posters/" + event.ID
}
