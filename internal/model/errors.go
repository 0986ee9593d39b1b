package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// リモートAPIが返すerrorフィールド、またはクライアント側で検出した
// 失敗をUI表示用に分類したもの。
type APIError struct {
	Code     string // エラーコード
	Message  string // UIに表示するメッセージ
	Category string // カテゴリ: auth, validation, booking, event, transport, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRemoteRejected  = "REMOTE_REJECTED"
	ErrCodeTransportFailed = "TRANSPORT_FAILED"
	ErrCodeEventNotFound   = "EVENT_NOT_FOUND"
	ErrCodeSoldOut         = "SOLD_OUT"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewRemoteRejectedError はリモートAPIが報告した失敗を生成する。
// messageにはサーバー供給のerrorフィールドをそのまま渡す。
func NewRemoteRejectedError(message string) *APIError {
	if message == "" {
		message = "The server rejected the request."
	}
	return &APIError{
		Code:     ErrCodeRemoteRejected,
		Message:  message,
		Category: "validation",
		Action:   "Check your input and try again.",
	}
}

// NewTransportError はネットワーク/トランスポート層の失敗を生成する。
func NewTransportError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeTransportFailed,
		Message:  fmt.Sprintf("Could not reach the EventHive API: %s", reason),
		Category: "transport",
		Action:   "Please try again in a moment.",
	}
}

// NewUnauthorizedError は未認証状態のエラーを生成する。
// セッション不在そのものは正常状態であり、このエラーは保護された
// 操作が認証なしで実行された場合にのみ使用する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "You need to sign in to do that.",
		Category: "auth",
		Action:   "Sign in and try again.",
	}
}

// NewForbiddenError はロール不足のエラーを生成する。
func NewForbiddenError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  reason,
		Category: "auth",
		Action:   "Switch to an account with the required role.",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("Could not load event details. The event may not exist: %s", eventID),
		Category: "event",
		Action:   "Go back to the event list and pick another event.",
	}
}

// NewSoldOutError は残席なしエラーを生成する。
// 残席0の予約はリクエスト発行前にクライアント側で遮断される。
func NewSoldOutError() *APIError {
	return &APIError{
		Code:     ErrCodeSoldOut,
		Message:  "This event is sold out.",
		Category: "booking",
		Action:   "Browse other events on the home page.",
	}
}
