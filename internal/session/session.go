// Package session はローカルセッションの保存と復元を提供する。
// リモートAPIの資格情報とアイデンティティのスナップショットを保持し、
// ページ描画時の認証判定を保存済み状態のみで行えるようにする。
package session

import (
	"context"
	"time"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/model"
)

// Session はログイン済みユーザーのローカルセッション。
// Userはログイン時点のアイデンティティのスナップショットであり、
// ガード判定はリモートへの問い合わせなしにこのスナップショットで行う。
type Session struct {
	ID        string
	Token     api.Token
	User      model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired はセッションが期限切れかどうかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store はセッションの永続化インターフェース。
// 実装はPostgreSQL（PostgresStore）とインメモリ（MemoryStore）の2種類があり、
// 設定に応じて差し替えられる。
type Store interface {
	// Create はセッションを保存する。
	Create(ctx context.Context, session *Session) error
	// FindByID は指定IDのセッションを取得する。
	// 存在しない、または期限切れの場合は (nil, nil) を返す。
	FindByID(ctx context.Context, id string) (*Session, error)
	// Update はトークン・スナップショットの更新を保存する。
	Update(ctx context.Context, session *Session) error
	// DeleteByID は指定IDのセッションを削除する。存在しなくてもエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
