package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/eventhive/internal/api"
	"github.com/hitoshi/eventhive/internal/model"
)

// AuthAPI はプロバイダーが必要とするリモートAPI操作のインターフェース。
// api.Clientの部分集合として定義する。
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (api.Token, error)
	Me(ctx context.Context, token api.Token) (*model.User, error)
	Logout(ctx context.Context, token api.Token) error
	RefreshSession(ctx context.Context, token api.Token) (api.Token, error)
}

// ProviderConfig はセッションプロバイダーの設定。
type ProviderConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Provider はログイン・セッション復元・ログアウトのビジネスロジックを提供する。
// リモートAPIの資格情報取得とローカルストアへの保存を1箇所にまとめる。
type Provider struct {
	client AuthAPI
	store  Store
	logger *slog.Logger
	config ProviderConfig
}

// NewProvider はProviderを生成する。
func NewProvider(client AuthAPI, store Store, logger *slog.Logger, config ProviderConfig) *Provider {
	return &Provider{
		client: client,
		store:  store,
		logger: logger,
		config: config,
	}
}

// Login は資格情報でリモートAPIにログインし、ローカルセッションを発行する。
// 1. リモートAPIへログインしてトークンを取得
// 2. アイデンティティのスナップショットを取得
// 3. ローカルセッションを生成・保存
// 失敗時はリモートのエラーをそのまま返す（表示責任は呼び出し元）。
func (p *Provider) Login(ctx context.Context, creds api.Credentials) (*Session, error) {
	token, err := p.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	user, err := p.client.Me(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:        uuid.New().String(),
		Token:     token,
		User:      *user,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(p.config.SessionMaxAge) * time.Second),
	}

	if err := p.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	p.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return session, nil
}

// Recover は保存済みセッションを復元する。
// 起動直後の最初のリクエストでも、保存済みセッションがあれば
// ログイン状態として扱える。存在しない・期限切れは (nil, nil)。
// 残り寿命が有効期間の半分を切ったセッションはRefreshで回転させて
// 期限を延長する（スライディングセッション）。通常のナビゲーションでは
// アップストリームへのアクセスは発生しない。
func (p *Provider) Recover(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := p.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if p.needsRefresh(session) {
		refreshed, err := p.Refresh(ctx, session)
		if err != nil {
			// リフレッシュ失敗は手元のスナップショットで継続する。
			// セッションが破棄されるのはアップストリームが未認証を
			// 返した場合のみ（その場合Refreshは (nil, nil) を返す）。
			p.logger.Warn("session refresh failed, keeping stored snapshot",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()),
			)
			return session, nil
		}
		return refreshed, nil
	}
	return session, nil
}

// needsRefresh はセッションの残り寿命が有効期間の半分を切ったかを判定する。
func (p *Provider) needsRefresh(session *Session) bool {
	return time.Until(session.ExpiresAt) < time.Duration(p.config.SessionMaxAge)*time.Second/2
}

// Refresh はリモートのリフレッシュ操作でトークンを回転させ、
// アイデンティティのスナップショットを取り直す。Recoverが寿命の
// 後半に入ったセッションに対して呼び出す。
// リモートが未認証を返した場合はローカルセッションを破棄して
// 未認証状態に遷移する（この場合 (nil, nil) を返す）。
func (p *Provider) Refresh(ctx context.Context, session *Session) (*Session, error) {
	newToken, err := p.client.RefreshSession(ctx, session.Token)
	if err != nil {
		if api.IsUnauthorized(err) {
			p.logger.Info("session no longer valid upstream, clearing local session",
				slog.String("session_id", session.ID),
			)
			if delErr := p.store.DeleteByID(ctx, session.ID); delErr != nil {
				p.logger.Error("failed to delete stale session", slog.String("error", delErr.Error()))
			}
			return nil, nil
		}
		return nil, err
	}

	user, err := p.client.Me(ctx, newToken)
	if err != nil {
		return nil, err
	}

	session.Token = newToken
	session.User = *user
	session.ExpiresAt = time.Now().Add(time.Duration(p.config.SessionMaxAge) * time.Second)

	if err := p.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

// Logout はリモートとローカル双方のセッションを終了する。
// リモートのログアウトが失敗してもローカルセッションは無条件で破棄する。
// ユーザーを確実にログアウト状態に遷移させることを優先する。
func (p *Provider) Logout(ctx context.Context, session *Session) error {
	if err := p.client.Logout(ctx, session.Token); err != nil {
		p.logger.Warn("remote logout failed, clearing local session anyway",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := p.store.DeleteByID(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	p.logger.Info("user logged out", slog.String("user_id", session.User.ID))
	return nil
}
