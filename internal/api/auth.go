package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/eventhive/internal/model"
)

// Credentials はログイン資格情報。
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration はアカウント登録のリクエスト。
type Registration struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// Login は資格情報をリモートAPIに送信し、発行されたセッション資格情報を返す。
// POST /auth/login
// サーバーは不透明なセッションクッキーを設定する。失敗時はリモートの
// エラーをそのまま伝播する（呼び出し元のビューが表示責任を持つ）。
func (c *Client) Login(ctx context.Context, creds Credentials) (Token, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "/auth/login", "", bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.errorFromResponse(resp)
	}

	token := tokenFromResponse(resp)
	if token == "" {
		return "", model.NewTransportError("login response did not set a session cookie")
	}
	return token, nil
}

// Logout はリモートのセッションを終了する。
// POST /auth/logout
// 失敗してもローカルセッションの破棄は呼び出し元で無条件に行われる。
func (c *Client) Logout(ctx context.Context, token Token) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", "/auth/logout", token, nil, "")
	if err != nil {
		return err
	}
	return c.decodeJSON(resp, nil)
}

// Register は新規アカウントを作成する。
// POST /auth/register
func (c *Client) Register(ctx context.Context, reg Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to encode registration: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/register", "/auth/register", "", bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	return c.decodeJSON(resp, nil)
}

// Me は現在のセッションのアイデンティティを取得・検証する。
// GET /auth/me
// 未認証の場合はErrCodeUnauthorizedのAPIErrorを返す。これは想定内の
// 状態であり、呼び出し元はIsUnauthorizedで区別する。
func (c *Client) Me(ctx context.Context, token Token) (*model.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", "/auth/me", token, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		User model.User `json:"user"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	if payload.User.ID == "" {
		return nil, model.NewTransportError("identity response missing user")
	}
	return &payload.User, nil
}

// RefreshSession はリフレッシュトークンでセッションを回転させ、
// 新しい資格情報を返す。
// POST /auth/refresh
func (c *Client) RefreshSession(ctx context.Context, token Token) (Token, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/refresh", "/auth/refresh", token, nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.errorFromResponse(resp)
	}

	newToken := tokenFromResponse(resp)
	if newToken == "" {
		c.logger.Warn("refresh response did not rotate session cookies")
		return token, nil
	}
	return newToken, nil
}
