// Package api はEventHiveリモートAPIのHTTPクライアントを提供する。
// ベースURLの一元管理と、全リクエストへの資格情報（セッションクッキー）
// 添付を担う。他のすべてのコンポーネントはこのクライアント経由で
// リモートAPIと通信する。
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/eventhive/internal/model"
)

// Token はリモートAPIが発行した不透明なセッション資格情報。
// ログイン応答のSet-Cookieヘッダーをそのまま保持し、以後のリクエストの
// Cookieヘッダーとして再送する。中身を解釈してはならない。
type Token string

// maxErrorBodySize はエラーレスポンスボディの最大読み取りサイズ。
const maxErrorBodySize = 64 * 1024

// StatusRecorder はアップストリームAPI呼び出しの観測フック。
// metricsパッケージのCollectorが実装する。endpointには正規化された
// パステンプレート（例: "/event/{id}"）が渡される。具体的なIDや
// クエリ文字列をラベルにすると時系列が無制限に増えるため。
type StatusRecorder interface {
	RecordUpstreamRequest(endpoint string, statusCode int, duration time.Duration)
}

// Client はEventHive APIのクライアント。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	recorder   StatusRecorder // nil可
}

// Option はClientの生成オプション。
type Option func(*Client)

// WithRecorder はアップストリーム呼び出しの観測フックを設定する。
func WithRecorder(r StatusRecorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// WithHTTPClient は下層のhttp.Clientを差し替える（テスト用）。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLは末尾スラッシュなしのAPIルート（例: "https://api.eventhive.example/api"）。
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			// リダイレクトは追わない。APIはリダイレクトを返さない想定であり、
			// 返された場合はエラーとして扱うほうが安全。
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do はリクエストを組み立てて実行する。
// endpointはメトリクスラベル用の正規化パステンプレート、pathは
// 実際のリクエストパス（ID・クエリ込み）。
// tokenが空でなければCookieヘッダーとして添付する。
// 呼び出し側はレスポンスボディをCloseする責任を持つ。
func (c *Client) do(ctx context.Context, method, endpoint, path string, token Token, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s %s: %w", method, path, err)
	}
	req.Header.Set("User-Agent", "EventHive-Web/1.0")
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Cookie", string(token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("upstream request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		if c.recorder != nil {
			c.recorder.RecordUpstreamRequest(endpoint, 0, duration)
		}
		return nil, model.NewTransportError(err.Error())
	}

	if c.recorder != nil {
		c.recorder.RecordUpstreamRequest(endpoint, resp.StatusCode, duration)
	}
	return resp, nil
}

// decodeJSON は2xxレスポンスのボディをoutにデコードする。
// 2xx以外はサーバー供給のerrorフィールドをAPIErrorとして返す。
func (c *Client) decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		// ボディを読み捨ててコネクションを再利用可能にする
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.NewTransportError(fmt.Sprintf("invalid response body: %v", err))
	}
	return nil
}

// errorFromResponse は非2xxレスポンスをAPIErrorに変換する。
// ボディの {"error": "..."} を可能な限り取り出してUI向けメッセージとする。
func (c *Client) errorFromResponse(resp *http.Response) *model.APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			apiErr := model.NewRemoteRejectedError(payload.Error)
			apiErr.Code = model.ErrCodeUnauthorized
			apiErr.Category = "auth"
			return apiErr
		case http.StatusForbidden:
			return model.NewForbiddenError(payload.Error)
		}
		return model.NewRemoteRejectedError(payload.Error)
	}

	return model.NewRemoteRejectedError(fmt.Sprintf("unexpected status %d", resp.StatusCode))
}

// tokenFromResponse はレスポンスのSet-Cookieヘッダーから資格情報を組み立てる。
// クッキーが1つも無い場合は空Tokenを返す。
func tokenFromResponse(resp *http.Response) Token {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return Token(strings.Join(pairs, "; "))
}

// IsUnauthorized はエラーが未認証（セッション切れ・不在）かどうかを判定する。
// セッション回復チェックではこれはエラーではなく通常の未認証状態として扱う。
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*model.APIError)
	return ok && apiErr.Code == model.ErrCodeUnauthorized
}
