package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/eventhive/internal/model"
)

// EventFilter はイベント一覧の絞り込み条件。ゼロ値は全件取得。
type EventFilter struct {
	Country string
	City    string
	From    *time.Time
	To      *time.Time
}

// query はリモートAPIのクエリパラメータ形式に変換する。
// 日付範囲はfrom/to両方が揃っている場合のみ送信する（片方だけでは
// リモート側が無視するため）。
func (f EventFilter) query() url.Values {
	q := url.Values{}
	if f.Country != "" {
		q.Set("country", f.Country)
	}
	if f.City != "" {
		q.Set("city", f.City)
	}
	if f.From != nil && f.To != nil {
		q.Set("start_year", strconv.Itoa(f.From.Year()))
		q.Set("start_month", strconv.Itoa(int(f.From.Month())))
		q.Set("start_day", strconv.Itoa(f.From.Day()))
		q.Set("end_year", strconv.Itoa(f.To.Year()))
		q.Set("end_month", strconv.Itoa(int(f.To.Month())))
		q.Set("end_day", strconv.Itoa(f.To.Day()))
	}
	return q
}

// EventForm はイベント作成・更新のフォーム内容。
// Posterは任意で、設定されている場合はmultipartでアップロードされる。
type EventForm struct {
	Title          string
	Description    string
	Date           time.Time
	Country        string
	City           string
	Location       string
	SeatsAvailable int
	Poster         *PosterUpload
}

// PosterUpload はポスター画像のアップロード内容。
type PosterUpload struct {
	Filename string
	Content  io.Reader
}

// encodeMultipart はフォームをmultipart/form-dataとしてエンコードする。
// リモートAPIの期待するフィールド名（title, description, date, country,
// city, location, seats_available, poster）に合わせる。
func (f EventForm) encodeMultipart() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":           f.Title,
		"description":     f.Description,
		"date":            f.Date.Format("2006-01-02 15:04"),
		"country":         f.Country,
		"city":            f.City,
		"location":        f.Location,
		"seats_available": strconv.Itoa(f.SeatsAvailable),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if f.Poster != nil {
		part, err := w.CreateFormFile("poster", f.Poster.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create poster part: %w", err)
		}
		if _, err := io.Copy(part, f.Poster.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy poster content: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// FilterEvents はイベント一覧を取得する。
// GET /event/filter
func (c *Client) FilterEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	path := "/event/filter"
	if q := filter.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, "/event/filter", path, "", nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Count  int           `json:"count"`
		Events []model.Event `json:"events"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}

// GetEvent は単一イベントを取得する。
// GET /event/{id}
func (c *Client) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	resp, err := c.do(ctx, http.MethodGet, "/event/{id}", "/event/"+url.PathEscape(eventID), "", nil, "")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, model.NewEventNotFoundError(eventID)
	}

	var payload struct {
		Event model.Event `json:"event"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &payload.Event, nil
}

// CreateEvent はイベントを作成する。
// POST /event/create (multipart)
func (c *Client) CreateEvent(ctx context.Context, token Token, form EventForm) (*model.Event, error) {
	body, contentType, err := form.encodeMultipart()
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/event/create", "/event/create", token, body, contentType)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Event model.Event `json:"event"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &payload.Event, nil
}

// UpdateEvent はイベントを更新する。
// PUT /event/{id} (multipart)
func (c *Client) UpdateEvent(ctx context.Context, token Token, eventID string, form EventForm) (*model.Event, error) {
	body, contentType, err := form.encodeMultipart()
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPut, "/event/{id}", "/event/"+url.PathEscape(eventID), token, body, contentType)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Event model.Event `json:"event"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &payload.Event, nil
}

// DeleteEvent はイベントを削除する。
// DELETE /event/{id}
func (c *Client) DeleteEvent(ctx context.Context, token Token, eventID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/event/{id}", "/event/"+url.PathEscape(eventID), token, nil, "")
	if err != nil {
		return err
	}
	return c.decodeJSON(resp, nil)
}

// MyEvents は現在のベンダーが主催するイベント一覧を取得する。
// GET /event/my-events
func (c *Client) MyEvents(ctx context.Context, token Token) ([]model.Event, error) {
	resp, err := c.do(ctx, http.MethodGet, "/event/my-events", "/event/my-events", token, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Events []model.Event `json:"events"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}
