package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hitoshi/eventhive/internal/model"
)

// BookEvent はイベントを予約する（customerロールのみ）。
// POST /booking/{eventId}
// リクエストボディは不要。残席なし・二重予約はリモートが拒否し、
// サーバー供給のメッセージがAPIErrorとして返る。
func (c *Client) BookEvent(ctx context.Context, token Token, eventID string) (*model.Booking, error) {
	resp, err := c.do(ctx, http.MethodPost, "/booking/{id}", "/booking/"+url.PathEscape(eventID), token, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Booking model.Booking `json:"booking"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &payload.Booking, nil
}

// MyBookings は現在の顧客の予約一覧を取得する。
// GET /booking/my
// 「予約済み」判定はこの一覧の走査で行う。
func (c *Client) MyBookings(ctx context.Context, token Token) (model.BookingList, error) {
	resp, err := c.do(ctx, http.MethodGet, "/booking/my", "/booking/my", token, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Count    int               `json:"count"`
		Bookings model.BookingList `json:"bookings"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return payload.Bookings, nil
}

// CancelBooking は予約をキャンセルする。
// DELETE /booking/cancel/{id}
func (c *Client) CancelBooking(ctx context.Context, token Token, bookingID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/booking/cancel/{id}", "/booking/cancel/"+url.PathEscape(bookingID), token, nil, "")
	if err != nil {
		return err
	}
	return c.decodeJSON(resp, nil)
}

// EventBookings は指定イベントの参加者一覧を取得する（vendorロールのみ）。
// GET /booking/event/{eventId}
// 各予約には顧客情報が埋め込まれて返る。
func (c *Client) EventBookings(ctx context.Context, token Token, eventID string) (*model.Event, []model.Booking, error) {
	resp, err := c.do(ctx, http.MethodGet, "/booking/event/{id}", "/booking/event/"+url.PathEscape(eventID), token, nil, "")
	if err != nil {
		return nil, nil, err
	}

	var payload struct {
		Event    model.Event     `json:"event"`
		Count    int             `json:"count"`
		Bookings []model.Booking `json:"bookings"`
	}
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, nil, err
	}
	return &payload.Event, payload.Bookings, nil
}
