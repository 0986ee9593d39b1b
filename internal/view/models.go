package view

import "html/template"

// EventCard はイベント一覧のカード表示用ビューモデル。
type EventCard struct {
	ID         string
	Title      string
	Excerpt    string
	Place      string
	DateLabel  string
	PosterPath string
	SoldOut    bool
}

// FilterValues はイベント絞り込みフォームの入力値。
// 再描画時にフォームへ書き戻すために保持する。
type FilterValues struct {
	Country string
	City    string
	From    string
	To      string
}

// HomeData はホームページのビューモデル。
type HomeData struct {
	Events []EventCard
	Count  int
	Filter FilterValues
}

// AuthFormData はログイン・サインアップフォームのビューモデル。
// Fromはログイン後に戻るパス。
type AuthFormData struct {
	Email string
	Name  string
	From  string
}

// EventDetailData はイベント詳細ページのビューモデル。
// DescriptionHTMLはサニタイズ済みHTMLのみを格納すること。
type EventDetailData struct {
	ID              string
	Title           string
	DescriptionHTML template.HTML
	DateLabel       string
	Place           string
	PosterPath      string
	OrganizerName   string
	SeatsAvailable  int
	SoldOut         bool
	Booked          bool
	CanBook         bool
}

// EventFormData はイベント作成・編集フォームのビューモデル。
type EventFormData struct {
	Action         string // フォームの送信先パス
	Heading        string
	Submit         string // 送信ボタンのラベル
	Title          string
	Description    string
	Date           string // datetime-local形式 (2006-01-02T15:04)
	Country        string
	City           string
	Location       string
	SeatsAvailable string
}

// BookingRow はダッシュボードの予約一覧の1行。
type BookingRow struct {
	BookingID     string
	EventID       string
	EventTitle    string
	DateLabel     string
	Place         string
	BookedAtLabel string
}

// VendorEventRow はダッシュボードの主催イベント一覧の1行。
type VendorEventRow struct {
	ID             string
	Title          string
	DateLabel      string
	Place          string
	SeatsAvailable int
}

// DashboardData はダッシュボードのビューモデル。
// ロールに応じてBookingsまたはEventsのどちらかが使われる。
type DashboardData struct {
	Bookings []BookingRow
	Events   []VendorEventRow
}

// AttendeeRow は参加者一覧の1行。
type AttendeeRow struct {
	Name          string
	Email         string
	BookedAtLabel string
}

// AttendeesData は参加者一覧ページのビューモデル。
type AttendeesData struct {
	EventID    string
	EventTitle string
	Count      int
	Attendees  []AttendeeRow
}

// ErrorData はエラーページのビューモデル。
type ErrorData struct {
	Message string
	Action  string
}
