package model

import (
	"strings"
	"time"
)

// apiTimeLayout はリモートAPIが日時に使用するフォーマット。
const apiTimeLayout = "2006-01-02 15:04"

// APITime はリモートAPIの "YYYY-MM-DD HH:MM" 形式の日時を表す。
// RFC3339で返すエンドポイントも存在するため、両形式を受理する。
type APITime struct {
	time.Time
}

// UnmarshalJSON はAPIの日時文字列をパースする。
func (t *APITime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(apiTimeLayout, s)
	if err != nil {
		// RFC3339へのフォールバック
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	t.Time = parsed
	return nil
}

// MarshalJSON はAPIの日時フォーマットで出力する。
func (t APITime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(apiTimeLayout) + `"`), nil
}

// Event はリモートAPIが管理するイベントを表す。
// ローカルには永続化されず、ビュー描画のためのスナップショットとしてのみ保持する。
// SeatsAvailableは非負であり、リモート側が正式な値を持つ。
type Event struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Date           APITime `json:"date"`
	Country        string  `json:"country"`
	City           string  `json:"city"`
	Location       string  `json:"location,omitempty"`
	PosterURL      string  `json:"poster_url,omitempty"`
	SeatsAvailable int     `json:"seats_available"`
	OrganizerName  string  `json:"organizer_name,omitempty"`
}

// SoldOut は残席が無いかどうかを返す。
// 残席0のイベントは予約操作そのものを発行してはならない。
func (e *Event) SoldOut() bool {
	return e.SeatsAvailable <= 0
}

// Place は表示用の開催地文字列を返す。会場名があればそれを優先する。
func (e *Event) Place() string {
	if e.Location != "" {
		return e.Location
	}
	return e.City + ", " + e.Country
}
