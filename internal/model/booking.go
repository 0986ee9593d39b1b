package model

// Booking はイベント予約を表す。
// Eventは常に埋め込みで返される。Customerは主催ベンダー向けの
// 参加者一覧でのみ設定される。
// (customer, event) ごとに有効な予約は最大1件で、これはリモート側が
// 強制する。クライアントは自分の予約一覧への所属チェックで反映するのみ。
type Booking struct {
	ID       string  `json:"id"`
	Event    Event   `json:"event"`
	BookedAt APITime `json:"booked_at"`
	Customer *User   `json:"customer,omitempty"`
}

// BookingList は予約一覧のヘルパー。
type BookingList []Booking

// ContainsEvent は一覧に指定イベントの予約が含まれるかを返す。
// 「予約済み」判定は自分の予約一覧を走査して行う（リモートに専用の
// 照会エンドポイントは存在しない）。
func (l BookingList) ContainsEvent(eventID string) bool {
	for _, b := range l {
		if b.Event.ID == eventID {
			return true
		}
	}
	return false
}
